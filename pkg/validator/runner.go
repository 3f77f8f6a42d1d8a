package validator

import (
	"context"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Result is the outcome of one validator run. Seq increases with every Start,
// so a consumer can tell which of several overlapping runs is the newest.
type Result struct {
	RunID  string
	Seq    uint64
	File   string
	Output *Output
	Raw    string
	Err    error
}

// Runner launches the external validator out of process.
type Runner struct {
	command string
	args    []string
	timeout time.Duration
	dir     string

	seq atomic.Uint64
}

type RunnerOpt func(*Runner)

// WithArgs sets arguments placed before the journal path.
func WithArgs(args ...string) RunnerOpt {
	return func(r *Runner) {
		r.args = append([]string{}, args...)
	}
}

// WithTimeout kills runs that take longer than d. Zero means no limit.
func WithTimeout(d time.Duration) RunnerOpt {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithDir sets the working directory of the validator process.
func WithDir(dir string) RunnerOpt {
	return func(r *Runner) {
		r.dir = dir
	}
}

func NewRunner(command string, opts ...RunnerOpt) *Runner {
	r := &Runner{command: command}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Command() string {
	return r.command
}

// Start runs the validator against file in the background. The returned
// channel receives exactly one Result and is then closed. Runs are neither
// deduplicated nor cancelled by later calls.
func (r *Runner) Start(ctx context.Context, file string) <-chan Result {
	res := Result{
		RunID: uuid.NewString(),
		Seq:   r.seq.Add(1),
		File:  file,
	}
	ch := make(chan Result, 1)

	logger := zerolog.Ctx(ctx).With().Str("run_id", res.RunID).Uint64("run_seq", res.Seq).Str("file", file).Logger()
	ctx = logger.WithContext(context.WithoutCancel(ctx))

	go func() {
		defer close(ch)
		ch <- r.run(ctx, res)
	}()

	return ch
}

// Run is the blocking form of Start.
func (r *Runner) Run(ctx context.Context, file string) Result {
	return <-r.Start(ctx, file)
}

func (r *Runner) run(ctx context.Context, res Result) Result {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := append(append([]string{}, r.args...), res.File)
	cmd := exec.CommandContext(ctx, r.command, args...)
	cmd.Dir = r.dir
	if r.timeout > 0 {
		// children of the validator may hold the output pipe open after it is killed
		cmd.WaitDelay = time.Second
	}

	start := time.Now()
	zerolog.Ctx(ctx).Debug().Str("command", r.command).Strs("args", args).Msg("starting validator")

	out, err := cmd.CombinedOutput()
	res.Raw = string(out)

	if err != nil {
		if ctx.Err() != nil {
			err = errors.Errorf("validator %s timed out after %s: %w", r.command, r.timeout, ctx.Err())
		} else {
			err = errors.Errorf("running validator %s: %w", r.command, err)
		}
		zerolog.Ctx(ctx).Error().Err(err).Dur("elapsed", time.Since(start)).Msg("validator run failed")
		res.Err = err
		return res
	}

	res.Output = ParseOutput(res.Raw)
	zerolog.Ctx(ctx).Debug().
		Int("errors", len(res.Output.Errors)).
		Int("flagged", len(res.Output.Flagged)).
		Dur("elapsed", time.Since(start)).
		Msg("validator run finished")

	return res
}
