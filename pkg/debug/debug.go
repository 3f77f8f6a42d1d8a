// Package debug builds the zerolog logger the beanls commands write to. The
// language server owns stdout, so everything goes to a separate writer.
package debug

import (
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

type LoggerOpts struct {
	Level zerolog.Level
	// Color enables ANSI colors in the console output and the caller field.
	Color bool
	// JSON writes one JSON object per line instead of console text.
	JSON bool
}

// NewLogger returns a logger writing to w with a millisecond timestamp and the
// calling package, file and line on every event.
func NewLogger(w io.Writer, opts LoggerOpts) zerolog.Logger {
	out := w
	if !opts.JSON {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    !opts.Color,
			TimeFormat: timeFormat,
		}
	}

	return zerolog.New(out).
		Level(opts.Level).
		Hook(CustomTimeHook{WithColor: opts.Color}).
		Hook(CustomCallerHook{WithColor: opts.Color && !opts.JSON})
}

const timeFormat = "2006-01-02T15:04:05.0000Z"

func hackGetCallerSkipFrameCount(e *zerolog.Event) int {
	// zerolog keeps the frames added by CallerSkipFrame unexported
	v := reflect.ValueOf(e).Elem()
	field := v.FieldByName("skipFrame")

	if field.IsValid() && field.CanAddr() {
		return int(field.Int())
	}

	return 0
}

type CustomTimeHook struct {
	WithColor bool
	Format    string
}

func (t CustomTimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	if t.Format == "" {
		e.Str("time", time.Now().UTC().Format(timeFormat))
	} else {
		e.Str("time", time.Now().Format(t.Format))
	}
}

type CustomCallerHook struct {
	WithColor bool
}

func (c CustomCallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	// Run, Event.msg and Event.Msg sit between us and the logging call
	pc, file, line, ok := runtime.Caller(hackGetCallerSkipFrameCount(e) + 3)
	if !ok {
		return
	}

	funcd := runtime.FuncForPC(pc)
	if funcd == nil {
		return
	}

	pkg, _ := GetPackageAndFuncFromFuncName(funcd.Name())

	e.Str("caller", FormatCaller(pkg, file, line, c.WithColor))
}

// GetPackageAndFuncFromFuncName splits a runtime function name such as
// "github.com/walteh/beanls/pkg/lsp.(*Server).DidSave" into its package and
// function parts.
func GetPackageAndFuncFromFuncName(pc string) (pkg, function string) {
	funcName := pc
	lastSlash := strings.LastIndexByte(funcName, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}

	firstDot := strings.IndexByte(funcName[lastSlash:], '.') + lastSlash
	if firstDot < lastSlash {
		return funcName, ""
	}

	pkg = funcName[:firstDot]
	fname := funcName[firstDot+1:]

	if strings.Contains(pkg, ".(") {
		splt := strings.Split(pkg, ".(")
		pkg = splt[0]
		fname = "(" + splt[1] + "." + fname
	}

	return pkg, fname
}

func FormatCaller(pkg, path string, number int, colorize bool) string {
	p := FileNameOfPath(path)
	if colorize {
		p = color.New(color.Bold).Sprint(p)
		num := color.New(color.FgHiRed, color.Bold).Sprintf("%d", number)
		sep := color.New(color.Faint).Sprint(":")

		return fmt.Sprintf("%s%s%s%s%s", pkg, sep, p, sep, num)
	}

	return fmt.Sprintf("%s:%s:%d", pkg, p, number)
}

func FileNameOfPath(path string) string {
	tot := strings.Split(path, "/")
	if len(tot) > 1 {
		return tot[len(tot)-1]
	}

	return path
}
