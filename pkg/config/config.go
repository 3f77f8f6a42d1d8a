// Package config loads per-workspace settings for the language server from a
// YAML or HCL file and from the editor's initializationOptions.
package config

import (
	_ "embed"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/beanls/pkg/semtok"
)

const (
	DefaultValidatorCommand = "python3"
	DefaultJournalFile      = "main.bean"
)

// BeancountCheckScript loads a ledger with the beancount Python package and
// prints its errors and flagged entries as the two JSON lines the validator
// output parser reads. It always exits 0 once the ledger is loaded, unlike
// bean-check, which exits 1 on any problem.
//
//go:embed beancount_check.py
var BeancountCheckScript string

// DefaultValidatorArgs runs BeancountCheckScript with DefaultValidatorCommand.
func DefaultValidatorArgs() []string {
	return []string{"-c", BeancountCheckScript}
}

// DefaultFiles are the patterns of documents treated as ledger files.
var DefaultFiles = []string{"**/*.bean", "**/*.beancount"}

// 📝 Settings file structure
type Settings struct {
	// root ledger handed to the validator, relative to the workspace root
	JournalFile string `json:"journal_file,omitempty" yaml:"journal_file,omitempty" hcl:"journal_file,optional"`
	// glob patterns of ledger documents
	Files []string `json:"files,omitempty" yaml:"files,omitempty" hcl:"files,optional"`

	Validator      *ValidatorBlock      `json:"validator,omitempty" yaml:"validator,omitempty" hcl:"validator,block"`
	Diagnostics    *DiagnosticsBlock    `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty" hcl:"diagnostics,block"`
	SemanticTokens *SemanticTokensBlock `json:"semantic_tokens,omitempty" yaml:"semantic_tokens,omitempty" hcl:"semantic_tokens,block"`
}

// 🔧 External validator
type ValidatorBlock struct {
	Command string   `json:"command,omitempty" yaml:"command,omitempty" hcl:"command,optional"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty" hcl:"args,optional"`
	// Go duration string; empty means no limit
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty" hcl:"timeout,optional"`
}

type DiagnosticsBlock struct {
	ClearStale *bool `json:"clear_stale,omitempty" yaml:"clear_stale,omitempty" hcl:"clear_stale,optional"`
}

// 🎨 Classification overrides, node kind -> "category[.modifier]" or "none"
type SemanticTokensBlock struct {
	Rules map[string]string `json:"rules,omitempty" yaml:"rules,omitempty" hcl:"rules,optional"`
}

func Default() *Settings {
	return &Settings{}
}

func (s *Settings) Journal() string {
	if s.JournalFile == "" {
		return DefaultJournalFile
	}
	return s.JournalFile
}

// JournalPath resolves the journal against the workspace root.
func (s *Settings) JournalPath(root string) string {
	j := s.Journal()
	if filepath.IsAbs(j) {
		return filepath.Clean(j)
	}
	return filepath.Join(root, j)
}

func (s *Settings) FilePatterns() []string {
	if len(s.Files) == 0 {
		return DefaultFiles
	}
	return s.Files
}

// IsLedgerFile reports whether path matches one of the file patterns. Paths
// under root are matched relative to it.
func (s *Settings) IsLedgerFile(root, path string) bool {
	name := filepath.ToSlash(path)
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			name = filepath.ToSlash(rel)
		}
	}
	name = strings.TrimPrefix(name, "/")

	for _, pattern := range s.FilePatterns() {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *Settings) ValidatorCommand() string {
	if s.Validator == nil || s.Validator.Command == "" {
		return DefaultValidatorCommand
	}
	return s.Validator.Command
}

// ValidatorArgs returns the arguments placed before the journal path. When no
// command is configured the bundled script comes first and any configured
// arguments follow it.
func (s *Settings) ValidatorArgs() []string {
	var args []string
	if s.Validator != nil {
		args = s.Validator.Args
	}
	if s.Validator == nil || s.Validator.Command == "" {
		return append(DefaultValidatorArgs(), args...)
	}
	return args
}

// ValidatorTimeout is zero when no timeout is configured.
func (s *Settings) ValidatorTimeout() (time.Duration, error) {
	if s.Validator == nil || s.Validator.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Validator.Timeout)
	if err != nil {
		return 0, errors.Errorf("parsing validator timeout %q: %w", s.Validator.Timeout, err)
	}
	if d < 0 {
		return 0, errors.Errorf("validator timeout %q is negative", s.Validator.Timeout)
	}
	return d, nil
}

func (s *Settings) ClearStale() bool {
	if s.Diagnostics == nil || s.Diagnostics.ClearStale == nil {
		return true
	}
	return *s.Diagnostics.ClearStale
}

// Rules returns the default rule table with the configured overrides applied.
func (s *Settings) Rules() (semtok.RuleTable, error) {
	if s.SemanticTokens == nil || len(s.SemanticTokens.Rules) == 0 {
		return semtok.DefaultRules(), nil
	}
	return semtok.DefaultRules().Override(s.SemanticTokens.Rules)
}

// Validate reports every invalid setting at once.
func (s *Settings) Validate() error {
	var merr *multierror.Error

	if _, err := s.ValidatorTimeout(); err != nil {
		merr = multierror.Append(merr, err)
	}
	if _, err := s.Rules(); err != nil {
		merr = multierror.Append(merr, errors.Errorf("semantic token rules: %w", err))
	}
	for _, pattern := range s.FilePatterns() {
		if !doublestar.ValidatePattern(pattern) {
			merr = multierror.Append(merr, errors.Errorf("invalid file pattern %q", pattern))
		}
	}

	return merr.ErrorOrNil()
}

// InitializationOptions is what an editor may send in the initialize request.
// Set fields take precedence over the settings file.
type InitializationOptions struct {
	JournalFile           string   `json:"journalFile,omitempty"`
	ValidatorCommand      string   `json:"validatorCommand,omitempty"`
	ValidatorArgs         []string `json:"validatorArgs,omitempty"`
	ClearStaleDiagnostics *bool    `json:"clearStaleDiagnostics,omitempty"`
	Files                 []string `json:"files,omitempty"`
}

// Overlay returns a copy of s with the editor's options applied.
func (s *Settings) Overlay(opts *InitializationOptions) *Settings {
	out := s.clone()
	if opts == nil {
		return out
	}

	if opts.JournalFile != "" {
		out.JournalFile = opts.JournalFile
	}
	if len(opts.Files) > 0 {
		out.Files = append([]string{}, opts.Files...)
	}
	if opts.ValidatorCommand != "" || len(opts.ValidatorArgs) > 0 {
		if out.Validator == nil {
			out.Validator = &ValidatorBlock{}
		}
		if opts.ValidatorCommand != "" {
			out.Validator.Command = opts.ValidatorCommand
		}
		if len(opts.ValidatorArgs) > 0 {
			out.Validator.Args = append([]string{}, opts.ValidatorArgs...)
		}
	}
	if opts.ClearStaleDiagnostics != nil {
		v := *opts.ClearStaleDiagnostics
		out.Diagnostics = &DiagnosticsBlock{ClearStale: &v}
	}
	return out
}

func (s *Settings) clone() *Settings {
	out := *s
	out.Files = append([]string(nil), s.Files...)
	if s.Validator != nil {
		v := *s.Validator
		v.Args = append([]string(nil), s.Validator.Args...)
		out.Validator = &v
	}
	if s.Diagnostics != nil {
		d := *s.Diagnostics
		out.Diagnostics = &d
	}
	if s.SemanticTokens != nil {
		rules := make(map[string]string, len(s.SemanticTokens.Rules))
		for k, v := range s.SemanticTokens.Rules {
			rules[k] = v
		}
		out.SemanticTokens = &SemanticTokensBlock{Rules: rules}
	}
	return &out
}
