package diagnostic

import (
	"path/filepath"

	"github.com/walteh/beanls/pkg/position"
	"github.com/walteh/beanls/pkg/validator"
)

// Severity uses the LSP numbering.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Source is reported as the origin of every diagnostic.
const Source = "beanls"

// Diagnostic represents a single diagnostic message
type Diagnostic struct {
	Range    position.Range
	Severity Severity
	Message  string
	Source   string
}

// SeverityOf maps a validator class to a severity.
func SeverityOf(c validator.Class) Severity {
	if c == validator.ClassError {
		return SeverityError
	}
	return SeverityWarning
}

// FromEntry builds the diagnostic for one validator entry. The range covers
// the whole reported line.
func FromEntry(e validator.Entry) Diagnostic {
	line := max(e.Line-1, 0)
	return Diagnostic{
		Range: position.Range{
			Start: position.Place{Line: line, Character: 0},
			End:   position.Place{Line: line + 1, Character: 0},
		},
		Severity: SeverityOf(e.Class),
		Message:  e.Message,
		Source:   Source,
	}
}

// Group is an ordered mapping from file to its diagnostics. Files keep the
// order they were first seen in, and each file's list keeps input order.
type Group struct {
	files []string
	diags map[string][]Diagnostic
}

func NewGroup() *Group {
	return &Group{diags: make(map[string][]Diagnostic)}
}

// Add appends d to the list for file.
func (g *Group) Add(file string, d Diagnostic) {
	if file == "" {
		return
	}
	if _, ok := g.diags[file]; !ok {
		g.files = append(g.files, file)
	}
	g.diags[file] = append(g.diags[file], d)
}

// Files returns the keys in first-seen order.
func (g *Group) Files() []string {
	return append([]string{}, g.files...)
}

func (g *Group) Get(file string) []Diagnostic {
	return g.diags[file]
}

func (g *Group) Len() int {
	return len(g.files)
}

// Count is the number of diagnostics across all files.
func (g *Group) Count() int {
	n := 0
	for _, d := range g.diags {
		n += len(d)
	}
	return n
}

// GroupEntries groups errors and then flagged entries by file path.
func GroupEntries(out *validator.Output) *Group {
	g := NewGroup()
	if out == nil {
		return g
	}
	for _, e := range out.All() {
		g.Add(e.File, FromEntry(e))
	}
	return g
}

// Relative rewrites every key of g into a document URI anchored at the
// workspace root. root may be a directory path or a file:// URI. Relative keys
// are resolved against root and absolute keys keep their location. Keys that
// name the same file are merged in order.
func (g *Group) Relative(root string) *Group {
	rootPath := filepath.Clean(URIPath(root))

	out := NewGroup()
	for _, file := range g.files {
		abs := file
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(rootPath, abs)
		}
		uri := FileURI(filepath.Clean(abs))

		for _, d := range g.diags[file] {
			out.Add(uri, d)
		}
	}
	return out
}
