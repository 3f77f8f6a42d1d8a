package validator

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Class is how the validator classified an entry.
type Class int

const (
	ClassError Class = iota
	ClassFlagged
)

func (c Class) String() string {
	switch c {
	case ClassError:
		return "error"
	case ClassFlagged:
		return "flagged"
	default:
		return "unknown"
	}
}

// Entry is one reported problem. Line is 1-based.
type Entry struct {
	File    string
	Line    int
	Class   Class
	Message string
}

// Output is a parsed validator run.
type Output struct {
	Errors  []Entry
	Flagged []Entry
}

// All returns errors followed by flagged entries.
func (o *Output) All() []Entry {
	out := make([]Entry, 0, len(o.Errors)+len(o.Flagged))
	out = append(out, o.Errors...)
	return append(out, o.Flagged...)
}

var entryLine = regexp.MustCompile(`^(.+?):(\d+):\s*(.*)$`)

// ParseOutput splits the combined output of a validator run into its error
// section and its flagged section. The sections are separated by the first
// blank line. Lines of the form "<file>:<line>: <message>" become entries,
// indented lines continue the previous entry's message and anything else is
// dropped.
//
// Output whose first non-empty line is a JSON array is read positionally: the
// first two lines hold the errors and the flagged entries as arrays of
// {"file","line","message"} objects.
func ParseOutput(text string) *Output {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if out, ok := parseJSON(text); ok {
		return out
	}

	first, second, _ := strings.Cut(text, "\n\n")
	return &Output{
		Errors:  parseSection(first, ClassError),
		Flagged: parseSection(second, ClassFlagged),
	}
}

func parseSection(section string, class Class) []Entry {
	entries := make([]Entry, 0)
	for _, line := range strings.Split(section, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			if n := len(entries); n > 0 {
				entries[n-1].Message += "\n" + strings.TrimSpace(line)
			}
			continue
		}

		m := entryLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, err := strconv.Atoi(m[2])
		if err != nil || lineNo < 1 {
			continue
		}
		entries = append(entries, Entry{
			File:    m[1],
			Line:    lineNo,
			Class:   class,
			Message: strings.TrimSpace(m[3]),
		})
	}
	return entries
}

type jsonEntry struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func parseJSON(text string) (*Output, bool) {
	lines := make([]string, 0, 2)
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, strings.TrimSpace(l))
		if len(lines) == 2 {
			break
		}
	}
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "[") {
		return nil, false
	}

	out := &Output{Errors: make([]Entry, 0), Flagged: make([]Entry, 0)}
	targets := []*[]Entry{&out.Errors, &out.Flagged}
	classes := []Class{ClassError, ClassFlagged}

	for i, l := range lines {
		var raw []jsonEntry
		if err := json.Unmarshal([]byte(l), &raw); err != nil {
			return nil, false
		}
		for _, e := range raw {
			if e.File == "" || e.Line < 1 {
				continue
			}
			*targets[i] = append(*targets[i], Entry{
				File:    e.File,
				Line:    e.Line,
				Class:   classes[i],
				Message: e.Message,
			})
		}
	}
	return out, true
}
