// Package diff renders test mismatches as a line diff.
package diff

import (
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/kylelemons/godebug/diff"
)

// DiffExportedOnly pretty-prints both values, exported fields only, and
// returns their line diff. Equal values give an empty string.
func DiffExportedOnly[T any](want T, got T) string {
	printer := pp.New()
	printer.SetExportedOnly(true)
	printer.SetColoringEnabled(false)

	return Text(printer.Sprint(want), printer.Sprint(got))
}

// Text diffs two multi-line strings. Lines marked ➕ are missing from got and
// lines marked ➖ should not be there.
func Text(want, got string) string {
	if want == got {
		return ""
	}
	d := diff.Diff(got, want)

	var b strings.Builder
	b.WriteString("\n\nto convert ACTUAL ⏩️ EXPECTED:\n\n")
	b.WriteString("add:    ➕\n")
	b.WriteString("remove: ➖\n\n")

	for _, line := range strings.Split(d, "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			line = "➕" + line[1:]
		case strings.HasPrefix(line, "-"):
			line = "➖" + line[1:]
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
