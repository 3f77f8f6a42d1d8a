package semtok

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Edit replaces DeleteCount integers of the previous data array, starting at
// Start, with Data. Start and DeleteCount are multiples of five, so edits
// always cover whole tokens.
type Edit struct {
	Start       uint32
	DeleteCount uint32
	Data        []uint32
}

// DeltaResult is either a list of edits against the previous stream or, when
// there was no usable previous stream, a full replacement.
type DeltaResult struct {
	ResultID string
	Edits    []Edit
	Full     *Stream
}

// DiffData computes the edits that turn the old wire array into the new one.
// Edit offsets refer to the old array and are ascending and disjoint.
func DiffData(old, updated []uint32) []Edit {
	a := tupleKeys(old)
	b := tupleKeys(updated)

	matcher := difflib.NewMatcher(a, b)

	edits := make([]Edit, 0)
	for _, op := range matcher.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		edits = append(edits, Edit{
			Start:       uint32(op.I1 * 5),
			DeleteCount: uint32((op.I2 - op.I1) * 5),
			Data:        append([]uint32{}, updated[op.J1*5:op.J2*5]...),
		})
	}
	return edits
}

// ApplyEdits applies edits produced by DiffData to old.
func ApplyEdits(old []uint32, edits []Edit) []uint32 {
	out := make([]uint32, 0, len(old))
	pos := 0
	for _, e := range edits {
		out = append(out, old[pos:e.Start]...)
		out = append(out, e.Data...)
		pos = int(e.Start + e.DeleteCount)
	}
	return append(out, old[pos:]...)
}

func tupleKeys(data []uint32) []string {
	keys := make([]string, 0, len(data)/5)
	for i := 0; i+4 < len(data); i += 5 {
		keys = append(keys, fmt.Sprintf("%d,%d,%d,%d,%d", data[i], data[i+1], data[i+2], data[i+3], data[i+4]))
	}
	return keys
}
