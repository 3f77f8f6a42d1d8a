package position

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/walteh/beanls/pkg/syntax"
)

// Place is a zero-based position in editor coordinates, where Character counts
// UTF-16 code units.
type Place struct {
	Line      int
	Character int
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

type Range struct {
	Start Place
	End   Place
}

// Index maps between byte offsets, byte columns and UTF-16 columns of a text.
type Index struct {
	text  string
	lines []int // byte offset of the first byte of each line
}

func NewIndex(text string) *Index {
	lines := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &Index{text: text, lines: lines}
}

func (ix *Index) Text() string {
	return ix.text
}

func (ix *Index) LineCount() int {
	return len(ix.lines)
}

// Line returns the content of line n without its terminator.
func (ix *Index) Line(n int) string {
	if n < 0 || n >= len(ix.lines) {
		return ""
	}
	start := ix.lines[n]
	end := len(ix.text)
	if n+1 < len(ix.lines) {
		end = ix.lines[n+1] - 1
	}
	return strings.TrimSuffix(ix.text[start:end], "\r")
}

// Offset converts a byte point to a byte offset, clamping out-of-range input
// to the nearest valid offset.
func (ix *Index) Offset(p syntax.Point) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(ix.lines) {
		return len(ix.text)
	}
	off := ix.lines[p.Line] + max(p.Column, 0)
	end := len(ix.text)
	if p.Line+1 < len(ix.lines) {
		end = ix.lines[p.Line+1] - 1
	}
	return min(off, end)
}

// Point converts a byte offset to a byte point.
func (ix *Index) Point(offset int) syntax.Point {
	offset = min(max(offset, 0), len(ix.text))
	line := sort.Search(len(ix.lines), func(i int) bool { return ix.lines[i] > offset }) - 1
	return syntax.Point{Line: line, Column: offset - ix.lines[line]}
}

// Place converts a byte point to editor coordinates.
func (ix *Index) Place(p syntax.Point) Place {
	return Place{Line: p.Line, Character: UTF16Column(ix.Line(p.Line), p.Column)}
}

// BytePoint converts editor coordinates to a byte point.
func (ix *Index) BytePoint(p Place) syntax.Point {
	return syntax.Point{Line: p.Line, Column: ByteColumn(ix.Line(p.Line), p.Character)}
}

// UTF16Column converts a byte column within line to a UTF-16 column.
func UTF16Column(line string, byteCol int) int {
	if byteCol > len(line) {
		// past the end of the line (e.g. the terminator); keep the overshoot
		return UTF16Len(line) + byteCol - len(line)
	}
	return UTF16Len(line[:max(byteCol, 0)])
}

// ByteColumn converts a UTF-16 column within line to a byte column.
func ByteColumn(line string, utf16Col int) int {
	units := 0
	for i, r := range line {
		if units >= utf16Col {
			return i
		}
		units += utf16.RuneLen(r)
	}
	return len(line)
}

// UTF16Len is the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r == utf8.RuneError && size == 1 {
			n++
			continue
		}
		n += utf16.RuneLen(r)
	}
	return n
}
