package position_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/beanls/pkg/position"
	"github.com/walteh/beanls/pkg/syntax"
)

func TestIndexOffsetAndPoint(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		point  syntax.Point
		offset int
	}{
		{
			name:   "empty text",
			text:   "",
			point:  syntax.Point{Line: 0, Column: 0},
			offset: 0,
		},
		{
			name:   "single line, middle position",
			text:   "Hello, World!",
			point:  syntax.Point{Line: 0, Column: 7},
			offset: 7,
		},
		{
			name:   "multiple lines, second line",
			text:   "line one\nline two\nline three",
			point:  syntax.Point{Line: 1, Column: 5},
			offset: 14,
		},
		{
			name:   "start of last line",
			text:   "a\nb\n",
			point:  syntax.Point{Line: 2, Column: 0},
			offset: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := position.NewIndex(tt.text)
			assert.Equal(t, tt.offset, ix.Offset(tt.point), "offset")
			assert.Equal(t, tt.point, ix.Point(tt.offset), "point")
		})
	}
}

func TestIndexOffsetClamps(t *testing.T) {
	ix := position.NewIndex("ab\ncd")

	assert.Equal(t, 0, ix.Offset(syntax.Point{Line: -1, Column: 4}))
	assert.Equal(t, 2, ix.Offset(syntax.Point{Line: 0, Column: 40}))
	assert.Equal(t, 5, ix.Offset(syntax.Point{Line: 9, Column: 0}))
	assert.Equal(t, syntax.Point{Line: 1, Column: 2}, ix.Point(99))
}

func TestIndexLine(t *testing.T) {
	ix := position.NewIndex("first\r\nsecond\n")

	assert.Equal(t, 3, ix.LineCount())
	assert.Equal(t, "first", ix.Line(0))
	assert.Equal(t, "second", ix.Line(1))
	assert.Equal(t, "", ix.Line(2))
	assert.Equal(t, "", ix.Line(3))
}

func TestUTF16Conversion(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		byteCol  int
		utf16Col int
	}{
		{name: "ascii", line: "Assets:Cash", byteCol: 6, utf16Col: 6},
		{name: "two byte rune", line: "\"café\" x", byteCol: 7, utf16Col: 6},
		{name: "surrogate pair", line: "😀 EUR", byteCol: 5, utf16Col: 3},
		{name: "end of line", line: "é", byteCol: 2, utf16Col: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.utf16Col, position.UTF16Column(tt.line, tt.byteCol))
			assert.Equal(t, tt.byteCol, position.ByteColumn(tt.line, tt.utf16Col))
		})
	}
}

func TestPlaceRoundTrip(t *testing.T) {
	ix := position.NewIndex("2024-01-01 * \"Café\"\n  Assets:Cash  -5 EUR\n")

	p := syntax.Point{Line: 0, Column: 20}
	place := ix.Place(p)
	assert.Equal(t, position.Place{Line: 0, Character: 19}, place)
	assert.Equal(t, p, ix.BytePoint(place))

	assert.Equal(t, 4, position.UTF16Len("Café"))
	assert.Equal(t, 2, position.UTF16Len("😀"))
}
