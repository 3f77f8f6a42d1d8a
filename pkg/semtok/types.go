/*
Token Categories and Modifiers:
-----------------------------
This file defines the core types used for semantic token generation.

	+-------------+     +-----------+
	| Category    | --> | Position  |
	+-------------+     +-----------+
	      |                  |
	      v                  v
	[keyword,          Line:Column
	 type,             (UTF-16)
	 number, ...]      + Length

The enumeration order of Category and Modifier is the server's canonical
order. A negotiated Legend keeps that order and only drops entries.
*/
package semtok

// Category is the semantic meaning of a token (an LSP token type).
type Category uint32

const (
	CategoryNamespace Category = iota
	CategoryType
	CategoryClass
	CategoryEnum
	CategoryInterface
	CategoryStruct
	CategoryTypeParameter
	CategoryParameter
	CategoryVariable
	CategoryProperty
	CategoryEnumMember
	CategoryEvent
	CategoryFunction
	CategoryMethod
	CategoryMacro
	CategoryKeyword
	CategoryModifier
	CategoryComment
	CategoryString
	CategoryNumber
	CategoryRegexp
	CategoryOperator
	CategoryDecorator
	CategoryLabel

	categoryCount
)

var categoryNames = [categoryCount]string{
	CategoryNamespace:     "namespace",
	CategoryType:          "type",
	CategoryClass:         "class",
	CategoryEnum:          "enum",
	CategoryInterface:     "interface",
	CategoryStruct:        "struct",
	CategoryTypeParameter: "typeParameter",
	CategoryParameter:     "parameter",
	CategoryVariable:      "variable",
	CategoryProperty:      "property",
	CategoryEnumMember:    "enumMember",
	CategoryEvent:         "event",
	CategoryFunction:      "function",
	CategoryMethod:        "method",
	CategoryMacro:         "macro",
	CategoryKeyword:       "keyword",
	CategoryModifier:      "modifier",
	CategoryComment:       "comment",
	CategoryString:        "string",
	CategoryNumber:        "number",
	CategoryRegexp:        "regexp",
	CategoryOperator:      "operator",
	CategoryDecorator:     "decorator",
	CategoryLabel:         "label",
}

// Categories returns every category in canonical order.
func Categories() []Category {
	out := make([]Category, categoryCount)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

func (c Category) String() string {
	if c >= categoryCount {
		return "unknown"
	}
	return categoryNames[c]
}

// ParseCategory looks a category up by its LSP name.
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return 0, false
}

// Modifier is an additional characteristic of a token. Tokens in this server
// carry at most one modifier.
type Modifier uint32

const (
	ModifierNone Modifier = iota
	ModifierDeclaration
	ModifierDefinition
	ModifierReadonly
	ModifierStatic
	ModifierDeprecated
	ModifierAbstract
	ModifierAsync
	ModifierModification
	ModifierDocumentation
	ModifierDefaultLibrary

	modifierCount
)

var modifierNames = [modifierCount]string{
	ModifierNone:           "",
	ModifierDeclaration:    "declaration",
	ModifierDefinition:     "definition",
	ModifierReadonly:       "readonly",
	ModifierStatic:         "static",
	ModifierDeprecated:     "deprecated",
	ModifierAbstract:       "abstract",
	ModifierAsync:          "async",
	ModifierModification:   "modification",
	ModifierDocumentation:  "documentation",
	ModifierDefaultLibrary: "defaultLibrary",
}

// Modifiers returns every modifier except ModifierNone in canonical order.
func Modifiers() []Modifier {
	out := make([]Modifier, 0, modifierCount-1)
	for m := ModifierDeclaration; m < modifierCount; m++ {
		out = append(out, m)
	}
	return out
}

func (m Modifier) String() string {
	if m == ModifierNone {
		return "none"
	}
	if m >= modifierCount {
		return "unknown"
	}
	return modifierNames[m]
}

// ParseModifier looks a modifier up by its LSP name.
func ParseModifier(name string) (Modifier, bool) {
	if name == "" {
		return 0, false
	}
	for i, n := range modifierNames {
		if n == name {
			return Modifier(i), true
		}
	}
	return 0, false
}

// Token is one classified span. Column and Length are in UTF-16 code units.
type Token struct {
	Line     int
	Column   int
	Length   int
	Category Category
	Modifier Modifier
}

// Stream is an ordered token sequence identified by a result id.
type Stream struct {
	ResultID string
	Tokens   []Token
	// Data is the wire encoding of Tokens against the session legend.
	Data []uint32
}
