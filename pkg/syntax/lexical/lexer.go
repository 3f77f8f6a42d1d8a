// Package lexical builds shallow syntax trees for ledger documents from a
// participle lexer. It does not parse the ledger grammar; each entry line
// becomes one node whose children are the line's tokens.
package lexical

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// LexerRules defines the lexer rules for ledger files
	LexerRules = lexer.Rules{
		"Root": {
			{"Newline", `\n`, nil},
			{"whitespace", `[ \t\r]+`, nil},
			{"Comment", `;[^\n]*`, nil},
			// Literals
			{"Date", `\d{4}[-/]\d{2}[-/]\d{2}`, nil},
			{"Account", `\p{Lu}[\p{L}\p{N}-]*(?::[\p{Lu}\p{N}][\p{L}\p{N}-]*)+`, nil},
			{"String", `"(?:\\.|[^"\\])*"`, nil},
			{"Number", `[-+]?(?:\d[\d,]*)?\.?\d+`, nil},
			{"Bool", `(?:TRUE|FALSE)\b`, nil},
			{"Currency", `[A-Z][A-Z0-9'._-]*[A-Z0-9]`, nil},
			{"Tag", `#[\w/.-]+`, nil},
			{"Link", `\^[\w/.-]+`, nil},
			// Metadata keys, before keywords so "note:" stays a key
			{"Key", `[a-z][\w-]*:`, nil},
			{"Keyword", `(?:txn|open|close|balance|pad|price|event|note|document|commodity|option|include|plugin|pushtag|poptag|pushmeta|popmeta|query|custom)\b`, nil},
			{"Flag", `[*!&#?%PSTCURM]`, nil},
			{"Punct", `@@|[{}@,~()]`, nil},
			// Catch any remaining characters
			{"Char", `[^\n]`, nil},
		},
	}

	// LedgerLexer is the stateful lexer for ledger files
	LedgerLexer = lexer.MustStateful(LexerRules)
)

func symbol(name string) lexer.TokenType {
	return LedgerLexer.Symbols()[name]
}

var (
	tokNewline  = symbol("Newline")
	tokComment  = symbol("Comment")
	tokDate     = symbol("Date")
	tokAccount  = symbol("Account")
	tokString   = symbol("String")
	tokNumber   = symbol("Number")
	tokBool     = symbol("Bool")
	tokCurrency = symbol("Currency")
	tokTag      = symbol("Tag")
	tokLink     = symbol("Link")
	tokKey      = symbol("Key")
	tokKeyword  = symbol("Keyword")
	tokFlag     = symbol("Flag")
	tokEOF      = lexer.EOF
)

// Lex returns every significant token of text, newlines included.
func Lex(text string) ([]lexer.Token, error) {
	lex, err := LedgerLexer.LexString("", text)
	if err != nil {
		return nil, err
	}
	return lexer.ConsumeAll(lex)
}
