package semtok

// EncodeData converts ordered tokens to the LSP relative integer encoding:
// per token (deltaLine, deltaStartChar, length, categoryIndex, modifierBits).
// The start character is relative to the previous token only when both are on
// the same line. Tokens the legend cannot represent are skipped.
func EncodeData(tokens []Token, legend *Legend) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevChar int

	for _, tok := range tokens {
		cat, ok := legend.CategoryIndex(tok.Category)
		if !ok {
			continue
		}
		mod, ok := legend.ModifierMask(tok.Modifier)
		if !ok {
			mod = 0
		}

		deltaLine := tok.Line - prevLine
		deltaChar := tok.Column
		if deltaLine == 0 {
			deltaChar = tok.Column - prevChar
		}

		data = append(data, uint32(deltaLine), uint32(deltaChar), uint32(tok.Length), cat, mod)

		prevLine = tok.Line
		prevChar = tok.Column
	}

	return data
}

// DecodeData reverses EncodeData.
func DecodeData(data []uint32, legend *Legend) []Token {
	tokens := make([]Token, 0, len(data)/5)
	var line, char int

	for i := 0; i+4 < len(data); i += 5 {
		if data[i] > 0 {
			line += int(data[i])
			char = int(data[i+1])
		} else {
			char += int(data[i+1])
		}

		tok := Token{Line: line, Column: char, Length: int(data[i+2])}
		if idx := int(data[i+3]); idx < len(legend.Categories) {
			tok.Category = legend.Categories[idx]
		}
		for bit, m := range legend.Modifiers {
			if data[i+4]&(1<<uint32(bit)) != 0 {
				tok.Modifier = m
				break
			}
		}
		tokens = append(tokens, tok)
	}

	return tokens
}
