package semtok

// Legend is the session's agreed list of categories and modifiers. A token's
// category is sent as its index in Categories, and its modifier as the bit at
// its index in Modifiers.
type Legend struct {
	Categories []Category
	Modifiers  []Modifier

	categoryIndex map[Category]uint32
	modifierBit   map[Modifier]uint32
}

func newLegend(cats []Category, mods []Modifier) *Legend {
	l := &Legend{
		Categories:    cats,
		Modifiers:     mods,
		categoryIndex: make(map[Category]uint32, len(cats)),
		modifierBit:   make(map[Modifier]uint32, len(mods)),
	}
	for i, c := range cats {
		l.categoryIndex[c] = uint32(i)
	}
	for i, m := range mods {
		l.modifierBit[m] = 1 << uint32(i)
	}
	return l
}

// FullLegend is every category and modifier the server knows.
func FullLegend() *Legend {
	return newLegend(Categories(), Modifiers())
}

// Negotiate intersects the client's supported names with the server's
// canonical enumeration, keeping server order. Unknown client names are
// ignored and an empty intersection yields an empty legend.
func Negotiate(clientCategories, clientModifiers []string) *Legend {
	wantCats := make(map[string]bool, len(clientCategories))
	for _, n := range clientCategories {
		wantCats[n] = true
	}
	wantMods := make(map[string]bool, len(clientModifiers))
	for _, n := range clientModifiers {
		wantMods[n] = true
	}

	cats := make([]Category, 0, len(clientCategories))
	for _, c := range Categories() {
		if wantCats[c.String()] {
			cats = append(cats, c)
		}
	}
	mods := make([]Modifier, 0, len(clientModifiers))
	for _, m := range Modifiers() {
		if wantMods[m.String()] {
			mods = append(mods, m)
		}
	}
	return newLegend(cats, mods)
}

func (l *Legend) CategoryNames() []string {
	out := make([]string, len(l.Categories))
	for i, c := range l.Categories {
		out[i] = c.String()
	}
	return out
}

func (l *Legend) ModifierNames() []string {
	out := make([]string, len(l.Modifiers))
	for i, m := range l.Modifiers {
		out[i] = m.String()
	}
	return out
}

func (l *Legend) Empty() bool {
	return len(l.Categories) == 0
}

// CategoryIndex is the wire index of c, or false if c is not in the legend.
func (l *Legend) CategoryIndex(c Category) (uint32, bool) {
	i, ok := l.categoryIndex[c]
	return i, ok
}

// ModifierMask is the wire bitset for m. ModifierNone is always representable.
func (l *Legend) ModifierMask(m Modifier) (uint32, bool) {
	if m == ModifierNone {
		return 0, true
	}
	bit, ok := l.modifierBit[m]
	return bit, ok
}

// Allows reports whether a token can be encoded against this legend.
func (l *Legend) Allows(t Token) bool {
	if _, ok := l.CategoryIndex(t.Category); !ok {
		return false
	}
	_, ok := l.ModifierMask(t.Modifier)
	return ok
}
