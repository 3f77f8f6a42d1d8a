package semtok

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/beanls/pkg/syntax"
)

// Rule is the classification applied to every node of one kind.
type Rule struct {
	Category Category
	Modifier Modifier

	// Literal restricts the rule to nodes whose text is the kind itself. The
	// ledger grammar names a directive and its keyword token the same way
	// ("open" the directive vs "open" the word), and only the word should be
	// highlighted.
	Literal bool
}

// RuleTable maps a node kind to its classification.
type RuleTable map[string]Rule

// Lookup returns the rule that applies to n, if any.
func (t RuleTable) Lookup(n syntax.Node) (Rule, bool) {
	rule, ok := t[n.Kind()]
	if !ok {
		return Rule{}, false
	}
	if rule.Literal && n.Text() != n.Kind() {
		return Rule{}, false
	}
	return rule, true
}

// Clone returns an independent copy of t.
func (t RuleTable) Clone() RuleTable {
	out := make(RuleTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Override returns a copy of t with the given kind -> "category[.modifier]"
// specs applied. A spec of "none" removes the kind from the table.
func (t RuleTable) Override(specs map[string]string) (RuleTable, error) {
	out := t.Clone()
	for kind, spec := range specs {
		if spec == "none" {
			delete(out, kind)
			continue
		}
		rule, err := ParseRule(spec)
		if err != nil {
			return nil, errors.Errorf("rule for %q: %w", kind, err)
		}
		if prev, ok := t[kind]; ok {
			rule.Literal = prev.Literal
		}
		out[kind] = rule
	}
	return out, nil
}

// ParseRule parses "category" or "category.modifier".
func ParseRule(spec string) (Rule, error) {
	catName, modName, hasMod := strings.Cut(strings.TrimSpace(spec), ".")
	cat, ok := ParseCategory(catName)
	if !ok {
		return Rule{}, errors.Errorf("unknown token category %q", catName)
	}
	rule := Rule{Category: cat}
	if hasMod {
		mod, ok := ParseModifier(modName)
		if !ok {
			return Rule{}, errors.Errorf("unknown token modifier %q", modName)
		}
		rule.Modifier = mod
	}
	return rule, nil
}

func keyword() Rule {
	return Rule{Category: CategoryKeyword, Literal: true}
}

// DefaultRules classifies the node kinds of the beancount tree-sitter grammar.
func DefaultRules() RuleTable {
	return RuleTable{
		"comment": {Category: CategoryComment},
		"section": {Category: CategoryComment, Modifier: ModifierDocumentation},

		"date":     {Category: CategoryNumber, Modifier: ModifierReadonly},
		"number":   {Category: CategoryNumber},
		"currency": {Category: CategoryEnumMember, Modifier: ModifierReadonly},
		"account":  {Category: CategoryType},

		"string":    {Category: CategoryString},
		"payee":     {Category: CategoryString, Modifier: ModifierDeclaration},
		"narration": {Category: CategoryString},

		"txn":  {Category: CategoryKeyword},
		"flag": {Category: CategoryOperator},
		"tag":  {Category: CategoryDecorator},
		"link": {Category: CategoryLabel},
		"key":  {Category: CategoryProperty},
		"bool": {Category: CategoryKeyword, Modifier: ModifierReadonly},

		"open":      keyword(),
		"close":     keyword(),
		"balance":   keyword(),
		"pad":       keyword(),
		"price":     keyword(),
		"event":     keyword(),
		"note":      keyword(),
		"document":  keyword(),
		"commodity": keyword(),
		"option":    keyword(),
		"include":   keyword(),
		"plugin":    keyword(),
		"pushtag":   keyword(),
		"poptag":    keyword(),
		"pushmeta":  keyword(),
		"popmeta":   keyword(),
		"query":     keyword(),
		"custom":    keyword(),
	}
}
