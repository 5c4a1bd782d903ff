// Package classifier routes page text to a category using an ordered,
// injectable keyword rule table.
package classifier

import (
	"strings"

	"litrecord/internal/domain"
)

// Rule maps a case-insensitive keyword or phrase to a category.
type Rule struct {
	Keyword  string          `yaml:"keyword" json:"keyword"`
	Category domain.Category `yaml:"category" json:"category"`
}

// Classifier evaluates rules in order. The first rule whose keyword occurs in
// the text wins; text matching no rule gets the fallback category.
type Classifier struct {
	rules    []Rule
	lowered  []string
	fallback domain.Category
}

// New builds a Classifier over a copy of rules.
func New(rules []Rule, fallback domain.Category) *Classifier {
	c := &Classifier{
		rules:    make([]Rule, 0, len(rules)),
		lowered:  make([]string, 0, len(rules)),
		fallback: fallback,
	}
	for _, r := range rules {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		if kw == "" {
			continue
		}
		c.rules = append(c.rules, r)
		c.lowered = append(c.lowered, kw)
	}
	return c
}

// Default returns a Classifier over DefaultRules with facility as fallback.
func Default() *Classifier {
	return New(DefaultRules(), domain.CategoryFacility)
}

// Classify returns the category for text.
func (c *Classifier) Classify(text string) domain.Category {
	cat, _ := c.Match(text)
	return cat
}

// Match returns the category for text along with the rule that decided it.
// The rule is nil when the fallback applied.
func (c *Classifier) Match(text string) (domain.Category, *Rule) {
	if text == "" {
		return c.fallback, nil
	}
	lower := strings.ToLower(text)
	for i, kw := range c.lowered {
		if strings.Contains(lower, kw) {
			r := c.rules[i]
			return r.Category, &r
		}
	}
	return c.fallback, nil
}

// Rules returns a copy of the rule table in priority order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Fallback returns the category used when no rule matches.
func (c *Classifier) Fallback() domain.Category { return c.fallback }

// DefaultRules is the built-in table of administrative keywords.
func DefaultRules() []Rule {
	keywords := []string{
		"insurance",
		"consent",
		"authorization",
		"release of information",
		"hipaa",
		"privacy notice",
		"policy",
		"billing",
		"invoice",
		"statement of account",
		"explanation of benefits",
		"financial responsibility",
		"advance directive",
		"power of attorney",
		"admission agreement",
		"patient rights",
		"face sheet",
	}
	rules := make([]Rule, len(keywords))
	for i, kw := range keywords {
		rules[i] = Rule{Keyword: kw, Category: domain.CategoryAdmin}
	}
	return rules
}
