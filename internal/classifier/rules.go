package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"litrecord/internal/domain"
)

// RuleFile is the YAML layout of a rule configuration file:
//
//	fallback: facility
//	categories: [billing]
//	rules:
//	  - keyword: insurance
//	    category: admin
type RuleFile struct {
	Fallback   string   `yaml:"fallback"`
	Categories []string `yaml:"categories"`
	Rules      []struct {
		Keyword  string `yaml:"keyword"`
		Category string `yaml:"category"`
	} `yaml:"rules"`
}

// ErrNoRules is returned when a rule file declares no usable rules.
var ErrNoRules = errors.New("rule file declares no rules")

// LoadFile reads and validates a YAML rule file.
func LoadFile(path string, registry *domain.CategoryRegistry) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}
	return Parse(data, registry)
}

// Parse decodes a YAML rule table. Categories declared by the file are
// staged on a copy of the registry while the rules are validated and only
// registered once the whole file is accepted.
func Parse(data []byte, registry *domain.CategoryRegistry) (*Classifier, error) {
	var rf RuleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil {
		return nil, fmt.Errorf("decoding rule file: %w", err)
	}

	staged := registry.Clone()
	for _, name := range rf.Categories {
		if _, err := staged.Register(name); err != nil {
			return nil, err
		}
	}

	fallback := domain.CategoryFacility
	if rf.Fallback != "" {
		c, err := staged.Parse(rf.Fallback)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		if c == domain.CategoryDuplicate {
			return nil, fmt.Errorf("fallback: %w: duplicate is assigned by fingerprint only", domain.ErrInvalidTransition)
		}
		fallback = c
	}

	rules := make([]Rule, 0, len(rf.Rules))
	for i, r := range rf.Rules {
		if r.Keyword == "" {
			return nil, fmt.Errorf("rule %d: empty keyword", i+1)
		}
		c, err := staged.Parse(r.Category)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i+1, r.Keyword, err)
		}
		if c == domain.CategoryDuplicate {
			return nil, fmt.Errorf("rule %d (%q): %w: duplicate is assigned by fingerprint only",
				i+1, r.Keyword, domain.ErrInvalidTransition)
		}
		rules = append(rules, Rule{Keyword: r.Keyword, Category: c})
	}
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	for _, name := range rf.Categories {
		if _, err := registry.Register(name); err != nil {
			return nil, err
		}
	}
	return New(rules, fallback), nil
}
