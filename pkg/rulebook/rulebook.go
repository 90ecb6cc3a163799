/*
Package rulebook loads declarative rule books for the dialogue manager.

A rule book is a YAML document listing rules by state name. Handlers stay in
code; the book only describes the matching side, and Bind connects each state
name to its handler at registration time:

	rules:
	  - state: greet
	    domain: smalltalk
	  - state: forecast
	    domain: weather
	    intents: [forecast, outlook]
	    entities: [city, date]
	  - state: paris_forecast
	    domain: weather
	    intent: forecast
	    entities:
	      city: Paris

The entities key accepts a single type, a list of types, or a mapping of
type to required value. This loose YAML shape is normalized here, at the
boundary; the core rule model only ever sees the tagged EntitySpec variants.
*/
package rulebook

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/parley/pkg/dialogue"
	"github.com/aretw0/parley/pkg/domain"
)

// RuleDef is the declarative form of one rule.
type RuleDef struct {
	State    string   `mapstructure:"state"`
	Domain   string   `mapstructure:"domain"`
	Domains  []string `mapstructure:"domains"`
	Intent   string   `mapstructure:"intent"`
	Intents  []string `mapstructure:"intents"`
	Entities any      `mapstructure:"entities"`

	// Replies and Prompts are optional phrasing variants for hosts that
	// generate templated handlers straight from the book (the CLI does this).
	// Managers with code handlers can ignore them.
	Replies []string `mapstructure:"replies"`
	Prompts []string `mapstructure:"prompts"`
}

// Book is a parsed rule book.
type Book struct {
	Defs []RuleDef
}

// Load parses a YAML rule book.
func Load(data []byte) (*Book, error) {
	var doc struct {
		Rules []map[string]any `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rule book: %w", err)
	}

	book := &Book{Defs: make([]RuleDef, 0, len(doc.Rules))}
	for i, raw := range doc.Rules {
		var def RuleDef
		if err := mapstructure.Decode(raw, &def); err != nil {
			return nil, fmt.Errorf("failed to decode rule %d: %w", i, err)
		}
		if def.State == "" {
			return nil, &domain.InvalidSpecificationError{Field: "state", Reason: fmt.Sprintf("rule %d is missing a state name", i)}
		}
		book.Defs = append(book.Defs, def)
	}
	return book, nil
}

// LoadFile reads and parses a rule book from disk.
func LoadFile(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule book: %w", err)
	}
	return Load(data)
}

// Spec normalizes the def into a rule spec, resolving the entity shape.
func (d RuleDef) Spec() (dialogue.RuleSpec, error) {
	spec := dialogue.RuleSpec{
		Domain:  d.Domain,
		Domains: d.Domains,
		Intent:  d.Intent,
		Intents: d.Intents,
	}

	switch v := d.Entities.(type) {
	case nil:
		// No entity requirement.
	case string:
		spec.Entities = dialogue.EntitiesByType(v)
	case []any:
		types := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return dialogue.RuleSpec{}, &domain.InvalidSpecificationError{
					Field: "entities", Reason: "entity type list may only contain strings", Value: item,
				}
			}
			types = append(types, s)
		}
		spec.Entities = dialogue.EntitiesByType(types...)
	case map[string]any:
		values := make(map[string]string, len(v))
		if err := mapstructure.WeakDecode(v, &values); err != nil {
			return dialogue.RuleSpec{}, &domain.InvalidSpecificationError{
				Field: "entities", Reason: "entity value mapping must map types to scalar values", Value: v,
			}
		}
		spec.Entities = dialogue.EntitiesByValue(values)
	default:
		return dialogue.RuleSpec{}, &domain.InvalidSpecificationError{
			Field: "entities", Reason: "unrecognized entity specification shape", Value: v,
		}
	}

	return spec, nil
}

// Validate constructs every rule without registering it, reporting the first
// definition error encountered.
func (b *Book) Validate() error {
	for _, def := range b.Defs {
		spec, err := def.Spec()
		if err != nil {
			return fmt.Errorf("rule %q: %w", def.State, err)
		}
		if _, err := dialogue.NewRule(def.State, spec); err != nil {
			return fmt.Errorf("rule %q: %w", def.State, err)
		}
	}
	return nil
}

// Bind registers every rule in the book on the manager, resolving handlers
// by state name. Every state in the book must have a handler.
func (b *Book) Bind(m *dialogue.Manager, handlers map[string]dialogue.HandlerFunc) error {
	for _, def := range b.Defs {
		spec, err := def.Spec()
		if err != nil {
			return fmt.Errorf("rule %q: %w", def.State, err)
		}
		handler, ok := handlers[def.State]
		if !ok {
			return fmt.Errorf("rule %q: %w", def.State, domain.ErrMissingHandler)
		}
		if err := m.Register(def.State, handler, spec); err != nil {
			return fmt.Errorf("rule %q: %w", def.State, err)
		}
	}
	return nil
}
