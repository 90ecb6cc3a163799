package dialogue

import (
	"sort"

	"github.com/aretw0/parley/pkg/domain"
)

// Specificity bit weights. Each configured filter category contributes an
// independent bit, so any subset of categories yields a unique score (0-15).
const (
	specDomain       = 1 << 0
	specIntent       = 1 << 1
	specEntityTypes  = 1 << 2
	specEntityValues = 1 << 3
)

// EntitySpec is the tagged entity requirement of a rule: either a set of
// required entity types, or a mapping of type to required value. The zero
// value means "no entity requirement". Use the constructors; a spec never
// carries both variants.
type EntitySpec struct {
	types  map[string]struct{}
	values map[string]string
}

// EntitiesByType requires every listed entity type to appear in the context
// at least once. Extra entity types in the context are allowed.
func EntitiesByType(types ...string) EntitySpec {
	if len(types) == 0 {
		return EntitySpec{}
	}
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return EntitySpec{types: set}
}

// EntitiesByValue requires, for every (type, value) pair, at least one context
// entity of that type whose value equals the required value.
func EntitiesByValue(values map[string]string) EntitySpec {
	if len(values) == 0 {
		return EntitySpec{}
	}
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return EntitySpec{values: copied}
}

// IsZero reports whether the spec carries no entity requirement.
func (s EntitySpec) IsZero() bool {
	return s.types == nil && s.values == nil
}

// RuleSpec describes the filters of a rule before construction.
// Domain/Domains and Intent/Intents are mutually exclusive pairs; supplying
// both members of a pair is an InvalidSpecificationError.
type RuleSpec struct {
	Domain   string
	Domains  []string
	Intent   string
	Intents  []string
	Entities EntitySpec
}

// Rule is an immutable matching predicate over a context plus a derived
// specificity score. Rules are constructed once and never mutated.
type Rule struct {
	state        string
	domains      map[string]struct{}
	intents      map[string]struct{}
	entityTypes  map[string]struct{}
	entityValues map[string]string
	specificity  int
}

// NewRule validates the spec and constructs an immutable rule for the given
// dialogue state name.
func NewRule(state string, spec RuleSpec) (*Rule, error) {
	if state == "" {
		return nil, &domain.InvalidSpecificationError{Field: "state", Reason: "state name is required"}
	}
	if spec.Domain != "" && spec.Domains != nil {
		return nil, &domain.InvalidSpecificationError{Field: "domain", Reason: "only one of domain and domains may be specified"}
	}
	if spec.Intent != "" && spec.Intents != nil {
		return nil, &domain.InvalidSpecificationError{Field: "intent", Reason: "only one of intent and intents may be specified"}
	}

	r := &Rule{state: state}
	r.domains = toSet(spec.Domain, spec.Domains)
	r.intents = toSet(spec.Intent, spec.Intents)
	if len(spec.Entities.types) > 0 {
		r.entityTypes = spec.Entities.types
	}
	if len(spec.Entities.values) > 0 {
		r.entityValues = spec.Entities.values
	}

	if r.domains != nil {
		r.specificity |= specDomain
	}
	if r.intents != nil {
		r.specificity |= specIntent
	}
	if r.entityTypes != nil {
		r.specificity |= specEntityTypes
	}
	if r.entityValues != nil {
		r.specificity |= specEntityValues
	}
	return r, nil
}

func toSet(single string, plural []string) map[string]struct{} {
	if single == "" && len(plural) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(plural)+1)
	if single != "" {
		set[single] = struct{}{}
	}
	for _, v := range plural {
		set[v] = struct{}{}
	}
	return set
}

// State returns the dialogue state name this rule resolves to.
func (r *Rule) State() string {
	return r.state
}

// Specificity returns the bit-flag score of the rule's configured filters.
// It is a pure function of the rule, independent of any context.
func (r *Rule) Specificity() int {
	return r.specificity
}

// Apply reports whether the context satisfies every configured filter.
// Filters that are not configured are vacuously satisfied, so a rule with no
// filters matches every valid context.
//
// The checks short-circuit in order: domain, intent, entity types, entity
// values. The first two are O(1) lookups; the entity checks scan the
// context's entity list.
func (r *Rule) Apply(ctx domain.Context) (bool, error) {
	if err := ctx.Validate(); err != nil {
		return false, err
	}

	if r.domains != nil {
		if _, ok := r.domains[ctx.Domain]; !ok {
			return false, nil
		}
	}

	if r.intents != nil {
		if _, ok := r.intents[ctx.Intent]; !ok {
			return false, nil
		}
	}

	if r.entityTypes != nil {
		present := ctx.EntityTypes()
		for required := range r.entityTypes {
			if _, ok := present[required]; !ok {
				return false, nil
			}
		}
	}

	if r.entityValues != nil {
		// Satisfaction is tracked per type key: each required (type, value)
		// pair needs at least one context entity carrying exactly that pair.
		matched := make(map[string]struct{}, len(r.entityValues))
		for _, e := range ctx.Entities {
			want, ok := r.entityValues[e.Type]
			if !ok {
				continue
			}
			if got, ok := e.Value.(string); ok && got == want {
				matched[e.Type] = struct{}{}
			}
		}
		if len(matched) < len(r.entityValues) {
			return false, nil
		}
	}

	return true, nil
}

// Equal reports whether two rules carry the same state name and filters.
func (r *Rule) Equal(other *Rule) bool {
	if other == nil {
		return false
	}
	return r.state == other.state &&
		sameSet(r.domains, other.domains) &&
		sameSet(r.intents, other.intents) &&
		sameSet(r.entityTypes, other.entityTypes) &&
		sameMap(r.entityValues, other.entityValues)
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func sameMap(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// sortRules stable-sorts rules by ascending specificity. Equal-specificity
// rules keep their relative registration order, which makes registration
// order the documented tie-break.
func sortRules(rules []*Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].specificity < rules[j].specificity
	})
}
