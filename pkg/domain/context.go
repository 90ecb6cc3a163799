package domain

import "strconv"

// Entity is a single recognized entity inside a request context.
type Entity struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Context is the request descriptor produced by the upstream classifier.
// It is consumed read-only by rule matching; the dispatcher never mutates it.
type Context struct {
	Domain   string   `json:"domain"`
	Intent   string   `json:"intent"`
	Entities []Entity `json:"entities"`
}

// Validate checks the producer contract: domain and intent must be populated.
// A violation is surfaced as a typed error so upstream bugs don't silently
// look like "no rule matched".
func (c Context) Validate() error {
	if c.Domain == "" {
		return &ContextError{Field: "domain"}
	}
	if c.Intent == "" {
		return &ContextError{Field: "intent"}
	}
	for i, e := range c.Entities {
		if e.Type == "" {
			return &ContextError{Field: "entities", Reason: "entity at index " + strconv.Itoa(i) + " has no type"}
		}
	}
	return nil
}

// EntityTypes returns the set of distinct entity types present in the context.
func (c Context) EntityTypes() map[string]struct{} {
	types := make(map[string]struct{}, len(c.Entities))
	for _, e := range c.Entities {
		types[e.Type] = struct{}{}
	}
	return types
}

// Slots holds named values for template substitution in replies and prompts.
// A fresh empty map is created for every dispatch call.
type Slots map[string]any
