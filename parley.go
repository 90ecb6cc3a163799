package parley

import (
	"github.com/aretw0/parley/pkg/dialogue"
	"github.com/aretw0/parley/pkg/domain"
)

// Version is the library version, reported by the CLI.
const Version = "0.1.0"

// Convenience aliases so simple hosts only need the root package.
type (
	// Context is the incoming request descriptor.
	Context = domain.Context
	// Entity is a recognized entity inside a context.
	Entity = domain.Entity
	// Slots holds values for template substitution in replies.
	Slots = domain.Slots
	// ClientAction is a structured output instruction for the host.
	ClientAction = domain.ClientAction

	// Manager dispatches contexts to the best-matching handler.
	Manager = dialogue.Manager
	// Rule is an immutable match predicate with a specificity score.
	Rule = dialogue.Rule
	// RuleSpec describes a rule's filters at registration time.
	RuleSpec = dialogue.RuleSpec
	// HandlerFunc is the dialogue state callback contract.
	HandlerFunc = dialogue.HandlerFunc
	// Responder accumulates a handler's client actions.
	Responder = dialogue.Responder
	// Result is the product of one dispatch call.
	Result = dialogue.Result
	// Option configures a Manager.
	Option = dialogue.Option
)

// Re-exported entity spec constructors.
var (
	EntitiesByType  = dialogue.EntitiesByType
	EntitiesByValue = dialogue.EntitiesByValue
)

// Re-exported manager options.
var (
	WithLogger         = dialogue.WithLogger
	WithDefaultHandler = dialogue.WithDefaultHandler
	WithChooser        = dialogue.WithChooser
	WithObserver       = dialogue.WithObserver
)

// New creates an empty dialogue manager. Register rules during startup, then
// call Seal before serving dispatch calls.
func New(opts ...Option) *Manager {
	return dialogue.NewManager(opts...)
}
