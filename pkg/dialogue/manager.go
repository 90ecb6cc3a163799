package dialogue

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/parley/pkg/domain"
)

// HandlerFunc is the business-logic callback bound to a dialogue state.
// It is invoked synchronously with the matched context, a fresh mutable slots
// map, and a fresh responder to accumulate client actions on.
type HandlerFunc func(ctx domain.Context, slots domain.Slots, r *Responder)

// Observer receives the outcome of every dispatch call. Optional.
type Observer interface {
	ObserveDispatch(state string, outcome Outcome, elapsed time.Duration)
}

// Outcome classifies how a dispatch call resolved.
type Outcome string

const (
	OutcomeMatched  Outcome = "matched"
	OutcomeFallback Outcome = "fallback"
	OutcomeError    Outcome = "error"
)

// Result is the product of one dispatch call.
type Result struct {
	// DialogueState is the state name of the matching rule, or empty when no
	// rule matched and the default handler ran.
	DialogueState string `json:"dialogue_state"`

	// ClientActions holds the actions the handler accumulated, in call order.
	ClientActions []domain.ClientAction `json:"client_actions"`
}

// Manager holds the registered rules and their handlers, and dispatches
// incoming contexts to the best-matching handler.
//
// The intended lifecycle is: register all rules during startup, call Seal,
// then serve Dispatch calls. The internals are additionally guarded by a
// read-write mutex so a host that skips the seal discipline is still safe.
type Manager struct {
	mu             sync.RWMutex
	rules          []*Rule
	handlers       map[string]HandlerFunc
	sealed         bool
	defaultHandler HandlerFunc
	chooser        Chooser
	observer       Observer
	logger         *slog.Logger
}

// NewManager creates an empty dialogue manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		handlers: make(map[string]HandlerFunc),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register constructs a rule from the spec, inserts it into the rule set
// (kept stable-sorted by ascending specificity) and binds the handler to the
// state name.
//
// If name is empty it is derived from the handler's function name. Rules are
// never deduplicated: registering the same rule twice appends a second copy,
// which leaves match outcomes unchanged. Re-binding a state name to a
// different handler is a HandlerConflictError; re-binding the identical
// handler is a no-op overwrite.
func (m *Manager) Register(name string, handler HandlerFunc, spec RuleSpec) error {
	if name == "" {
		derived, err := handlerName(handler)
		if err != nil {
			return err
		}
		name = derived
	}

	rule, err := NewRule(name, spec)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sealed {
		return domain.ErrSealed
	}

	if handler != nil {
		if old, ok := m.handlers[name]; ok && !sameFunc(old, handler) {
			return &domain.HandlerConflictError{State: name}
		}
		m.handlers[name] = handler
	}

	m.rules = append(m.rules, rule)
	sortRules(m.rules)

	m.logger.Debug("registered dialogue rule", "state", name, "specificity", rule.Specificity())
	return nil
}

// Seal closes the registration phase. Subsequent Register calls fail with
// ErrSealed. Sealing is idempotent.
func (m *Manager) Seal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sealed = true
}

// Rules returns a snapshot of the rule set in evaluation order.
func (m *Manager) Rules() []*Rule {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// Dispatch evaluates the rules against the context in ascending-specificity
// order and invokes the handler of the first match.
//
// The scan tries the least-specific rules first and stops at the first match,
// so a broad rule can shadow a narrower one that would also match. This
// mirrors the documented selection policy; callers who want a specific rule
// to win must not register a broader rule that also covers its contexts.
//
// When no rule matches, the default handler runs and the returned state name
// is empty. The handler is invoked in-line with a fresh empty slots map and a
// fresh responder; errors from the context contract are returned as typed
// errors rather than treated as a non-match.
func (m *Manager) Dispatch(ctx domain.Context) (*Result, error) {
	start := time.Now()

	m.mu.RLock()
	rules := m.rules
	var state string
	var matchErr error
	for _, rule := range rules {
		ok, err := rule.Apply(ctx)
		if err != nil {
			matchErr = err
			break
		}
		if ok {
			state = rule.State()
			break
		}
	}
	handler := m.defaultHandler
	var missing bool
	if matchErr == nil && state != "" {
		h, ok := m.handlers[state]
		if !ok {
			missing = true
		}
		handler = h
	}
	chooser := m.chooser
	observer := m.observer
	m.mu.RUnlock()

	if matchErr != nil {
		m.observe(observer, "", OutcomeError, start)
		return nil, matchErr
	}
	if missing {
		m.observe(observer, state, OutcomeError, start)
		return nil, fmt.Errorf("dialogue state %q: %w", state, domain.ErrMissingHandler)
	}

	slots := domain.Slots{}
	responder := NewResponder(slots, chooser)

	if handler != nil {
		handler(ctx, slots, responder)
	}

	outcome := OutcomeMatched
	if state == "" {
		outcome = OutcomeFallback
	}
	m.observe(observer, state, outcome, start)
	m.logger.Debug("dispatched context",
		"domain", ctx.Domain,
		"intent", ctx.Intent,
		"state", state,
		"actions", len(responder.Actions()),
	)

	return &Result{DialogueState: state, ClientActions: responder.Actions()}, nil
}

func (m *Manager) observe(obs Observer, state string, outcome Outcome, start time.Time) {
	if obs != nil {
		obs.ObserveDispatch(state, outcome, time.Since(start))
	}
}

// sameFunc compares two handlers by code pointer. Two references to the same
// top-level function (or the same closure instance) compare equal.
func sameFunc(a, b HandlerFunc) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// handlerName derives a state name from the handler's function name, e.g.
// "github.com/acme/app.greet" becomes "greet". Anonymous functions have no
// usable name and are rejected.
func handlerName(handler HandlerFunc) (string, error) {
	if handler == nil {
		return "", domain.ErrAnonymousHandler
	}
	fn := runtime.FuncForPC(reflect.ValueOf(handler).Pointer())
	if fn == nil {
		return "", domain.ErrAnonymousHandler
	}
	full := fn.Name()
	name := full[strings.LastIndex(full, ".")+1:]
	if name == "" || isClosureName(name) {
		return "", domain.ErrAnonymousHandler
	}
	return name, nil
}

// isClosureName reports whether name looks like a compiler-generated closure
// suffix ("func1", or a bare index like "2" for nested closures).
func isClosureName(name string) bool {
	rest, ok := strings.CutPrefix(name, "func")
	if !ok {
		rest = name
	}
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
