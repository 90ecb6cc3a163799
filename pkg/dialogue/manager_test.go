package dialogue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/dialogue"
	"github.com/aretw0/parley/pkg/domain"
)

func noop(ctx domain.Context, slots domain.Slots, r *dialogue.Responder) {}

// greet is registered without an explicit name in the derivation test.
func greet(ctx domain.Context, slots domain.Slots, r *dialogue.Responder) {
	r.Reply("hello")
}

func weatherCtx(intent string, entities ...domain.Entity) domain.Context {
	return domain.Context{Domain: "weather", Intent: intent, Entities: entities}
}

func TestManager_Register(t *testing.T) {
	t.Run("Conflicting handler for same state fails", func(t *testing.T) {
		m := dialogue.NewManager()
		other := func(ctx domain.Context, slots domain.Slots, r *dialogue.Responder) {}

		require.NoError(t, m.Register("greet", noop, dialogue.RuleSpec{Domain: "smalltalk"}))
		err := m.Register("greet", other, dialogue.RuleSpec{Intent: "greeting"})

		var conflict *domain.HandlerConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "greet", conflict.State)
	})

	t.Run("Identical handler re-registration succeeds silently", func(t *testing.T) {
		m := dialogue.NewManager()
		require.NoError(t, m.Register("greet", noop, dialogue.RuleSpec{Domain: "smalltalk"}))
		require.NoError(t, m.Register("greet", noop, dialogue.RuleSpec{Domain: "smalltalk"}))
	})

	t.Run("Duplicate rules are kept, not deduplicated", func(t *testing.T) {
		m := dialogue.NewManager()
		spec := dialogue.RuleSpec{Domain: "smalltalk"}
		require.NoError(t, m.Register("greet", noop, spec))
		require.NoError(t, m.Register("greet", noop, spec))

		rules := m.Rules()
		require.Len(t, rules, 2)
		assert.True(t, rules[0].Equal(rules[1]))

		// Outcome is unchanged by the duplicate.
		result, err := m.Dispatch(domain.Context{Domain: "smalltalk", Intent: "greeting"})
		require.NoError(t, err)
		assert.Equal(t, "greet", result.DialogueState)
	})

	t.Run("Name derived from handler function", func(t *testing.T) {
		m := dialogue.NewManager()
		require.NoError(t, m.Register("", greet, dialogue.RuleSpec{Domain: "smalltalk"}))

		result, err := m.Dispatch(domain.Context{Domain: "smalltalk", Intent: "greeting"})
		require.NoError(t, err)
		assert.Equal(t, "greet", result.DialogueState)
	})

	t.Run("Anonymous handler with empty name fails", func(t *testing.T) {
		m := dialogue.NewManager()
		err := m.Register("", func(ctx domain.Context, slots domain.Slots, r *dialogue.Responder) {}, dialogue.RuleSpec{})
		require.ErrorIs(t, err, domain.ErrAnonymousHandler)
	})

	t.Run("Invalid spec is rejected before entering the rule set", func(t *testing.T) {
		m := dialogue.NewManager()
		err := m.Register("greet", noop, dialogue.RuleSpec{Domain: "a", Domains: []string{"b"}})
		var specErr *domain.InvalidSpecificationError
		require.ErrorAs(t, err, &specErr)
		assert.Empty(t, m.Rules())
	})
}

func TestManager_Seal(t *testing.T) {
	m := dialogue.NewManager()
	require.NoError(t, m.Register("greet", noop, dialogue.RuleSpec{}))

	m.Seal()
	m.Seal() // idempotent

	err := m.Register("late", noop, dialogue.RuleSpec{})
	require.ErrorIs(t, err, domain.ErrSealed)
	assert.Len(t, m.Rules(), 1)
}

func TestManager_RuleOrdering(t *testing.T) {
	m := dialogue.NewManager()

	// Registered most-specific first; the sort must reorder them ascending.
	require.NoError(t, m.Register("specific", noop, dialogue.RuleSpec{Domain: "weather", Intent: "forecast"}))
	require.NoError(t, m.Register("broad", noop, dialogue.RuleSpec{Domain: "weather"}))
	require.NoError(t, m.Register("catchall", noop, dialogue.RuleSpec{}))

	var states []string
	for _, rule := range m.Rules() {
		states = append(states, rule.State())
	}
	assert.Equal(t, []string{"catchall", "broad", "specific"}, states)
}

func TestManager_StableTieBreak(t *testing.T) {
	m := dialogue.NewManager()

	// Both rules have specificity 1; the first registered must be tried first.
	require.NoError(t, m.Register("first", noop, dialogue.RuleSpec{Domain: "weather"}))
	require.NoError(t, m.Register("second", noop, dialogue.RuleSpec{Domain: "weather"}))

	result, err := m.Dispatch(weatherCtx("forecast"))
	require.NoError(t, err)
	assert.Equal(t, "first", result.DialogueState)
}

func TestManager_BroadRuleShadowsSpecific(t *testing.T) {
	// The scan tries least-specific rules first and stops at the first match,
	// so the domain-only rule wins even though the domain+intent rule also
	// matches. This ordering is deliberate and documented.
	m := dialogue.NewManager()
	require.NoError(t, m.Register("weather_any", noop, dialogue.RuleSpec{Domain: "weather"}))
	require.NoError(t, m.Register("weather_forecast", noop, dialogue.RuleSpec{Domain: "weather", Intent: "forecast"}))

	result, err := m.Dispatch(weatherCtx("forecast"))
	require.NoError(t, err)
	assert.Equal(t, "weather_any", result.DialogueState)
}

func TestManager_Dispatch(t *testing.T) {
	t.Run("Handler receives fresh slots and responder", func(t *testing.T) {
		m := dialogue.NewManager()
		calls := 0
		handler := func(ctx domain.Context, slots domain.Slots, r *dialogue.Responder) {
			calls++
			assert.Empty(t, slots, "slots must start empty on every call")
			slots["city"] = "Paris"
			r.Reply("Forecast for {city}")
		}
		require.NoError(t, m.Register("forecast", handler, dialogue.RuleSpec{Domain: "weather"}))

		for i := 0; i < 2; i++ {
			result, err := m.Dispatch(weatherCtx("forecast"))
			require.NoError(t, err)
			require.Len(t, result.ClientActions, 1)
			assert.Equal(t, domain.ActionShowReply, result.ClientActions[0].Name)
			assert.Equal(t, domain.Message{Text: "Forecast for Paris"}, result.ClientActions[0].Payload)
		}
		assert.Equal(t, 2, calls)
	})

	t.Run("No match falls back to default handler", func(t *testing.T) {
		m := dialogue.NewManager()
		require.NoError(t, m.Register("forecast", noop, dialogue.RuleSpec{Domain: "weather"}))

		result, err := m.Dispatch(domain.Context{Domain: "banking", Intent: "balance"})
		require.NoError(t, err)
		assert.Empty(t, result.DialogueState)
		assert.Empty(t, result.ClientActions)
	})

	t.Run("Default handler override", func(t *testing.T) {
		fallback := func(ctx domain.Context, slots domain.Slots, r *dialogue.Responder) {
			r.Reply("Sorry, I did not understand that.")
		}
		m := dialogue.NewManager(dialogue.WithDefaultHandler(fallback))

		result, err := m.Dispatch(domain.Context{Domain: "banking", Intent: "balance"})
		require.NoError(t, err)
		assert.Empty(t, result.DialogueState)
		require.Len(t, result.ClientActions, 1)
	})

	t.Run("Matching rule without handler is an internal error", func(t *testing.T) {
		m := dialogue.NewManager()
		require.NoError(t, m.Register("orphan", nil, dialogue.RuleSpec{Domain: "weather"}))

		_, err := m.Dispatch(weatherCtx("forecast"))
		require.ErrorIs(t, err, domain.ErrMissingHandler)
	})

	t.Run("Context contract violation propagates", func(t *testing.T) {
		m := dialogue.NewManager()
		require.NoError(t, m.Register("forecast", noop, dialogue.RuleSpec{Domain: "weather"}))

		_, err := m.Dispatch(domain.Context{Domain: "weather"})
		var ctxErr *domain.ContextError
		require.ErrorAs(t, err, &ctxErr)
		assert.Equal(t, "intent", ctxErr.Field)
	})

	t.Run("Entity value scenario end to end", func(t *testing.T) {
		m := dialogue.NewManager()
		require.NoError(t, m.Register("paris", noop, dialogue.RuleSpec{
			Entities: dialogue.EntitiesByValue(map[string]string{"city": "Paris"}),
		}))
		require.NoError(t, m.Register("anywhere", noop, dialogue.RuleSpec{
			Entities: dialogue.EntitiesByType("city"),
		}))

		// The type rule (specificity 4) is tried before the value rule (8).
		result, err := m.Dispatch(weatherCtx("forecast", domain.Entity{Type: "city", Value: "Paris"}))
		require.NoError(t, err)
		assert.Equal(t, "anywhere", result.DialogueState)

		result, err = m.Dispatch(weatherCtx("forecast", domain.Entity{Type: "date", Value: "tomorrow"}))
		require.NoError(t, err)
		assert.Empty(t, result.DialogueState)
	})
}

type captureObserver struct {
	states   []string
	outcomes []dialogue.Outcome
}

func (o *captureObserver) ObserveDispatch(state string, outcome dialogue.Outcome, _ time.Duration) {
	o.states = append(o.states, state)
	o.outcomes = append(o.outcomes, outcome)
}

func TestManager_Observer(t *testing.T) {
	obs := &captureObserver{}
	m := dialogue.NewManager(dialogue.WithObserver(obs))
	require.NoError(t, m.Register("forecast", noop, dialogue.RuleSpec{Domain: "weather"}))

	_, err := m.Dispatch(weatherCtx("forecast"))
	require.NoError(t, err)
	_, err = m.Dispatch(domain.Context{Domain: "banking", Intent: "balance"})
	require.NoError(t, err)

	require.Len(t, obs.outcomes, 2)
	assert.Equal(t, dialogue.OutcomeMatched, obs.outcomes[0])
	assert.Equal(t, "forecast", obs.states[0])
	assert.Equal(t, dialogue.OutcomeFallback, obs.outcomes[1])
	assert.Empty(t, obs.states[1])
}
