package dialogue

import (
	"fmt"
	"math/rand"
	"regexp"

	"github.com/aretw0/parley/pkg/domain"
)

// Chooser picks an index in [0, n) when a reply or prompt offers multiple
// phrasings. The default is uniform random selection; tests inject a
// deterministic one.
type Chooser func(n int) int

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Responder accumulates the client actions a handler emits during one
// dispatch call. It is created fresh per call, consumed once, and discarded;
// it is never shared across calls.
type Responder struct {
	slots   domain.Slots
	actions []domain.ClientAction
	choose  Chooser
}

// NewResponder creates a responder bound to the given slots map.
// A nil chooser falls back to uniform random selection.
func NewResponder(slots domain.Slots, choose Chooser) *Responder {
	if choose == nil {
		choose = rand.Intn
	}
	return &Responder{slots: slots, choose: choose}
}

// Reply appends a show-reply action. When several phrasings are given, one is
// picked at random for variety. {key} placeholders are substituted from the
// slots map; unknown keys are left untouched. Calling Reply with no phrasings
// is a no-op.
func (r *Responder) Reply(text ...string) {
	r.say(domain.ActionShowReply, text)
}

// Prompt appends a show-prompt action. Phrasing selection and slot
// substitution behave exactly like Reply.
func (r *Responder) Prompt(text ...string) {
	r.say(domain.ActionShowPrompt, text)
}

// Respond appends an arbitrary caller-supplied action verbatim. This is the
// escape hatch beneath Reply and Prompt.
func (r *Responder) Respond(action domain.ClientAction) {
	r.actions = append(r.actions, action)
}

// Show is reserved for a richer item-display action that this core does not
// define. It always fails with ErrUnsupportedAction.
func (r *Responder) Show(items any) error {
	return fmt.Errorf("show: %w", domain.ErrUnsupportedAction)
}

// Actions returns the accumulated client actions in call order.
func (r *Responder) Actions() []domain.ClientAction {
	return r.actions
}

func (r *Responder) say(name string, variants []string) {
	if len(variants) == 0 {
		return
	}
	text := variants[0]
	if len(variants) > 1 {
		text = variants[r.choose(len(variants))]
	}
	r.Respond(domain.ClientAction{
		Name:    name,
		Payload: domain.Message{Text: r.expand(text)},
	})
}

// expand substitutes {key} placeholders from the slots map.
func (r *Responder) expand(text string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := match[1 : len(match)-1]
		if value, ok := r.slots[key]; ok {
			return fmt.Sprint(value)
		}
		return match
	})
}
