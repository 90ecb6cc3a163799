package domain

// ClientAction represents an instruction the host should present to the end user.
type ClientAction struct {
	Name    string `json:"name"`
	Payload any    `json:"payload"`
}

// Standard Action Names
const (
	// ActionShowReply displays a final reply to the user.
	// Payload: Message
	ActionShowReply = "show-reply"

	// ActionShowPrompt displays a prompt asking the user for more input.
	// Payload: Message
	ActionShowPrompt = "show-prompt"
)

// Message is the payload of reply and prompt actions.
type Message struct {
	Text string `json:"text"`
}
