// Package types defines core data structures shared by the bot-builder core.
// The wire-facing fields follow OpenAI's Chat Completion vocabulary so the
// default provider path is a passthrough.
package types //nolint:revive // package name is intentional

// Role identifies the author of a conversation message.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents a single message in a conversation.
// Tokens is zero until the turn has been accounted against a provider
// response that reports usage.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Tokens  int    `json:"tokens,omitempty"`
}

// Usage contains token usage statistics reported by a provider.
// Providers that do not report counts leave this nil on the result.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// ChatResult is the normalized outcome of a single chat turn.
// All provider responses are transformed into this shape.
type ChatResult struct {
	Message Message `json:"message"`
	Usage   *Usage  `json:"usage,omitempty"`
}

// TotalTokens sums the accounted tokens across a message sequence.
func TotalTokens(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += m.Tokens
	}
	return total
}
