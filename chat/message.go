package chat

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem carries the behavioral instruction for the model.
	RoleSystem Role = "system"
	// RoleUser is the human side of the conversation.
	RoleUser Role = "user"
	// RoleAssistant is the model side of the conversation.
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// State carries one conversation invocation through the pipeline stages.
// It is created per invocation and never shared between goroutines.
type State struct {
	Messages      []Message
	TenantID      string
	MemoryContext string
}

// lastUserQuery returns the content of the most recent user message,
// or "" when there is none.
func (s *State) lastUserQuery() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}
