package chat

import "time"

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one exchange unit in a transcript. Assistant turns grow while a
// stream is in flight and freeze once the done sentinel arrives.
type Turn struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	Complete    bool      `json:"complete"`
	IsSentiment bool      `json:"isSentiment,omitempty"`
}
