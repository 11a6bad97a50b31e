package agent

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation the model sees. Order of
// appearance is the only integrity guarantee; there are no message IDs.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
