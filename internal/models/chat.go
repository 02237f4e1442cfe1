package models

// Role identifies the author of a chat message.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is one entry of an adaptation chat transcript.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// AdaptRequest is the body POSTed to the adaptation endpoint.
type AdaptRequest struct {
	CurrentPlan *Program `json:"current_plan"`
	UserRequest string   `json:"user_request"`
}

// AdaptResponse is the adaptation endpoint's reply: either a replacement
// plan or a clarifying message.
type AdaptResponse struct {
	UpdatedPlan *Program `json:"updated_plan,omitempty"`
	Message     string   `json:"message,omitempty"`
}
