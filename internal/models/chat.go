package models

import "time"

// ChatRole is the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a user's assistant conversation.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatUserProfile is the optional profile snippet the client sends along.
type ChatUserProfile struct {
	Bio          string `json:"bio,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// ChatRequest is the body of the chat endpoints.
type ChatRequest struct {
	Message     string           `json:"message"`
	UserID      string           `json:"userId,omitempty"`
	UserName    string           `json:"userName,omitempty"`
	UserEmail   string           `json:"userEmail,omitempty"`
	UserProfile *ChatUserProfile `json:"userProfile,omitempty"`
}
