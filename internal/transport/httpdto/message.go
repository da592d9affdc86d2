package httpdto

import "time"

// MessageDTO represents a message in API responses
type MessageDTO struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Body           string     `json:"body"`
	AttachmentURL  string     `json:"attachment_url,omitempty"`
	AttachmentKind string     `json:"attachment_kind,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
}

// MessagesResponse is returned when listing conversation history
type MessagesResponse struct {
	Messages []MessageDTO `json:"messages"`
}

// SendMessageRequest is used for POST /conversations/:id/messages
type SendMessageRequest struct {
	Body           string `json:"body"`
	AttachmentURL  string `json:"attachment_url,omitempty"`
	AttachmentKind string `json:"attachment_kind,omitempty"`
}
