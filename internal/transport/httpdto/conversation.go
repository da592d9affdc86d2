package httpdto

import "time"

// CreateGroupRequest is used for POST /conversations/groups
type CreateGroupRequest struct {
	Subject        string   `json:"subject" binding:"required"`
	AvatarURL      string   `json:"avatar_url,omitempty"`
	ParticipantIDs []string `json:"participant_ids" binding:"required"`
}

// CreateDirectRequest is used for POST /conversations/direct
type CreateDirectRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// ConversationDTO represents a conversation in API responses
type ConversationDTO struct {
	ID           string    `json:"id"`
	IsGroup      bool      `json:"is_group"`
	Subject      string    `json:"subject,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty"`
	Participants []string  `json:"participants"`
	Admins       []string  `json:"admins,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConversationsResponse is returned when listing conversations
type ConversationsResponse struct {
	Conversations []ConversationDTO `json:"conversations"`
}
