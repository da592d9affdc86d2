package conversation

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Conversation represents the conversations table. A direct conversation has
// exactly two participants and no group metadata; a group carries a subject,
// avatar, creator and admin roles on its participants.
type Conversation struct {
	ID            uuid.UUID
	IsGroup       bool
	Subject       sql.NullString
	AvatarURL     sql.NullString
	CreatedBy     uuid.NullUUID
	LastMessageID uuid.NullUUID
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Relationships
	Participants []Participant
}

// Participant represents the participants table
type Participant struct {
	ConversationID uuid.UUID `gorm:"primaryKey"`
	UserID         uuid.UUID `gorm:"primaryKey"`
	Role           string    // MEMBER or ADMIN
	JoinedAt       time.Time
}

const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

func (Conversation) TableName() string {
	return "conversations"
}

func (Participant) TableName() string {
	return "participants"
}

// HasParticipant reports whether the loaded participant set contains userID.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the user ids of the loaded participant set.
func (c *Conversation) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}
