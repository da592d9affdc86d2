package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"chatsync/internal/domain/conversation"
	"chatsync/internal/domain/message"
	"chatsync/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	Password      string
	TestUserCount int
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		Password:      "Password@123",
		TestUserCount: 4,
	}
}

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	Users         []*user.User
	Conversations []*conversation.Conversation
	Messages      []*message.Message
}

// Seed populates demo users, a direct conversation, a group, and a few
// messages with read state. Safe to run only against empty databases.
func Seed(db *gorm.DB, cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}

	log.Println("Starting database seeding...")

	users, err := seedUsers(db, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}

	result := &SeedResult{Users: users}
	if len(users) < 2 {
		return result, nil
	}

	convs, err := seedConversations(db, users)
	if err != nil {
		return nil, fmt.Errorf("failed to seed conversations: %w", err)
	}
	result.Conversations = convs

	msgs, err := seedMessages(db, convs, users)
	if err != nil {
		return nil, fmt.Errorf("failed to seed messages: %w", err)
	}
	result.Messages = msgs

	log.Println("Database seeding completed successfully!")
	return result, nil
}

func seedUsers(db *gorm.DB, cfg *SeedConfig) ([]*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var users []*user.User
	for i := 0; i < cfg.TestUserCount; i++ {
		u := &user.User{
			ID:           uuid.New(),
			Username:     fmt.Sprintf("testuser%d", i+1),
			DisplayName:  fmt.Sprintf("Test User %d", i+1),
			Email:        fmt.Sprintf("testuser%d@example.com", i+1),
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := db.Create(u).Error; err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func seedConversations(db *gorm.DB, users []*user.User) ([]*conversation.Conversation, error) {
	now := time.Now()

	direct := &conversation.Conversation{
		ID:        uuid.New(),
		IsGroup:   false,
		CreatedBy: uuid.NullUUID{UUID: users[0].ID, Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
		Participants: []conversation.Participant{
			{UserID: users[0].ID, Role: conversation.RoleMember, JoinedAt: now},
			{UserID: users[1].ID, Role: conversation.RoleMember, JoinedAt: now},
		},
	}

	group := &conversation.Conversation{
		ID:        uuid.New(),
		IsGroup:   true,
		Subject:   sql.NullString{String: "Weekend Plans", Valid: true},
		CreatedBy: uuid.NullUUID{UUID: users[0].ID, Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, u := range users {
		role := conversation.RoleMember
		if i == 0 {
			role = conversation.RoleAdmin
		}
		group.Participants = append(group.Participants, conversation.Participant{
			UserID:   u.ID,
			Role:     role,
			JoinedAt: now,
		})
	}

	convs := []*conversation.Conversation{direct, group}
	for _, conv := range convs {
		for i := range conv.Participants {
			conv.Participants[i].ConversationID = conv.ID
		}
		if err := db.Create(conv).Error; err != nil {
			return nil, err
		}
	}
	return convs, nil
}

func seedMessages(db *gorm.DB, convs []*conversation.Conversation, users []*user.User) ([]*message.Message, error) {
	bodies := []string{
		"Hey, how's it going?",
		"Pretty good! You?",
		"Can't complain. Lunch tomorrow?",
	}

	var messages []*message.Message
	for _, conv := range convs {
		var last *message.Message
		for i, body := range bodies {
			sender := users[i%2]
			msg := &message.Message{
				ID:             uuid.New(),
				ConversationID: conv.ID,
				SenderID:       sender.ID,
				Body:           body,
				CreatedAt:      time.Now().Add(time.Duration(i) * time.Second),
			}
			if err := db.Create(msg).Error; err != nil {
				return nil, err
			}
			messages = append(messages, msg)
			last = msg

			// The other seeded user has read everything except the final message.
			if i < len(bodies)-1 {
				read := &message.MessageRead{
					MessageID: msg.ID,
					UserID:    users[(i+1)%2].ID,
					ReadAt:    msg.CreatedAt.Add(time.Second),
				}
				if err := db.Create(read).Error; err != nil {
					return nil, err
				}
			}
		}

		if last != nil {
			err := db.Model(&conversation.Conversation{}).
				Where("id = ?", conv.ID).
				Updates(map[string]interface{}{
					"last_message_id": last.ID,
					"updated_at":      last.CreatedAt,
				}).Error
			if err != nil {
				return nil, err
			}
		}
	}
	return messages, nil
}
