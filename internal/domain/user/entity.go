package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User represents the users table. Authentication flows live outside this
// service; the sync engine only needs identity and display data.
type User struct {
	ID           uuid.UUID
	Username     string
	DisplayName  string
	Email        string
	PasswordHash string
	AvatarURL    sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}
