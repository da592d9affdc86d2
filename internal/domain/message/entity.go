package message

import (
	"database/sql"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Attachment kinds, derived from the file extension at upload time.
const (
	KindImage    = "image"
	KindVideo    = "video"
	KindDocument = "document"
	KindOther    = "other"
)

// Message represents the messages table. An attachment message carries an
// empty body; a text message has no attachment.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Body           string
	AttachmentURL  sql.NullString
	AttachmentKind sql.NullString
	CreatedAt      time.Time
	EditedAt       sql.NullTime

	// Relationships
	Reads []MessageRead
}

// MessageRead represents the message_reads table: one row per (message, reader).
// The sender never appears here.
type MessageRead struct {
	MessageID uuid.UUID `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"primaryKey"`
	ReadAt    time.Time
}

func (Message) TableName() string {
	return "messages"
}

func (MessageRead) TableName() string {
	return "message_reads"
}

// HasAttachment reports whether the message carries an attachment reference.
func (m *Message) HasAttachment() bool {
	return m.AttachmentURL.Valid && m.AttachmentURL.String != ""
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".bmp": true, ".svg": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true, ".m4v": true,
}

var documentExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".txt": true, ".csv": true, ".zip": true,
}

// KindFromFilename derives the attachment kind from a file name or URL.
func KindFromFilename(name string) string {
	ext := strings.ToLower(path.Ext(name))
	switch {
	case imageExts[ext]:
		return KindImage
	case videoExts[ext]:
		return KindVideo
	case documentExts[ext]:
		return KindDocument
	default:
		return KindOther
	}
}

// Preview is the denormalized last-message summary broadcast to sidebars.
type Preview struct {
	Text      string    `json:"text"`
	SenderID  uuid.UUID `json:"sender_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PreviewOf derives the sidebar preview for a message. Attachment messages
// render a kind-specific label instead of the (empty) body.
func PreviewOf(m Message) Preview {
	text := m.Body
	if m.HasAttachment() {
		switch m.AttachmentKind.String {
		case KindImage:
			text = "📷 Image"
		case KindVideo:
			text = "🎥 Video"
		default:
			text = "📎 File"
		}
	}
	return Preview{
		Text:      text,
		SenderID:  m.SenderID,
		Timestamp: m.CreatedAt,
	}
}
