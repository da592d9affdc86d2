package message

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKindFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.jpg", KindImage},
		{"photo.JPEG", KindImage},
		{"https://cdn.example.com/bucket/clip.mp4", KindVideo},
		{"report.pdf", KindDocument},
		{"archive.zip", KindDocument},
		{"binary.bin", KindOther},
		{"no-extension", KindOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindFromFilename(tt.name), tt.name)
	}
}

func TestPreviewOfTextMessage(t *testing.T) {
	sender := uuid.New()
	created := time.Now()
	m := Message{
		ID:        uuid.New(),
		SenderID:  sender,
		Body:      "see you at 8",
		CreatedAt: created,
	}

	p := PreviewOf(m)
	assert.Equal(t, "see you at 8", p.Text)
	assert.Equal(t, sender, p.SenderID)
	assert.Equal(t, created, p.Timestamp)
}

func TestPreviewOfAttachmentLabels(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{KindImage, "📷 Image"},
		{KindVideo, "🎥 Video"},
		{KindDocument, "📎 File"},
		{KindOther, "📎 File"},
	}
	for _, tt := range tests {
		m := Message{
			AttachmentURL:  sql.NullString{String: "https://cdn.example.com/file", Valid: true},
			AttachmentKind: sql.NullString{String: tt.kind, Valid: true},
		}
		assert.Equal(t, tt.want, PreviewOf(m).Text, tt.kind)
	}
}
