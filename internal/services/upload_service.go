package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"chatsync/internal/domain/message"
	"chatsync/internal/storage"
	chatsync_errors "chatsync/pkg/errors"

	"github.com/google/uuid"
)

const maxUploadBytes = 100 << 20 // 100 MiB

// UploadService hands out presigned S3 PUT URLs for attachments. The client
// uploads directly to the bucket and then sends the returned file URL with its
// message; the server never proxies attachment bytes.
type UploadService struct {
	store *storage.Client
}

func NewUploadService(store *storage.Client) *UploadService {
	return &UploadService{store: store}
}

type PresignInput struct {
	UserID      uuid.UUID
	Filename    string
	ContentType string
	SizeBytes   int64
}

type PresignResult struct {
	UploadURL string            `json:"upload_url"`
	Headers   map[string]string `json:"headers"`
	Key       string            `json:"key"`
	FileURL   string            `json:"file_url"`
	Kind      string            `json:"kind"`
}

func (s *UploadService) Presign(ctx context.Context, in PresignInput) (PresignResult, error) {
	if s.store == nil {
		return PresignResult{}, chatsync_errors.ErrServiceUnavailable
	}
	name := sanitizeFilename(in.Filename)
	if name == "" {
		return PresignResult{}, chatsync_errors.ErrInvalidInput
	}
	if err := s.store.ValidateContentType(in.ContentType); err != nil {
		return PresignResult{}, chatsync_errors.ErrInvalidInput
	}
	if in.SizeBytes <= 0 || in.SizeBytes > maxUploadBytes {
		return PresignResult{}, chatsync_errors.ErrInvalidInput
	}

	key := fmt.Sprintf("uploads/%s/%s-%s", in.UserID, uuid.New(), name)
	uploadURL, headers, err := s.store.PresignPut(ctx, key, in.ContentType, in.SizeBytes)
	if err != nil {
		return PresignResult{}, err
	}

	return PresignResult{
		UploadURL: uploadURL,
		Headers:   headers,
		Key:       key,
		FileURL:   s.store.FileURL(key),
		Kind:      message.KindFromFilename(name),
	}, nil
}

func sanitizeFilename(filename string) string {
	name := path.Base(strings.TrimSpace(filename))
	if name == "." || name == "/" {
		return ""
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return name
}
