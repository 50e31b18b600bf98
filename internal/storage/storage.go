package storage

import (
	"context"
	"io"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for archiving exported plan documents
// in object storage.
type FileStorage interface {
	// PutObject uploads an exported document body under the given key.
	PutObject(ctx context.Context, objectKey string, contentType string, body io.Reader) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for downloading an archived export directly from the
	// storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an archived export from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
