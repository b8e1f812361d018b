package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned report download URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ReportArchive defines the interface for the weekly report object store.
type ReportArchive interface {
	// PutReport uploads one serialized weekly report under the given key.
	PutReport(ctx context.Context, objectKey string, contentType string, body []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for downloading a report directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteReport removes an archived report.
	DeleteReport(ctx context.Context, objectKey string) error
}
