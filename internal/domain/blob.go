package domain

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes a stored object.
type BlobInfo struct {
	Path         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// BlobReader retrieves data from object storage.
type BlobReader interface {
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// SnapshotArchiver writes daily odds windows and generated picks to cold
// storage as JSON documents.
type SnapshotArchiver interface {
	ArchiveOddsSnapshot(ctx context.Context, snap OddsSnapshot) (string, error)
	ArchivePicks(ctx context.Context, date string, picks []Pick) (string, error)
}
