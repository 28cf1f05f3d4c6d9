// internal/adapter/objectstore/gcs.go

package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"

	"mempin/internal/domain/pin"
)

// Buckets names the logical bucket per media kind.
type Buckets struct {
	Images string
	Videos string
	Audio  string
}

// Store uploads media files to Google Cloud Storage, one bucket per media
// kind, and returns public URLs for the created objects.
type Store struct {
	client  *storage.Client
	buckets Buckets
}

// NewStore wraps an existing GCS client.
func NewStore(client *storage.Client, buckets Buckets) *Store {
	return &Store{
		client:  client,
		buckets: buckets,
	}
}

// Upload streams a local file into the bucket for its kind under the given
// destination path. Re-uploading the same destination overwrites, which is
// what makes a retried run idempotent.
func (s *Store) Upload(ctx context.Context, localURI, destination string, kind pin.MediaKind) (string, error) {
	bucket := s.bucketFor(kind)
	if bucket == "" {
		return "", fmt.Errorf("no bucket configured for media kind %q", kind)
	}

	f, err := os.Open(localURI)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localURI, err)
	}
	defer f.Close()

	writer := s.client.Bucket(bucket).Object(destination).NewWriter(ctx)
	if _, err := io.Copy(writer, f); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("write object %s: %w", destination, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", destination, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, destination), nil
}

func (s *Store) bucketFor(kind pin.MediaKind) string {
	switch kind {
	case pin.KindVideo:
		return s.buckets.Videos
	case pin.KindAudio:
		return s.buckets.Audio
	default:
		return s.buckets.Images
	}
}
