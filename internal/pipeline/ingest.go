package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BerylCAtieno/docvault-api/internal/media"
	"github.com/BerylCAtieno/docvault-api/internal/models"
)

// BlobWriter stores raw uploads.
type BlobWriter interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Ingested describes an upload that is safely in blob storage.
type Ingested struct {
	Key   string
	Media media.Info
}

// Ingest validates the upload and writes it under a fresh owner-namespaced key.
func Ingest(ctx context.Context, blobs BlobWriter, req models.UploadRequest, now time.Time) (*Ingested, error) {
	if len(req.Data) == 0 {
		return nil, ErrEmptyUpload
	}
	if err := validateOwner(req.OwnerID); err != nil {
		return nil, err
	}

	info, err := media.Detect(req.Data, req.MIMEType)
	if err != nil {
		return nil, ErrUnsupportedMedia
	}

	key := NewKey(req.OwnerID, now, info.Extension)
	if err := blobs.Put(ctx, key, req.Data, info.MIMEType); err != nil {
		return nil, &StorageWriteError{Key: key, Err: err}
	}

	return &Ingested{Key: key, Media: info}, nil
}

// NewKey returns {owner}/{unixMillis}-{8 hex}.{ext}.
func NewKey(ownerID string, now time.Time, ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%d-%s.%s", ownerID, now.UnixMilli(), suffix, ext)
}

func validateOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" || strings.ContainsAny(ownerID, `/\`) {
		return ErrInvalidOwner
	}
	return nil
}
