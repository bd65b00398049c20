package pipeline

import (
	"errors"
	"fmt"

	"github.com/BerylCAtieno/docvault-api/internal/media"
)

// Validation errors. Nothing has been written when one of these is returned.
var (
	ErrEmptyUpload      = errors.New("uploaded file is empty")
	ErrInvalidOwner     = errors.New("invalid owner id")
	ErrUnsupportedMedia = fmt.Errorf("only JPEG, PNG and PDF files are allowed: %w", media.ErrUnsupported)
)

// StorageWriteError means the upload never reached blob storage.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to store %s: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// PersistenceError means the blob was stored but its Document row was not.
// StorageKey names the orphaned object.
type PersistenceError struct {
	StorageKey string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist document for %s: %v", e.StorageKey, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is one of the upload validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyUpload) || errors.Is(err, ErrInvalidOwner) || errors.Is(err, ErrUnsupportedMedia)
}
