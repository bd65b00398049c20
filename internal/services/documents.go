package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/docvault-api/internal/models"
	"github.com/BerylCAtieno/docvault-api/internal/pipeline"
	"github.com/BerylCAtieno/docvault-api/internal/repository"
	"github.com/BerylCAtieno/docvault-api/internal/sanitizer"
	"github.com/BerylCAtieno/docvault-api/internal/storage"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

// ReminderWindow is how far ahead DueReminders looks.
const ReminderWindow = 90 * 24 * time.Hour

const (
	CodeStorageWriteFailed = "storage_write_failed"
	CodePersistenceFailed  = "persistence_failed"
)

type DocumentService interface {
	Upload(ctx context.Context, req models.UploadRequest) (*models.Document, error)
	List(ctx context.Context, ownerID string, filter models.DocumentFilter) ([]*models.Document, error)
	Get(ctx context.Context, ownerID, id string) (*models.Document, error)
	Update(ctx context.Context, ownerID, id string, patch models.DocumentPatch) (*models.Document, error)
	Delete(ctx context.Context, ownerID, id string) (*models.DeleteResponse, error)
	SignedURL(ctx context.Context, ownerID, id string) (*models.SignedURLResponse, error)
	DueReminders(ctx context.Context, ownerID string) ([]*models.Document, error)
}

// Ingester runs the upload pipeline.
type Ingester interface {
	IngestAndExtract(ctx context.Context, req models.UploadRequest) (*models.Document, error)
}

type documentService struct {
	repo       repository.Repository
	categories repository.CategoryRepository
	storage    storage.Storage
	ingester   Ingester
	urlTTL     time.Duration
	now        func() time.Time
	logger     *utils.Logger
}

func NewDocumentService(
	repo repository.Repository,
	categories repository.CategoryRepository,
	blobs storage.Storage,
	ingester Ingester,
	urlTTL time.Duration,
	logger *utils.Logger,
) DocumentService {
	return &documentService{
		repo:       repo,
		categories: categories,
		storage:    blobs,
		ingester:   ingester,
		urlTTL:     urlTTL,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *documentService) Upload(ctx context.Context, req models.UploadRequest) (*models.Document, error) {
	doc, err := s.ingester.IngestAndExtract(ctx, req)
	if err != nil {
		return nil, s.uploadError(err, req)
	}

	return doc, nil
}

func (s *documentService) uploadError(err error, req models.UploadRequest) error {
	var (
		storageErr *pipeline.StorageWriteError
		persistErr *pipeline.PersistenceError
	)

	switch {
	case pipeline.IsValidation(err):
		s.logger.Warn("Upload rejected", "owner_id", req.OwnerID, "filename", req.Filename, "error", err)
		return &utils.AppError{StatusCode: http.StatusBadRequest, Code: "bad_request", Message: validationMessage(err), Err: err}
	case errors.As(err, &storageErr):
		s.logger.Error("Failed to store upload", "owner_id", req.OwnerID, "storage_key", storageErr.Key, "error", err)
		return &utils.AppError{StatusCode: http.StatusBadGateway, Code: CodeStorageWriteFailed, Message: "Failed to store document", Err: err}
	case errors.As(err, &persistErr):
		return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: CodePersistenceFailed, Message: "Failed to save document metadata", Err: err}
	default:
		s.logger.Error("Upload failed", "owner_id", req.OwnerID, "error", err)
		return utils.NewInternalError("Failed to process document")
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrEmptyUpload):
		return "Uploaded file is empty"
	case errors.Is(err, pipeline.ErrInvalidOwner):
		return "Invalid user id"
	default:
		return "Only JPEG, PNG and PDF files are allowed"
	}
}

func (s *documentService) List(ctx context.Context, ownerID string, filter models.DocumentFilter) ([]*models.Document, error) {
	for _, d := range []string{filter.From, filter.To} {
		if d != "" && !sanitizer.ValidDate(d) {
			return nil, utils.NewBadRequestError("Dates must use YYYY-MM-DD")
		}
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, utils.NewBadRequestError("limit and offset must not be negative")
	}

	docs, err := s.repo.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		s.logger.Error("Failed to list documents", "error", err, "owner_id", ownerID)
		return nil, utils.NewInternalError("Failed to list documents")
	}

	return s.withCategories(ctx, docs...), nil
}

func (s *documentService) Get(ctx context.Context, ownerID, id string) (*models.Document, error) {
	doc, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	s.withCategories(ctx, doc)
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, ownerID, id string, patch models.DocumentPatch) (*models.Document, error) {
	if patch.Empty() {
		return nil, utils.NewBadRequestError("No fields to update")
	}

	fields, err := s.patchFields(ctx, patch)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, ownerID, id, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Document not found")
		}
		s.logger.Error("Failed to update document", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to update document")
	}

	s.logger.Info("Document updated", "id", id, "owner_id", ownerID, "fields", len(fields))

	return s.Get(ctx, ownerID, id)
}

// patchFields validates a user edit and maps it to column values. Cleared
// nullable fields map to nil so they are stored as NULL.
func (s *documentService) patchFields(ctx context.Context, patch models.DocumentPatch) (map[string]any, error) {
	fields := map[string]any{}

	if patch.Vendor != nil {
		vendor := sanitizer.NormalizeVendor(*patch.Vendor)
		if vendor == "" {
			vendor = models.VendorUnknown
		}
		fields["vendor"] = vendor
	}

	for column, value := range map[string]*string{"doc_date": patch.Date, "reminder_date": patch.ReminderDate} {
		if value == nil {
			continue
		}
		d := strings.TrimSpace(*value)
		switch {
		case d == "":
			fields[column] = nil
		case sanitizer.ValidDate(d):
			fields[column] = d
		default:
			return nil, utils.NewBadRequestError(fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", *value))
		}
	}

	if patch.Amount != nil {
		if strings.TrimSpace(*patch.Amount) == "" {
			fields["amount"] = nil
		} else {
			amount, ok := sanitizer.NormalizeAmount(*patch.Amount)
			if !ok {
				return nil, utils.NewBadRequestError(fmt.Sprintf("Invalid amount %q", *patch.Amount))
			}
			fields["amount"] = amount
		}
	}

	if patch.Type != nil {
		docType := strings.TrimSpace(*patch.Type)
		if docType != models.TypeOther {
			ok, err := s.categories.ExistsByName(ctx, docType)
			if err != nil {
				s.logger.Error("Failed to look up category", "error", err, "type", docType)
				return nil, utils.NewInternalError("Failed to update document")
			}
			if !ok {
				return nil, utils.NewBadRequestError(fmt.Sprintf("Unknown document type %q", docType))
			}
		}
		fields["type"] = docType
	}

	return fields, nil
}

// Delete removes the row first. The blob is removed best-effort afterwards
// and a failure there is reported as a warning, not an error.
func (s *documentService) Delete(ctx context.Context, ownerID, id string) (*models.DeleteResponse, error) {
	doc, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Document not found")
		}
		s.logger.Error("Failed to delete document", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to delete document")
	}

	resp := &models.DeleteResponse{ID: id, Deleted: true}
	if err := s.storage.Delete(ctx, doc.StorageKey); err != nil {
		s.logger.Warn("Document deleted but blob removal failed",
			"id", id,
			"storage_key", doc.StorageKey,
			"error", err)
		resp.Warning = "Document deleted, but the stored file could not be removed"
	}

	s.logger.Info("Document deleted", "id", id, "owner_id", ownerID)

	return resp, nil
}

func (s *documentService) SignedURL(ctx context.Context, ownerID, id string) (*models.SignedURLResponse, error) {
	doc, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.SignedURL(ctx, doc.StorageKey, s.urlTTL)
	if err != nil {
		s.logger.Error("Failed to sign URL", "error", err, "storage_key", doc.StorageKey)
		return nil, utils.NewInternalError("Failed to create download link")
	}

	return &models.SignedURLResponse{
		ID:        id,
		URL:       url,
		ExpiresAt: s.now().Add(s.urlTTL).UTC(),
	}, nil
}

func (s *documentService) DueReminders(ctx context.Context, ownerID string) ([]*models.Document, error) {
	until := s.now().Add(ReminderWindow).Format(models.DateLayout)

	docs, err := s.repo.ListReminders(ctx, ownerID, until)
	if err != nil {
		s.logger.Error("Failed to list reminders", "error", err, "owner_id", ownerID)
		return nil, utils.NewInternalError("Failed to list reminders")
	}

	return s.withCategories(ctx, docs...), nil
}

func (s *documentService) find(ctx context.Context, ownerID, id string) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Document not found")
		}
		s.logger.Error("Failed to get document", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve document")
	}

	return doc, nil
}

// withCategories sets the display category: the stored type while it is
// still a category, Other once it has been removed.
func (s *documentService) withCategories(ctx context.Context, docs ...*models.Document) []*models.Document {
	known := map[string]bool{models.TypeOther: true}

	categories, err := s.categories.List(ctx)
	if err != nil {
		s.logger.Warn("Failed to load categories", "error", err)
	}
	for _, c := range categories {
		known[c.Name] = true
	}

	for _, doc := range docs {
		if known[doc.Type] {
			doc.Category = doc.Type
		} else {
			doc.Category = models.TypeOther
		}
	}

	return docs
}
