package pipeline

import (
	"context"
	"time"

	"github.com/BerylCAtieno/docvault-api/internal/models"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

// DocumentStore persists new Document rows.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
}

// CategoryLookup answers whether a type name is a current category.
type CategoryLookup interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type Writer struct {
	docs       DocumentStore
	categories CategoryLookup
	logger     *utils.Logger
}

func NewWriter(docs DocumentStore, categories CategoryLookup, logger *utils.Logger) *Writer {
	return &Writer{
		docs:       docs,
		categories: categories,
		logger:     logger,
	}
}

// Write turns a sanitized result into exactly one Document row.
func (w *Writer) Write(ctx context.Context, owner string, in *Ingested, result models.ExtractionResult, failed bool, now time.Time) (*models.Document, error) {
	vendor := models.VendorUnknown
	if result.Vendor != nil && *result.Vendor != "" {
		vendor = *result.Vendor
	}

	docType := w.resolveType(ctx, result.Type)
	now = now.UTC()

	doc := &models.Document{
		ID:               utils.GenerateID(),
		OwnerID:          owner,
		StorageKey:       in.Key,
		Vendor:           vendor,
		Date:             result.Date,
		Amount:           result.Amount,
		Type:             docType,
		Confidence:       result.Confidence,
		ExtractionFailed: failed,
		ContentType:      in.Media.MIMEType,
		CreatedAt:        now,
		UpdatedAt:        now,
		Category:         docType,
	}
	if in.Media.Pages > 0 {
		pages := in.Media.Pages
		doc.PageCount = &pages
	}

	if err := w.docs.Create(ctx, doc); err != nil {
		w.logger.Error("Orphaned blob: document insert failed",
			"storage_key", in.Key,
			"owner_id", owner,
			"error", err)
		return nil, &PersistenceError{StorageKey: in.Key, Err: err}
	}

	return doc, nil
}

// resolveType keeps the model's type only if it names a current category.
func (w *Writer) resolveType(ctx context.Context, name string) string {
	if name == "" || name == models.TypeOther {
		return models.TypeOther
	}

	ok, err := w.categories.ExistsByName(ctx, name)
	if err != nil {
		w.logger.Warn("Category lookup failed, using Other", "type", name, "error", err)
		return models.TypeOther
	}
	if !ok {
		return models.TypeOther
	}
	return name
}
