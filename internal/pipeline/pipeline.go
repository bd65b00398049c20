package pipeline

import (
	"context"
	"time"

	"github.com/BerylCAtieno/docvault-api/internal/analyzer"
	"github.com/BerylCAtieno/docvault-api/internal/models"
	"github.com/BerylCAtieno/docvault-api/internal/sanitizer"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

// Pipeline runs ingest, extraction, sanitizing and the write for one upload.
type Pipeline struct {
	blobs     BlobWriter
	extractor analyzer.Extractor
	writer    *Writer
	now       func() time.Time
	logger    *utils.Logger
}

type Option func(*Pipeline)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

func New(blobs BlobWriter, extractor analyzer.Extractor, docs DocumentStore, categories CategoryLookup, logger *utils.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		blobs:     blobs,
		extractor: extractor,
		writer:    NewWriter(docs, categories, logger),
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IngestAndExtract stores the upload and records exactly one Document for it.
// Extraction problems never surface as errors; they produce a fallback record
// with ExtractionFailed set. Returned errors are validation errors,
// *StorageWriteError or *PersistenceError.
func (p *Pipeline) IngestAndExtract(ctx context.Context, req models.UploadRequest) (*models.Document, error) {
	now := p.now()

	in, err := Ingest(ctx, p.blobs, req, now)
	if err != nil {
		return nil, err
	}

	logger := p.logger.With("owner_id", req.OwnerID, "storage_key", in.Key)
	logger.Info("Upload stored", "mime_type", in.Media.MIMEType, "bytes", len(req.Data))

	result, failed := p.extract(ctx, in.Key, now, logger)

	doc, err := p.writer.Write(ctx, req.OwnerID, in, result, failed, now)
	if err != nil {
		return nil, err
	}

	logger.Info("Document recorded",
		"id", doc.ID,
		"type", doc.Type,
		"extraction_failed", doc.ExtractionFailed)

	return doc, nil
}

func (p *Pipeline) extract(ctx context.Context, key string, now time.Time, logger *utils.Logger) (models.ExtractionResult, bool) {
	raw, err := p.extractor.Extract(ctx, key)
	if err != nil {
		logger.Warn("Extraction failed, saving for review", "reason", analyzer.Kind(err), "error", err)
		return Fallback(now), true
	}

	result := sanitizer.Sanitize(*raw)
	if !sanitizer.Usable(result) {
		logger.Warn("Extraction result unusable, saving for review", "reason", "unusable")
		return Fallback(now), true
	}

	return result, false
}
