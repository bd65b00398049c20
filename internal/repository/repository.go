package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/docvault-api/internal/models"
)

// ErrNotFound is returned when no row matches the id (and owner).
var ErrNotFound = errors.New("not found")

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

var documentColumns = []string{
	"id", "owner_id", "storage_key", "vendor", "doc_date", "amount", "type", "reminder_date",
	"confidence", "extraction_failed", "content_type", "page_count", "created_at", "updated_at",
}

type Repository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, ownerID, id string) (*models.Document, error)
	ListByOwner(ctx context.Context, ownerID string, filter models.DocumentFilter) ([]*models.Document, error)
	ListReminders(ctx context.Context, ownerID, until string) ([]*models.Document, error)
	Update(ctx context.Context, ownerID, id string, fields map[string]any) error
	Delete(ctx context.Context, ownerID, id string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *repository) Create(ctx context.Context, doc *models.Document) error {
	query, args, err := psql().Insert("documents").
		Columns(documentColumns...).
		Values(
			doc.ID,
			doc.OwnerID,
			doc.StorageKey,
			doc.Vendor,
			doc.Date,
			doc.Amount,
			doc.Type,
			doc.ReminderDate,
			doc.Confidence,
			doc.ExtractionFailed,
			doc.ContentType,
			doc.PageCount,
			doc.CreatedAt,
			doc.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *repository) GetByID(ctx context.Context, ownerID, id string) (*models.Document, error) {
	query, args, err := psql().Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &doc, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID string, filter models.DocumentFilter) ([]*models.Document, error) {
	builder := psql().Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"owner_id": ownerID})

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.Expr(`LOWER(vendor) LIKE ? ESCAPE '\'`, pattern),
			squirrel.Expr(`amount LIKE ? ESCAPE '\'`, pattern),
		})
	}
	if filter.Type != "" {
		builder = builder.Where(squirrel.Eq{"type": filter.Type})
	}
	// Undated documents drop out as soon as either bound is set.
	if filter.From != "" {
		builder = builder.Where(squirrel.GtOrEq{"doc_date": filter.From})
	}
	if filter.To != "" {
		builder = builder.Where(squirrel.LtOrEq{"doc_date": filter.To})
	}

	query, args, err := builder.
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(clampLimit(filter.Limit))).
		Offset(uint64(max(filter.Offset, 0))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list: %w", err)
	}

	docs := []*models.Document{}
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, err
	}

	return docs, nil
}

func (r *repository) ListReminders(ctx context.Context, ownerID, until string) ([]*models.Document, error) {
	query, args, err := psql().Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.NotEq{"reminder_date": nil}).
		Where(squirrel.LtOrEq{"reminder_date": until}).
		OrderBy("reminder_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build reminder list: %w", err)
	}

	docs := []*models.Document{}
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, err
	}

	return docs, nil
}

// Update sets the given columns; a nil value stores SQL NULL.
func (r *repository) Update(ctx context.Context, ownerID, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	query, args, err := psql().Update("documents").
		SetMap(fields).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

func (r *repository) Delete(ctx context.Context, ownerID, id string) error {
	query, args, err := psql().Delete("documents").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
