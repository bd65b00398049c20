package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/BerylCAtieno/docvault-api/internal/models"
)

// ErrDuplicate is returned when a category name is already taken.
var ErrDuplicate = errors.New("already exists")

type CategoryRepository interface {
	List(ctx context.Context) ([]*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	query, args, err := psql().Select("id", "name", "created_at").
		From("document_types").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	categories := []*models.Category{}
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	taken, err := r.nameTaken(ctx, category.Name)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicate
	}

	return r.insert(ctx, category)
}

// insert relies on the case-insensitive unique index when two creates race
// past the nameTaken check.
func (r *categoryRepository) insert(ctx context.Context, category *models.Category) error {
	query, args, err := psql().Insert("document_types").
		Columns("id", "name", "created_at").
		Values(category.ID, category.Name, category.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}

	return false
}

// Delete removes the label only; documents keep their type text.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql().Delete("document_types").
		Where(squirrel.Eq{"id": id}).
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

// ExistsByName is an exact, case-sensitive lookup as used for document types.
func (r *categoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	query, args, err := psql().Select("1").
		From("document_types").
		Where(squirrel.Eq{"name": name}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build lookup: %w", err)
	}

	return r.exists(ctx, query, args)
}

func (r *categoryRepository) nameTaken(ctx context.Context, name string) (bool, error) {
	query, args, err := psql().Select("1").
		From("document_types").
		Where(squirrel.Expr("LOWER(name) = ?", strings.ToLower(name))).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build lookup: %w", err)
	}

	return r.exists(ctx, query, args)
}

func (r *categoryRepository) exists(ctx context.Context, query string, args []any) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
