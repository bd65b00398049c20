package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/docvault-api/internal/db"
	"github.com/BerylCAtieno/docvault-api/internal/models"
)

func TestCategoryRepository_InsertRace(t *testing.T) {
	// given
	database, err := db.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(database))
	t.Cleanup(func() { _ = database.Close() })

	repo := &categoryRepository{db: database}
	ctx := context.Background()
	require.NoError(t, repo.insert(ctx, &models.Category{ID: "c1", Name: "Warranty", CreatedAt: time.Now().UTC()}))

	// when a second create already passed the name check
	err = repo.insert(ctx, &models.Category{ID: "c2", Name: "WARRANTY", CreatedAt: time.Now().UTC()})

	// then
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueViolation(errors.New("database is locked")))
}
