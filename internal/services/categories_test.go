package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/docvault-api/internal/models"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

func TestCategoryService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCategoryService(f.categories, utils.NopLogger())

	created, err := svc.Create(ctx, "  Tax   Return ")
	require.NoError(t, err)
	require.Equal(t, "Tax Return", created.Name)

	categories, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 4)

	t.Run("should reject invalid names", func(t *testing.T) {
		_, err := svc.Create(ctx, "   ")
		requireAppError(t, err, http.StatusBadRequest)

		_, err = svc.Create(ctx, "tax return")
		requireAppError(t, err, http.StatusConflict)

		_, err = svc.Create(ctx, "other")
		requireAppError(t, err, http.StatusConflict)
	})

	t.Run("should delete without touching documents", func(t *testing.T) {
		doc := f.seed(t, "user-1", "Revenue Office", "Tax Return")

		require.NoError(t, svc.Delete(ctx, created.ID))
		requireAppError(t, svc.Delete(ctx, created.ID), http.StatusNotFound)

		got, err := f.service.Get(ctx, "user-1", doc.ID)
		require.NoError(t, err)
		require.Equal(t, "Tax Return", got.Type)
		require.Equal(t, models.TypeOther, got.Category)
	})
}
