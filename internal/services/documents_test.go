package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/docvault-api/internal/db"
	"github.com/BerylCAtieno/docvault-api/internal/models"
	"github.com/BerylCAtieno/docvault-api/internal/pipeline"
	"github.com/BerylCAtieno/docvault-api/internal/repository"
	"github.com/BerylCAtieno/docvault-api/internal/storage"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

type stubIngester struct {
	doc *models.Document
	err error
}

func (s *stubIngester) IngestAndExtract(context.Context, models.UploadRequest) (*models.Document, error) {
	return s.doc, s.err
}

type undeletableStorage struct {
	*storage.MemoryStorage
}

func (undeletableStorage) Delete(context.Context, string) error {
	return errors.New("access denied")
}

type fixture struct {
	repo       repository.Repository
	categories repository.CategoryRepository
	blobs      *storage.MemoryStorage
	service    *documentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database, err := db.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(database))
	t.Cleanup(func() { _ = database.Close() })

	f := &fixture{
		repo:       repository.NewRepository(database),
		categories: repository.NewCategoryRepository(database),
		blobs:      storage.NewMemoryStorage(),
	}
	f.service = NewDocumentService(f.repo, f.categories, f.blobs, &stubIngester{}, time.Hour, utils.NopLogger()).(*documentService)
	f.service.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) seed(t *testing.T, owner, vendor, docType string) *models.Document {
	t.Helper()
	now := time.Now().UTC()
	date, amount := "2024-03-15", "1251.74"
	doc := &models.Document{
		ID:          utils.GenerateID(),
		OwnerID:     owner,
		StorageKey:  owner + "/" + utils.GenerateID() + ".jpg",
		Vendor:      vendor,
		Date:        &date,
		Amount:      &amount,
		Type:        docType,
		ContentType: "image/jpeg",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.repo.Create(context.Background(), doc))
	require.NoError(t, f.blobs.Put(context.Background(), doc.StorageKey, []byte("img"), "image/jpeg"))
	return doc
}

func requireAppError(t *testing.T, err error, status int) *utils.AppError {
	t.Helper()
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, status, appErr.StatusCode)
	return appErr
}

func TestDocumentService_UploadErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		keepsErr bool
	}{
		{name: "validation", err: pipeline.ErrUnsupportedMedia, status: http.StatusBadRequest, code: "bad_request"},
		{name: "storage", err: &pipeline.StorageWriteError{Key: "u/1.jpg", Err: errors.New("down")}, status: http.StatusBadGateway, code: CodeStorageWriteFailed, keepsErr: true},
		{name: "persistence", err: &pipeline.PersistenceError{StorageKey: "u/1.jpg", Err: errors.New("locked")}, status: http.StatusInternalServerError, code: CodePersistenceFailed, keepsErr: true},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.service.ingester = &stubIngester{err: tt.err}

			_, err := f.service.Upload(context.Background(), models.UploadRequest{OwnerID: "u"})
			appErr := requireAppError(t, err, tt.status)
			require.Equal(t, tt.code, appErr.Code)
			if tt.keepsErr {
				require.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestDocumentService_GetAndCategoryDisplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.seed(t, "user-1", "ACME Corp", models.TypeInvoice)

	got, err := f.service.Get(ctx, "user-1", doc.ID)
	require.NoError(t, err)
	require.Equal(t, models.TypeInvoice, got.Category)

	_, err = f.service.Get(ctx, "user-2", doc.ID)
	requireAppError(t, err, http.StatusNotFound)

	t.Run("removed category displays as Other", func(t *testing.T) {
		categories, err := f.categories.List(ctx)
		require.NoError(t, err)
		for _, c := range categories {
			if c.Name == models.TypeInvoice {
				require.NoError(t, f.categories.Delete(ctx, c.ID))
			}
		}

		docs, err := f.service.List(ctx, "user-1", models.DocumentFilter{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		require.Equal(t, models.TypeInvoice, docs[0].Type)
		require.Equal(t, models.TypeOther, docs[0].Category)
	})
}

func TestDocumentService_ListValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.List(context.Background(), "user-1", models.DocumentFilter{From: "15/03/2024"})
	requireAppError(t, err, http.StatusBadRequest)

	_, err = f.service.List(context.Background(), "user-1", models.DocumentFilter{Offset: -1})
	requireAppError(t, err, http.StatusBadRequest)
}

func TestDocumentService_Update(t *testing.T) {
	ptr := func(s string) *string { return &s }

	t.Run("should clear and normalize fields", func(t *testing.T) {
		f := newFixture(t)
		doc := f.seed(t, "user-1", "ACME Corp", models.TypeInvoice)

		got, err := f.service.Update(context.Background(), "user-1", doc.ID, models.DocumentPatch{
			Vendor:       ptr("   "),
			Amount:       ptr(""),
			Date:         ptr(""),
			ReminderDate: ptr("2024-07-01"),
			Type:         ptr(models.TypeReceipt),
		})
		require.NoError(t, err)
		require.Equal(t, models.VendorUnknown, got.Vendor)
		require.Nil(t, got.Amount)
		require.Nil(t, got.Date)
		require.Equal(t, "2024-07-01", *got.ReminderDate)
		require.Equal(t, models.TypeReceipt, got.Type)
		require.Equal(t, models.TypeReceipt, got.Category)
	})

	t.Run("should sanitize amount", func(t *testing.T) {
		f := newFixture(t)
		doc := f.seed(t, "user-1", "ACME Corp", models.TypeInvoice)

		got, err := f.service.Update(context.Background(), "user-1", doc.ID, models.DocumentPatch{Amount: ptr("12,50 €")})
		require.NoError(t, err)
		require.Equal(t, "12.50", *got.Amount)
	})

	tests := []struct {
		name   string
		patch  models.DocumentPatch
		owner  string
		status int
	}{
		{name: "empty patch", patch: models.DocumentPatch{}, status: http.StatusBadRequest},
		{name: "bad date", patch: models.DocumentPatch{Date: ptr("2024-02-30")}, status: http.StatusBadRequest},
		{name: "bad reminder", patch: models.DocumentPatch{ReminderDate: ptr("soon")}, status: http.StatusBadRequest},
		{name: "bad amount", patch: models.DocumentPatch{Amount: ptr("N/A")}, status: http.StatusBadRequest},
		{name: "unknown type", patch: models.DocumentPatch{Type: ptr("Warranty")}, status: http.StatusBadRequest},
		{name: "foreign owner", patch: models.DocumentPatch{Vendor: ptr("x")}, owner: "user-2", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			doc := f.seed(t, "user-1", "ACME Corp", models.TypeInvoice)
			owner := tt.owner
			if owner == "" {
				owner = "user-1"
			}

			_, err := f.service.Update(context.Background(), owner, doc.ID, tt.patch)
			requireAppError(t, err, tt.status)

			unchanged, err := f.repo.GetByID(context.Background(), "user-1", doc.ID)
			require.NoError(t, err)
			require.Equal(t, "ACME Corp", unchanged.Vendor)
			require.Equal(t, "1251.74", *unchanged.Amount)
		})
	}
}

func TestDocumentService_Delete(t *testing.T) {
	t.Run("should remove row and blob", func(t *testing.T) {
		f := newFixture(t)
		doc := f.seed(t, "user-1", "ACME Corp", models.TypeInvoice)

		resp, err := f.service.Delete(context.Background(), "user-1", doc.ID)
		require.NoError(t, err)
		require.True(t, resp.Deleted)
		require.Empty(t, resp.Warning)
		require.Zero(t, f.blobs.Len())

		_, err = f.service.Delete(context.Background(), "user-1", doc.ID)
		requireAppError(t, err, http.StatusNotFound)
	})

	t.Run("should warn when blob removal fails", func(t *testing.T) {
		f := newFixture(t)
		doc := f.seed(t, "user-1", "ACME Corp", models.TypeInvoice)
		f.service.storage = undeletableStorage{f.blobs}

		resp, err := f.service.Delete(context.Background(), "user-1", doc.ID)
		require.NoError(t, err)
		require.True(t, resp.Deleted)
		require.NotEmpty(t, resp.Warning)

		_, err = f.repo.GetByID(context.Background(), "user-1", doc.ID)
		require.ErrorIs(t, err, repository.ErrNotFound)
		require.Equal(t, 1, f.blobs.Len())
	})
}

func TestDocumentService_SignedURL(t *testing.T) {
	f := newFixture(t)
	doc := f.seed(t, "user-1", "ACME Corp", models.TypeInvoice)

	resp, err := f.service.SignedURL(context.Background(), "user-1", doc.ID)
	require.NoError(t, err)
	require.True(t, strings.Contains(resp.URL, doc.StorageKey))
	require.Equal(t, time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC), resp.ExpiresAt)

	_, err = f.service.SignedURL(context.Background(), "user-2", doc.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestDocumentService_DueReminders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ptr := func(s string) *string { return &s }

	due := f.seed(t, "user-1", "Insurance", models.TypeContract)
	later := f.seed(t, "user-1", "Lease", models.TypeContract)
	_, err := f.service.Update(ctx, "user-1", due.ID, models.DocumentPatch{ReminderDate: ptr("2024-07-30")})
	require.NoError(t, err)
	_, err = f.service.Update(ctx, "user-1", later.ID, models.DocumentPatch{ReminderDate: ptr("2024-07-31")})
	require.NoError(t, err)

	docs, err := f.service.DueReminders(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, due.ID, docs[0].ID)
}
