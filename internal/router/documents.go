package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/docvault-api/internal/handlers"
	"github.com/BerylCAtieno/docvault-api/internal/middleware"
	"github.com/BerylCAtieno/docvault-api/internal/services"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

type Config struct {
	JWTSecret   []byte
	MaxFileSize int64
}

func NewRouter(cfg Config, docService services.DocumentService, categoryService services.CategoryService, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	docHandler := handlers.NewDocumentHandler(docService, cfg.MaxFileSize, logger)
	categoryHandler := handlers.NewCategoryHandler(categoryService, logger)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	secured := api.NewRoute().Subrouter()
	secured.Use(middleware.Auth(cfg.JWTSecret, logger))

	// Document endpoints
	secured.HandleFunc("/documents", docHandler.UploadDocument).Methods(http.MethodPost)
	secured.HandleFunc("/documents", docHandler.ListDocuments).Methods(http.MethodGet)
	secured.HandleFunc("/documents/reminders", docHandler.DueReminders).Methods(http.MethodGet)
	secured.HandleFunc("/documents/{id}", docHandler.GetDocument).Methods(http.MethodGet)
	secured.HandleFunc("/documents/{id}", docHandler.UpdateDocument).Methods(http.MethodPatch)
	secured.HandleFunc("/documents/{id}", docHandler.DeleteDocument).Methods(http.MethodDelete)
	secured.HandleFunc("/documents/{id}/url", docHandler.SignedURL).Methods(http.MethodGet)

	// Category endpoints
	secured.HandleFunc("/categories", categoryHandler.ListCategories).Methods(http.MethodGet)
	secured.HandleFunc("/categories", categoryHandler.CreateCategory).Methods(http.MethodPost)
	secured.HandleFunc("/categories/{id}", categoryHandler.DeleteCategory).Methods(http.MethodDelete)

	// CORS wraps the router so preflight requests never reach route matching.
	return middleware.CORS()(r)
}
