package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/docvault-api/internal/middleware"
	"github.com/BerylCAtieno/docvault-api/internal/models"
	"github.com/BerylCAtieno/docvault-api/internal/services"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

type DocumentHandler struct {
	service     services.DocumentService
	maxFileSize int64
	logger      *utils.Logger
}

func NewDocumentHandler(service services.DocumentService, maxFileSize int64, logger *utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:     service,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	limitMsg := fmt.Sprintf("File size exceeds %d bytes limit", h.maxFileSize)

	// Check Content-Length header first to reject oversized requests early
	if r.ContentLength > h.maxFileSize+formOverhead {
		respondError(w, h.logger, utils.NewBadRequestError(limitMsg))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+formOverhead)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, h.logger, utils.NewBadRequestError(limitMsg))
			return
		}
		respondError(w, h.logger, utils.NewBadRequestError("Invalid form data"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		respondError(w, h.logger, utils.NewInternalError("Failed to read file"))
		return
	}
	if int64(len(data)) > h.maxFileSize {
		respondError(w, h.logger, utils.NewBadRequestError(limitMsg))
		return
	}

	h.logger.Info("File upload attempt",
		"filename", header.Filename,
		"reported_content_type", header.Header.Get("Content-Type"),
		"bytes", len(data))

	doc, err := h.service.Upload(r.Context(), models.UploadRequest{
		OwnerID:  middleware.OwnerID(r.Context()),
		Data:     data,
		MIMEType: header.Header.Get("Content-Type"),
		Filename: header.Filename,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, doc)
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := intParam(query.Get("limit"))
	if err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("limit must be a number"))
		return
	}
	offset, err := intParam(query.Get("offset"))
	if err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("offset must be a number"))
		return
	}

	docs, err := h.service.List(r.Context(), middleware.OwnerID(r.Context()), models.DocumentFilter{
		Query:  query.Get("q"),
		Type:   query.Get("type"),
		From:   query.Get("from"),
		To:     query.Get("to"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, models.ListResponse{Documents: docs, Count: len(docs)})
}

func (h *DocumentHandler) DueReminders(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.DueReminders(r.Context(), middleware.OwnerID(r.Context()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, models.ListResponse{Documents: docs, Count: len(docs)})
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	doc, err := h.service.Get(r.Context(), middleware.OwnerID(r.Context()), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, doc)
}

func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch models.DocumentPatch
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&patch); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid JSON body"))
		return
	}

	doc, err := h.service.Update(r.Context(), middleware.OwnerID(r.Context()), id, patch)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	resp, err := h.service.Delete(r.Context(), middleware.OwnerID(r.Context()), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *DocumentHandler) SignedURL(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	resp, err := h.service.SignedURL(r.Context(), middleware.OwnerID(r.Context()), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

// formOverhead leaves room for multipart boundaries and headers.
const formOverhead = 1 << 20

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
