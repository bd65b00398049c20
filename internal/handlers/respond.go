package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, logger *utils.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, logger *utils.Logger, err error) {
	appErr, ok := utils.AsAppError(err)
	if !ok {
		appErr = utils.NewInternalError("Internal server error")
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.Error("Request error", "status", appErr.StatusCode, "code", appErr.Code, "error", err)
	} else {
		logger.Warn("Request error", "status", appErr.StatusCode, "code", appErr.Code, "error", appErr.Message)
	}

	respondJSON(w, logger, appErr.StatusCode, errorResponse{Error: appErr.Message, Code: appErr.Code})
}
