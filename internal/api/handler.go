// Package api serves the category store over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/logger"
)

// Largest request body accepted.
const maxBodyBytes = 4 << 20

// SaveRequest replaces the questions of one category.
type SaveRequest struct {
	CategoryID string            `json:"categoryId" validate:"required"`
	Questions  []domain.Question `json:"questions" validate:"required"`
}

// RenameRequest changes a category's display name.
type RenameRequest struct {
	CategoryID string `json:"categoryId" validate:"required"`
	Name       string `json:"name" validate:"required,max=80"`
}

// UpdateResponse is returned by every successful write.
type UpdateResponse struct {
	Success    bool              `json:"success"`
	Categories []domain.Category `json:"categories"`
}

// Handler holds the HTTP handlers for the category store.
type Handler struct {
	store domain.CategoryStore
	log   *logger.Logger
}

// NewHandler creates the handlers over store.
func NewHandler(store domain.CategoryStore, log *logger.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// GetData handles GET /api/data.
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	cats, err := h.store.Categories(r.Context())
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "Failed to read data", err)
		return
	}
	h.respondJSON(w, http.StatusOK, cats)
}

// Save handles POST /api/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Missing categoryId or questions", err)
		return
	}

	cats, err := h.store.ReplaceQuestions(r.Context(), req.CategoryID, req.Questions)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	h.log.Info("api: saved %d questions to %s", len(req.Questions), req.CategoryID)
	h.respondJSON(w, http.StatusOK, UpdateResponse{Success: true, Categories: cats})
}

// Rename handles POST /api/rename.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := decodeAndValidate(r, &req); err != nil || blank(req.Name) {
		h.respondError(w, r, http.StatusBadRequest, "Missing categoryId or name", err)
		return
	}

	cats, err := h.store.Rename(r.Context(), req.CategoryID, req.Name)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	h.log.Info("api: renamed %s", req.CategoryID)
	h.respondJSON(w, http.StatusOK, UpdateResponse{Success: true, Categories: cats})
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		h.respondError(w, r, http.StatusNotFound, "Category not found", err)
		return
	}
	h.respondError(w, r, http.StatusInternalServerError, "Failed to save data", err)
}
