package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"finder/internal/imaging"
	"finder/internal/model"
	"finder/internal/store"
)

// ItemsHandler serves the item collection: the full listing, creation, and
// the one permitted mutation (status updates).
type ItemsHandler struct {
	DB *sql.DB
}

type updateStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// List handles GET /api/items. The response is always the full collection,
// newest first, optionally filtered by type and status.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	status := r.URL.Query().Get("status")

	items, err := store.ListItems(r.Context(), h.DB, typ, status)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "STORAGE_ERROR", "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. Required fields are checked before any
// storage work; an inline photo is normalized (downscaled, re-encoded) and
// served from the image endpoint instead of being echoed back as base64.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft model.Draft
	if err := decodeJSON(r, &draft); err != nil {
		jsonError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if !model.ValidType(draft.Type) {
		jsonError(w, http.StatusBadRequest, "VALIDATION_ERROR", "type must be LOST or FOUND")
		return
	}
	if missing := draft.Validate(); len(missing) > 0 {
		jsonError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"required fields missing: "+strings.Join(missing, ", "))
		return
	}
	if draft.Category == "" {
		draft.Category = model.DefaultCategory
	}

	var image []byte
	var imageMIME string
	if strings.HasPrefix(draft.ImageURL, "data:") {
		data, _, err := imaging.ParseDataURL(draft.ImageURL)
		if err == nil {
			var result *imaging.ProcessResult
			result, err = imaging.Process(data)
			if err == nil {
				image = result.Data
				imageMIME = result.MIME
			}
		}
		if err != nil {
			// A broken photo shouldn't lose the listing; store it without one.
			slog.Warn("dropping unusable inline image", "error", err)
			draft.ImageURL = ""
		}
	}

	item, err := store.CreateItem(r.Context(), h.DB, draft, image, imageMIME)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "STORAGE_ERROR", "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// UpdateStatus handles PATCH /api/items with body {id, status}.
func (h *ItemsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if !model.ValidStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "VALIDATION_ERROR", "status must be ACTIVE or RESOLVED")
		return
	}

	switch err := store.UpdateItemStatus(r.Context(), h.DB, req.ID, req.Status); err {
	case nil:
	case store.ErrNotFound:
		jsonError(w, http.StatusNotFound, "NOT_FOUND", "no item with id "+req.ID)
		return
	case store.ErrResolved:
		jsonError(w, http.StatusConflict, "VALIDATION_ERROR", "resolved items cannot be reopened")
		return
	default:
		jsonError(w, http.StatusInternalServerError, "STORAGE_ERROR", "failed to update status")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "STORAGE_ERROR", "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "NOT_FOUND", "no item with id "+id)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "STORAGE_ERROR", "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "NOT_FOUND", "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
