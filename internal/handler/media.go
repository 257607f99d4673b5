package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nidys-catering/api/internal/media"
	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/store"
)

// maxUploadBytes bounds a single media upload.
const maxUploadBytes = 10 << 20

// BlobStore defines the blob read needed to serve media downloads.
// Satisfied by any store.Media; narrow interface for testability.
type BlobStore interface {
	GetBlob(ctx context.Context, id string) (data []byte, mimeType string, err error)
}

// MediaHandler exposes the media tree. Reads and blob downloads are
// public; structural mutations are admin.
type MediaHandler struct {
	manager *media.Manager
	blobs   BlobStore
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(manager *media.Manager, blobs BlobStore) *MediaHandler {
	return &MediaHandler{manager: manager, blobs: blobs}
}

// RegisterPublicRoutes registers tree reads and blob downloads.
func (h *MediaHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/media", h.Tree)
	r.Get("/media/{id}/children", h.Children)
	r.Get("/media/{id}/breadcrumbs", h.Breadcrumbs)
	r.Get("/media/{id}/blob", h.Blob)
}

// RegisterAdminRoutes registers structural mutations. Expected to be
// mounted behind the admin middleware.
func (h *MediaHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/media/files", h.Upload)
	r.Post("/media/folders", h.CreateFolder)
	r.Patch("/media/{id}", h.Rename)
	r.Post("/media/{id}/move", h.Move)
	r.Post("/media/{id}/duplicate", h.Duplicate)
	r.Delete("/media/{id}", h.Delete)
}

type treeResponse struct {
	Items    map[string]model.MediaItem `json:"items"`
	ImageMap map[string]string          `json:"imageMap"`
}

// Tree returns the full media collection.
func (h *MediaHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree := h.manager.Tree()
	writeJSON(w, http.StatusOK, treeResponse{Items: tree.Items(), ImageMap: tree.ImageMap()})
}

// Children returns the ordered contents of a folder.
func (h *MediaHandler) Children(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := h.manager.Tree().Item(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "media item not found"})
		return
	}
	if !item.IsFolder() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "not a folder"})
		return
	}
	writeJSON(w, http.StatusOK, h.manager.Tree().FolderContents(id))
}

// Breadcrumbs returns the root-to-current folder chain for an item.
func (h *MediaHandler) Breadcrumbs(w http.ResponseWriter, r *http.Request) {
	chain := h.manager.Tree().Breadcrumbs(chi.URLParam(r, "id"))
	if len(chain) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "media item not found"})
		return
	}
	writeJSON(w, http.StatusOK, chain)
}

// Blob streams the stored binary data for a file.
func (h *MediaHandler) Blob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, mimeType, err := h.blobs.GetBlob(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "media item not found"})
			return
		}
		log.Printf("ERROR: read blob %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if mimeType != "" {
		w.Header().Set("Content-Type", mimeType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}

// Upload stores a multipart file under the given parent folder.
// Form fields: "file" (the upload) and "parentId".
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	parentID := r.FormValue("parentId")
	if parentID == "" {
		parentID = model.MediaRootID
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read upload"})
		return
	}

	item, err := h.manager.AddFile(r.Context(), header.Filename, header.Header.Get("Content-Type"), data, parentID)
	if err != nil {
		writeMediaError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

// CreateFolder adds an empty folder under the given parent.
func (h *MediaHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.ParentID == "" {
		req.ParentID = model.MediaRootID
	}

	item, err := h.manager.AddFolder(r.Context(), req.Name, req.ParentID)
	if err != nil {
		writeMediaError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type renameRequest struct {
	Name string `json:"name"`
}

// Rename updates an item's display name.
func (h *MediaHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	if err := h.manager.Rename(r.Context(), chi.URLParam(r, "id"), req.Name); err != nil {
		writeMediaError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveRequest struct {
	ParentID string `json:"parentId"`
}

// Move reparents an item.
func (h *MediaHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ParentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "parentId is required"})
		return
	}

	if err := h.manager.Move(r.Context(), chi.URLParam(r, "id"), req.ParentID); err != nil {
		writeMediaError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Duplicate copies a file into its own parent.
func (h *MediaHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	item, err := h.manager.Duplicate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeMediaError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Delete removes an item and, for folders, its whole subtree.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeMediaError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, media.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, media.ErrNotFolder),
		errors.Is(err, media.ErrNotFile),
		errors.Is(err, media.ErrCycle):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, media.ErrRootDelete), errors.Is(err, media.ErrInUse):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: media operation: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
