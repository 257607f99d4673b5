package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nidys-catering/api/internal/catalog"
	"github.com/nidys-catering/api/internal/model"
)

// CatalogHandler exposes the storefront documents: the menu, themes, the
// app title, and the active theme. Reads are public; mutations are admin.
type CatalogHandler struct {
	catalog *catalog.Service
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

// RegisterPublicRoutes registers the read endpoints.
func (h *CatalogHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/catalog", h.Get)
}

// RegisterAdminRoutes registers the mutation endpoints. Expected to be
// mounted behind the admin middleware.
func (h *CatalogHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/categories/{categoryID}/items", h.AddItem)
	r.Patch("/categories/{categoryID}/items/{itemID}", h.UpdateItem)
	r.Delete("/categories/{categoryID}/items/{itemID}", h.DeleteItem)
	r.Post("/themes", h.AddTheme)
	r.Patch("/themes/{themeID}", h.UpdateTheme)
	r.Delete("/themes/{themeID}", h.DeleteTheme)
	r.Put("/themes/active", h.SetActiveTheme)
	r.Put("/app-title", h.SetAppTitle)
}

type catalogResponse struct {
	AppTitle      string               `json:"appTitle"`
	Menu          []model.MenuCategory `json:"menu"`
	Themes        []model.Theme        `json:"themes"`
	ActiveThemeID string               `json:"activeThemeId"`
}

// Get returns the full catalog state in one response.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		AppTitle:      h.catalog.AppTitle(),
		Menu:          h.catalog.Categories(),
		Themes:        h.catalog.Themes(),
		ActiveThemeID: h.catalog.ActiveThemeID(),
	})
}

// AddItem appends a new menu item with defaults to a category.
func (h *CatalogHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.AddMenuItem(chi.URLParam(r, "categoryID"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem applies a partial update to a menu item.
func (h *CatalogHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var patch catalog.MenuItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.catalog.UpdateMenuItem(chi.URLParam(r, "categoryID"), chi.URLParam(r, "itemID"), patch)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem removes a menu item from its category.
func (h *CatalogHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteMenuItem(chi.URLParam(r, "categoryID"), chi.URLParam(r, "itemID")); err != nil {
		writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTheme appends a theme and makes it active.
func (h *CatalogHandler) AddTheme(w http.ResponseWriter, r *http.Request) {
	var theme model.Theme
	if err := json.NewDecoder(r.Body).Decode(&theme); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if theme.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	writeJSON(w, http.StatusCreated, h.catalog.AddTheme(theme))
}

// UpdateTheme merges non-zero fields into an existing theme.
func (h *CatalogHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var fields model.Theme
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	theme, err := h.catalog.UpdateTheme(chi.URLParam(r, "themeID"), fields)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

// DeleteTheme removes a theme. The active and last remaining themes are
// protected.
func (h *CatalogHandler) DeleteTheme(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteTheme(chi.URLParam(r, "themeID")); err != nil {
		writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setActiveThemeRequest struct {
	ThemeID string `json:"themeId"`
}

// SetActiveTheme switches the active theme.
func (h *CatalogHandler) SetActiveTheme(w http.ResponseWriter, r *http.Request) {
	var req setActiveThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.catalog.SetActiveTheme(req.ThemeID); err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"activeThemeId": req.ThemeID})
}

type setAppTitleRequest struct {
	Title string `json:"title"`
}

// SetAppTitle updates the storefront title.
func (h *CatalogHandler) SetAppTitle(w http.ResponseWriter, r *http.Request) {
	var req setAppTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	h.catalog.SetAppTitle(req.Title)
	writeJSON(w, http.StatusOK, map[string]string{"appTitle": req.Title})
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrItemNotFound),
		errors.Is(err, catalog.ErrThemeNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, catalog.ErrThemeActive), errors.Is(err, catalog.ErrLastTheme):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
