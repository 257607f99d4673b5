// Package catalog manages the admin-editable storefront documents: the
// menu, themes, the app title, and the active theme. Local state updates
// synchronously; remote writes are debounced per document, and incoming
// store broadcasts replace local state (last snapshot wins).
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Errors returned by catalog mutations.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("menu item not found")
	ErrThemeNotFound    = errors.New("theme not found")
	ErrThemeActive      = errors.New("theme is currently active")
	ErrLastTheme        = errors.New("cannot delete the last theme")
)

// Service owns the catalog documents.
type Service struct {
	mu            sync.Mutex
	menu          []model.MenuCategory
	themes        []model.Theme
	appTitle      string
	activeThemeID string

	menuWriter   *store.DebouncedWriter
	themeWriter  *store.DebouncedWriter
	titleWriter  *store.DebouncedWriter
	activeWriter *store.DebouncedWriter

	unsubs []func()
}

// New creates the service seeded with defaults, wires debounced writers,
// and subscribes to remote changes. A store read error leaves the seeded
// value in place (degraded, not crashed).
func New(docs store.Documents, debounce time.Duration, onSave func()) *Service {
	s := &Service{
		menu:          DefaultMenu(),
		themes:        DefaultThemes(),
		appTitle:      DefaultAppTitle,
		activeThemeID: DefaultThemes()[0].ID,

		menuWriter:   store.NewDebouncedWriter(docs, DocMenuData, debounce, onSave),
		themeWriter:  store.NewDebouncedWriter(docs, DocThemes, debounce, onSave),
		titleWriter:  store.NewDebouncedWriter(docs, DocAppTitle, debounce, onSave),
		activeWriter: store.NewDebouncedWriter(docs, DocActiveThemeID, debounce, onSave),
	}

	s.unsubs = append(s.unsubs,
		docs.SubscribeDoc(DocMenuData, s.onDoc(func(raw json.RawMessage) error {
			var menu []model.MenuCategory
			if err := json.Unmarshal(raw, &menu); err != nil {
				return err
			}
			s.mu.Lock()
			s.menu = menu
			s.mu.Unlock()
			return nil
		})),
		docs.SubscribeDoc(DocThemes, s.onDoc(func(raw json.RawMessage) error {
			var themes []model.Theme
			if err := json.Unmarshal(raw, &themes); err != nil {
				return err
			}
			s.mu.Lock()
			s.themes = themes
			s.mu.Unlock()
			return nil
		})),
		docs.SubscribeDoc(DocAppTitle, s.onDoc(func(raw json.RawMessage) error {
			var title string
			if err := json.Unmarshal(raw, &title); err != nil {
				return err
			}
			s.mu.Lock()
			s.appTitle = title
			s.mu.Unlock()
			return nil
		})),
		docs.SubscribeDoc(DocActiveThemeID, s.onDoc(func(raw json.RawMessage) error {
			var id string
			if err := json.Unmarshal(raw, &id); err != nil {
				return err
			}
			s.mu.Lock()
			s.activeThemeID = id
			s.mu.Unlock()
			return nil
		})),
	)
	return s
}

// Close unsubscribes from the store and drops pending debounced writes.
func (s *Service) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.menuWriter.Stop()
	s.themeWriter.Stop()
	s.titleWriter.Stop()
	s.activeWriter.Stop()
}

func (s *Service) onDoc(apply func(json.RawMessage) error) store.DocFunc {
	return func(raw json.RawMessage, err error) {
		if err != nil {
			log.Printf("ERROR: catalog subscription: %v", err)
			return
		}
		if err := apply(raw); err != nil {
			log.Printf("ERROR: catalog decode: %v", err)
		}
	}
}

// --- Reads ---

// Categories returns a deep copy of the menu.
func (s *Service) Categories() []model.MenuCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMenu(s.menu)
}

// Themes returns a copy of the theme list.
func (s *Service) Themes() []model.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Theme(nil), s.themes...)
}

// ActiveThemeID returns the active theme id.
func (s *Service) ActiveThemeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeThemeID
}

// AppTitle returns the storefront title.
func (s *Service) AppTitle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appTitle
}

// MediaInUse reports whether a media file id is referenced by a menu item
// image or a theme background, naming the holder for the error message.
func (s *Service) MediaInUse(fileID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, category := range s.menu {
		for _, item := range category.Items {
			if item.BackgroundImageID == fileID || item.ForegroundImageID == fileID {
				return fmt.Sprintf("menu item %q", item.Name), true
			}
		}
	}
	for _, theme := range s.themes {
		if theme.BackgroundImage == fileID {
			return fmt.Sprintf("theme %q", theme.Name), true
		}
	}
	return "", false
}

// --- Menu mutations ---

// MenuItemPatch carries partial menu item updates; nil fields are left
// untouched. Setting BackgroundImageID applies it to every item in the
// category, matching the storefront's shared-card-background behavior.
type MenuItemPatch struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	BackgroundImageID *string          `json:"backgroundImageId"`
	ForegroundImageID *string          `json:"foregroundImageId"`
	Dietary           *model.Dietary   `json:"dietary"`
	IsAvailable       *bool            `json:"isAvailable"`
}

// UpdateMenuItem applies a patch to one item (or, for background images,
// the whole category) and schedules the remote write.
func (s *Service) UpdateMenuItem(categoryID, itemID string, patch MenuItemPatch) (model.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := s.findCategory(categoryID)
	if category == nil {
		return model.MenuItem{}, ErrCategoryNotFound
	}

	if patch.BackgroundImageID != nil {
		for i := range category.Items {
			category.Items[i].BackgroundImageID = *patch.BackgroundImageID
		}
	}

	var updated *model.MenuItem
	for i := range category.Items {
		if category.Items[i].ID == itemID {
			updated = &category.Items[i]
			break
		}
	}
	if updated == nil {
		return model.MenuItem{}, ErrItemNotFound
	}

	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Price != nil {
		updated.Price = *patch.Price
	}
	if patch.ForegroundImageID != nil {
		updated.ForegroundImageID = *patch.ForegroundImageID
	}
	if patch.Dietary != nil {
		updated.Dietary = *patch.Dietary
	}
	if patch.IsAvailable != nil {
		updated.IsAvailable = *patch.IsAvailable
	}

	s.scheduleMenuWriteLocked()
	return *updated, nil
}

// AddMenuItem appends a new item with storefront defaults to a category.
func (s *Service) AddMenuItem(categoryID string) (model.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := s.findCategory(categoryID)
	if category == nil {
		return model.MenuItem{}, ErrCategoryNotFound
	}

	item := model.MenuItem{
		ID:          "item-" + uuid.NewString(),
		Name:        "New Menu Item",
		Description: "Enter a description for this item.",
		Price:       decimal.RequireFromString("9.99"),
		Dietary:     model.Dietary{NoSeafood: true},
		IsAvailable: true,
	}
	category.Items = append(category.Items, item)

	s.scheduleMenuWriteLocked()
	return item, nil
}

// DeleteMenuItem removes an item from a category.
func (s *Service) DeleteMenuItem(categoryID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := s.findCategory(categoryID)
	if category == nil {
		return ErrCategoryNotFound
	}

	kept := category.Items[:0]
	found := false
	for _, item := range category.Items {
		if item.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return ErrItemNotFound
	}
	category.Items = kept

	s.scheduleMenuWriteLocked()
	return nil
}

// --- Theme mutations ---

// AddTheme appends a theme and makes it active.
func (s *Service) AddTheme(theme model.Theme) model.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	if theme.ID == "" {
		theme.ID = "theme-" + uuid.NewString()
	}
	s.themes = append(s.themes, theme)
	s.activeThemeID = theme.ID

	s.scheduleThemeWriteLocked()
	s.scheduleActiveWriteLocked()
	return theme
}

// UpdateTheme merges non-zero fields into an existing theme.
func (s *Service) UpdateTheme(themeID string, fields model.Theme) (model.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.themes {
		if s.themes[i].ID != themeID {
			continue
		}
		if fields.Name != "" {
			s.themes[i].Name = fields.Name
		}
		if fields.BackgroundImage != "" {
			s.themes[i].BackgroundImage = fields.BackgroundImage
		}
		if fields.PrimaryColor != "" {
			s.themes[i].PrimaryColor = fields.PrimaryColor
		}
		if fields.SecondaryColor != "" {
			s.themes[i].SecondaryColor = fields.SecondaryColor
		}
		if fields.TextColor != "" {
			s.themes[i].TextColor = fields.TextColor
		}
		s.scheduleThemeWriteLocked()
		return s.themes[i], nil
	}
	return model.Theme{}, ErrThemeNotFound
}

// DeleteTheme removes a theme. The active theme and the last remaining
// theme are protected.
func (s *Service) DeleteTheme(themeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if themeID == s.activeThemeID {
		return ErrThemeActive
	}
	if len(s.themes) <= 1 {
		return ErrLastTheme
	}

	kept := s.themes[:0]
	found := false
	for _, theme := range s.themes {
		if theme.ID == themeID {
			found = true
			continue
		}
		kept = append(kept, theme)
	}
	if !found {
		return ErrThemeNotFound
	}
	s.themes = kept

	s.scheduleThemeWriteLocked()
	return nil
}

// SetActiveTheme switches the active theme.
func (s *Service) SetActiveTheme(themeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, theme := range s.themes {
		if theme.ID == themeID {
			s.activeThemeID = themeID
			s.scheduleActiveWriteLocked()
			return nil
		}
	}
	return ErrThemeNotFound
}

// SetAppTitle updates the storefront title.
func (s *Service) SetAppTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appTitle = title
	raw, err := json.Marshal(s.appTitle)
	if err != nil {
		log.Printf("ERROR: encode app title: %v", err)
		return
	}
	s.titleWriter.Write(raw)
}

// --- Internal helpers ---

func (s *Service) findCategory(categoryID string) *model.MenuCategory {
	for i := range s.menu {
		if s.menu[i].ID == categoryID {
			return &s.menu[i]
		}
	}
	return nil
}

func (s *Service) scheduleMenuWriteLocked() {
	raw, err := json.Marshal(s.menu)
	if err != nil {
		log.Printf("ERROR: encode menu: %v", err)
		return
	}
	s.menuWriter.Write(raw)
}

func (s *Service) scheduleThemeWriteLocked() {
	raw, err := json.Marshal(s.themes)
	if err != nil {
		log.Printf("ERROR: encode themes: %v", err)
		return
	}
	s.themeWriter.Write(raw)
}

func (s *Service) scheduleActiveWriteLocked() {
	raw, err := json.Marshal(s.activeThemeID)
	if err != nil {
		log.Printf("ERROR: encode active theme: %v", err)
		return
	}
	s.activeWriter.Write(raw)
}

func cloneMenu(menu []model.MenuCategory) []model.MenuCategory {
	out := make([]model.MenuCategory, len(menu))
	for i, category := range menu {
		out[i] = category
		out[i].Items = append([]model.MenuItem(nil), category.Items...)
	}
	return out
}
