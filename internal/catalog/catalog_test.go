package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/store/memory"
)

// --- Test helpers ---

const testDebounce = 5 * time.Millisecond

func newTestService(t *testing.T) (*Service, *memory.Store, chan struct{}) {
	t.Helper()
	st := memory.New()
	saved := make(chan struct{}, 16)
	svc := New(st, testDebounce, func() { saved <- struct{}{} })
	t.Cleanup(svc.Close)
	return svc, st, saved
}

func waitForSave(t *testing.T, saved chan struct{}) {
	t.Helper()
	select {
	case <-saved:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for debounced write")
	}
}

func findItem(t *testing.T, svc *Service, categoryID, itemID string) model.MenuItem {
	t.Helper()
	for _, category := range svc.Categories() {
		if category.ID != categoryID {
			continue
		}
		for _, item := range category.Items {
			if item.ID == itemID {
				return item
			}
		}
	}
	t.Fatalf("item %s not found in %s", itemID, categoryID)
	return model.MenuItem{}
}

// --- Tests ---

func TestSeededDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	if svc.AppTitle() != DefaultAppTitle {
		t.Errorf("title = %s, want %s", svc.AppTitle(), DefaultAppTitle)
	}
	if len(svc.Categories()) == 0 {
		t.Fatal("expected seeded menu categories")
	}
	themes := svc.Themes()
	if len(themes) < 2 {
		t.Fatalf("expected at least 2 seeded themes, got %d", len(themes))
	}
	if svc.ActiveThemeID() != themes[0].ID {
		t.Errorf("active theme = %s, want %s", svc.ActiveThemeID(), themes[0].ID)
	}
}

func TestUpdateMenuItemPatch(t *testing.T) {
	svc, st, saved := newTestService(t)
	category := svc.Categories()[0]
	item := category.Items[0]

	name := "Spicy Basil"
	newPrice := decimal.RequireFromString("14.50")
	updated, err := svc.UpdateMenuItem(category.ID, item.ID, MenuItemPatch{Name: &name, Price: &newPrice})
	if err != nil {
		t.Fatalf("UpdateMenuItem: %v", err)
	}
	if updated.Name != "Spicy Basil" || !updated.Price.Equal(newPrice) {
		t.Errorf("updated = %+v", updated)
	}
	// Unpatched fields survive.
	if updated.Description != item.Description {
		t.Error("description changed without a patch")
	}

	waitForSave(t, saved)
	raw, err := st.GetDoc(context.Background(), DocMenuData)
	if err != nil {
		t.Fatalf("GetDoc: %v", err)
	}
	var persisted []model.MenuCategory
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("decode persisted menu: %v", err)
	}
	if persisted[0].Items[0].Name != "Spicy Basil" {
		t.Error("debounced write did not persist the patch")
	}
}

func TestBackgroundImageAppliesCategoryWide(t *testing.T) {
	svc, _, _ := newTestService(t)
	category := svc.Categories()[0]
	if len(category.Items) < 2 {
		t.Skip("seeded category has fewer than 2 items")
	}

	bg := "file-bg-1"
	if _, err := svc.UpdateMenuItem(category.ID, category.Items[0].ID, MenuItemPatch{BackgroundImageID: &bg}); err != nil {
		t.Fatalf("UpdateMenuItem: %v", err)
	}

	// Every item in the category shares the card background.
	for _, item := range svc.Categories()[0].Items {
		if item.BackgroundImageID != bg {
			t.Errorf("item %s background = %s, want %s", item.ID, item.BackgroundImageID, bg)
		}
	}
}

func TestAddAndDeleteMenuItem(t *testing.T) {
	svc, _, _ := newTestService(t)
	category := svc.Categories()[0]
	before := len(category.Items)

	item, err := svc.AddMenuItem(category.ID)
	if err != nil {
		t.Fatalf("AddMenuItem: %v", err)
	}
	if item.Name != "New Menu Item" || !item.IsAvailable || !item.Dietary.NoSeafood {
		t.Errorf("defaults = %+v", item)
	}
	if !item.Price.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("price = %s, want 9.99", item.Price)
	}

	got := findItem(t, svc, category.ID, item.ID)
	if got.ID != item.ID {
		t.Fatal("added item not in catalog")
	}

	if err := svc.DeleteMenuItem(category.ID, item.ID); err != nil {
		t.Fatalf("DeleteMenuItem: %v", err)
	}
	if len(svc.Categories()[0].Items) != before {
		t.Error("delete did not restore the item count")
	}

	if _, err := svc.AddMenuItem("missing"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("err = %v, want ErrCategoryNotFound", err)
	}
	if err := svc.DeleteMenuItem(category.ID, "missing"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("err = %v, want ErrItemNotFound", err)
	}
}

func TestThemeLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)

	added := svc.AddTheme(model.Theme{Name: "Sunset"})
	if added.ID == "" {
		t.Fatal("expected generated theme id")
	}
	if svc.ActiveThemeID() != added.ID {
		t.Error("new theme should become active")
	}

	updated, err := svc.UpdateTheme(added.ID, model.Theme{PrimaryColor: "#ff7700"})
	if err != nil {
		t.Fatalf("UpdateTheme: %v", err)
	}
	if updated.PrimaryColor != "#ff7700" || updated.Name != "Sunset" {
		t.Errorf("merge broken: %+v", updated)
	}

	// Active theme cannot be deleted.
	if err := svc.DeleteTheme(added.ID); !errors.Is(err, ErrThemeActive) {
		t.Fatalf("err = %v, want ErrThemeActive", err)
	}

	defaultTheme := svc.Themes()[0]
	if err := svc.SetActiveTheme(defaultTheme.ID); err != nil {
		t.Fatalf("SetActiveTheme: %v", err)
	}
	if err := svc.DeleteTheme(added.ID); err != nil {
		t.Fatalf("DeleteTheme after deactivation: %v", err)
	}

	if err := svc.SetActiveTheme("missing"); !errors.Is(err, ErrThemeNotFound) {
		t.Errorf("err = %v, want ErrThemeNotFound", err)
	}
}

func TestDeleteLastThemeRefused(t *testing.T) {
	svc, _, _ := newTestService(t)

	themes := svc.Themes()
	active := svc.ActiveThemeID()
	for _, theme := range themes {
		if theme.ID != active {
			if err := svc.DeleteTheme(theme.ID); err != nil {
				t.Fatalf("DeleteTheme(%s): %v", theme.ID, err)
			}
		}
	}

	// One theme left and it is active; both guards now apply.
	if err := svc.DeleteTheme(active); !errors.Is(err, ErrThemeActive) {
		t.Errorf("err = %v, want ErrThemeActive", err)
	}
}

func TestMediaInUse(t *testing.T) {
	svc, _, _ := newTestService(t)
	category := svc.Categories()[0]

	fg := "file-hero"
	if _, err := svc.UpdateMenuItem(category.ID, category.Items[0].ID, MenuItemPatch{ForegroundImageID: &fg}); err != nil {
		t.Fatalf("UpdateMenuItem: %v", err)
	}
	if holder, inUse := svc.MediaInUse("file-hero"); !inUse || holder == "" {
		t.Errorf("expected menu item holder, got %q/%v", holder, inUse)
	}

	svc.AddTheme(model.Theme{Name: "Photo", BackgroundImage: "file-theme-bg"})
	if holder, inUse := svc.MediaInUse("file-theme-bg"); !inUse || holder == "" {
		t.Errorf("expected theme holder, got %q/%v", holder, inUse)
	}

	if _, inUse := svc.MediaInUse("file-unreferenced"); inUse {
		t.Error("unreferenced file reported as in use")
	}
}

func TestRemoteDocReplacesLocalState(t *testing.T) {
	svc, st, _ := newTestService(t)

	raw, err := json.Marshal("Nidys Rebranded")
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SetDoc(context.Background(), DocAppTitle, raw); err != nil {
		t.Fatalf("SetDoc: %v", err)
	}

	// The memory store fans out synchronously, so the broadcast has landed.
	if svc.AppTitle() != "Nidys Rebranded" {
		t.Errorf("title = %s, want remote value", svc.AppTitle())
	}
}
