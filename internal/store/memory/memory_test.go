package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nidys-catering/api/internal/enum"
	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/store"
)

func TestDocRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetDoc(ctx, "appTitle"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if err := s.SetDoc(ctx, "appTitle", json.RawMessage(`"Nidys"`)); err != nil {
		t.Fatalf("SetDoc: %v", err)
	}
	got, err := s.GetDoc(ctx, "appTitle")
	if err != nil {
		t.Fatalf("GetDoc: %v", err)
	}
	if string(got) != `"Nidys"` {
		t.Errorf("value = %s", got)
	}
}

func TestSubscribeDocFanOut(t *testing.T) {
	s := New()
	ctx := context.Background()

	var got []string
	unsub := s.SubscribeDoc("menuData", func(value json.RawMessage, err error) {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		got = append(got, string(value))
	})

	// No initial callback for an absent key.
	if len(got) != 0 {
		t.Fatalf("expected no initial delivery, got %v", got)
	}

	s.SetDoc(ctx, "menuData", json.RawMessage(`1`))
	s.SetDoc(ctx, "menuData", json.RawMessage(`2`))
	if len(got) != 2 || got[1] != "2" {
		t.Fatalf("deliveries = %v", got)
	}

	unsub()
	s.SetDoc(ctx, "menuData", json.RawMessage(`3`))
	if len(got) != 2 {
		t.Error("delivery after unsubscribe")
	}

	// A fresh subscriber gets the current value immediately.
	var initial string
	s.SubscribeDoc("menuData", func(value json.RawMessage, err error) {
		initial = string(value)
	})
	if initial != "3" {
		t.Errorf("initial delivery = %s, want 3", initial)
	}
}

func TestMediaRootSeeded(t *testing.T) {
	s := New()

	snap, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	root, ok := snap.Items[model.MediaRootID]
	if !ok || root.Kind != enum.MediaKindFolder {
		t.Fatalf("root = %+v, ok = %v", root, ok)
	}
}

func TestMediaSubscribeAndBlobs(t *testing.T) {
	s := New()
	ctx := context.Background()

	var last store.MediaSnapshot
	count := 0
	unsub := s.SubscribeMedia(func(snap store.MediaSnapshot, err error) {
		last = snap
		count++
	})
	defer unsub()

	if count != 1 {
		t.Fatalf("initial deliveries = %d, want 1", count)
	}

	url, err := s.UploadBlob(ctx, "file-1", "image/png", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("UploadBlob: %v", err)
	}
	if url == "" {
		t.Fatal("expected a blob URL")
	}
	if got := last.ImageMap["file-1"]; got != url {
		t.Errorf("imageMap URL = %s, want %s", got, url)
	}

	data, mimeType, err := s.GetBlob(ctx, "file-1")
	if err != nil || mimeType != "image/png" || len(data) != 3 {
		t.Errorf("GetBlob = %v/%s/%v", data, mimeType, err)
	}

	if err := s.DeleteBlob(ctx, "file-1"); err != nil {
		t.Fatalf("DeleteBlob: %v", err)
	}
	if _, _, err := s.GetBlob(ctx, "file-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, ok := last.ImageMap["file-1"]; ok {
		t.Error("deleted blob still in broadcast imageMap")
	}
}

func TestHistoryAppendListNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.Append(ctx, model.SavedOrder{OrderNumber: "ORD-202501-001", Timestamp: "2025-01-01T00:00:00Z"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	second, err := s.Append(ctx, model.SavedOrder{OrderNumber: "ORD-202503-002", Timestamp: "2025-03-01T00:00:00Z"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct ids")
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second {
		t.Errorf("list order = %+v, want newest first", list)
	}
}

func TestHistorySetStatus(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, _ := s.Append(ctx, model.SavedOrder{Status: enum.OrderStatusSent, Timestamp: "2025-01-01T00:00:00Z"})

	var notified int
	unsub := s.SubscribeHistory(func(orders []model.SavedOrder, err error) { notified++ })
	defer unsub()

	if err := s.SetStatus(ctx, id, enum.OrderStatusCancelled); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, err := s.Get(ctx, id)
	if err != nil || got.Status != enum.OrderStatusCancelled {
		t.Errorf("status = %s (%v), want cancelled", got.Status, err)
	}
	if notified != 2 {
		t.Errorf("notifications = %d, want initial + change", notified)
	}

	if err := s.SetStatus(ctx, "missing", enum.OrderStatusSent); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
