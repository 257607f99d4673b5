// Package store defines the remote persistence boundary: keyed documents
// with merge writes, the hierarchical media object store, and the
// append-only order snapshot log. Every collection supports a live
// subscription that delivers the full current state on registration and on
// every subsequent change, and returns an unsubscribe handle.
//
// The contract is eventually consistent: a locally issued mutation and the
// next incoming snapshot have no ordering guarantee beyond
// last-snapshot-wins, and callers must not assume synchronous
// read-after-write across implementations.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nidys-catering/api/internal/model"
)

// ErrNotFound is returned when a key, item, or snapshot does not exist.
var ErrNotFound = errors.New("not found")

// DocFunc receives the full current document value, or an error when the
// underlying read failed. On error the previous value remains canonical.
type DocFunc func(value json.RawMessage, err error)

// Documents is the keyed document store (menu catalog, themes, app title,
// active theme).
type Documents interface {
	GetDoc(ctx context.Context, key string) (json.RawMessage, error)
	SetDoc(ctx context.Context, key string, value json.RawMessage) error
	// SubscribeDoc registers fn for the key. fn is invoked with the current
	// value before SubscribeDoc returns (skipped when the key is absent),
	// then on every change until the returned handle is called.
	SubscribeDoc(key string, fn DocFunc) (unsubscribe func())
}

// MediaSnapshot is the full media collection republished on every change:
// all item metadata plus a map from file id to a displayable URL.
type MediaSnapshot struct {
	Items    map[string]model.MediaItem
	ImageMap map[string]string
}

// Clone returns an independent copy of the snapshot.
func (s MediaSnapshot) Clone() MediaSnapshot {
	c := MediaSnapshot{
		Items:    make(map[string]model.MediaItem, len(s.Items)),
		ImageMap: make(map[string]string, len(s.ImageMap)),
	}
	for id, item := range s.Items {
		c.Items[id] = item.Clone()
	}
	for id, url := range s.ImageMap {
		c.ImageMap[id] = url
	}
	return c
}

// MediaFunc receives the full media snapshot, or an error when the reload
// failed.
type MediaFunc func(snap MediaSnapshot, err error)

// Media is the hierarchical object store behind the media tree.
// Implementations guarantee the root folder (model.MediaRootID) exists.
type Media interface {
	// PutItem creates or replaces item metadata.
	PutItem(ctx context.Context, item model.MediaItem) error
	// DeleteItem removes item metadata. Missing ids are not an error.
	DeleteItem(ctx context.Context, id string) error
	// UploadBlob stores binary data for a file id and returns its
	// displayable URL.
	UploadBlob(ctx context.Context, id, mimeType string, data []byte) (url string, err error)
	// DeleteBlob frees binary data for a file id. Missing ids are not an
	// error.
	DeleteBlob(ctx context.Context, id string) error
	// GetBlob returns the stored binary data and MIME type for a file id.
	GetBlob(ctx context.Context, id string) (data []byte, mimeType string, err error)
	// Snapshot returns the full current collection.
	Snapshot(ctx context.Context) (MediaSnapshot, error)
	// SubscribeMedia registers fn, invoking it with the current snapshot
	// before returning, then on every change.
	SubscribeMedia(fn MediaFunc) (unsubscribe func())
}

// HistoryFunc receives all snapshots newest first, or an error when the
// reload failed.
type HistoryFunc func(orders []model.SavedOrder, err error)

// OrderHistory is the append-only, time-ordered snapshot log.
type OrderHistory interface {
	// Append stores the snapshot and returns its assigned id.
	Append(ctx context.Context, order model.SavedOrder) (string, error)
	// List returns all snapshots ordered by timestamp, newest first.
	List(ctx context.Context) ([]model.SavedOrder, error)
	// Get returns one snapshot by id.
	Get(ctx context.Context, id string) (model.SavedOrder, error)
	// SetStatus updates the status of an existing snapshot.
	SetStatus(ctx context.Context, id, status string) error
	// SubscribeHistory registers fn, invoking it with the current list
	// before returning, then on every change.
	SubscribeHistory(fn HistoryFunc) (unsubscribe func())
}

// Store bundles the three collections one backend provides.
type Store interface {
	Documents
	Media
	OrderHistory
}
