// Package memory is the in-process store backend. It backs the dev server
// and the test suite, and broadcasts snapshots to subscribers synchronously
// after every mutation.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/nidys-catering/api/internal/enum"
	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/store"

	"github.com/google/uuid"
)

// Store implements store.Store entirely in memory.
type Store struct {
	mu sync.Mutex

	docs    map[string]json.RawMessage
	docSubs map[string]map[int]store.DocFunc

	items     map[string]model.MediaItem
	blobs     map[string]blob
	mediaSubs map[int]store.MediaFunc

	orders      []model.SavedOrder
	historySubs map[int]store.HistoryFunc

	nextSub int
}

type blob struct {
	mimeType string
	data     []byte
}

// New creates an empty store with the media root folder in place.
func New() *Store {
	s := &Store{
		docs:        make(map[string]json.RawMessage),
		docSubs:     make(map[string]map[int]store.DocFunc),
		items:       make(map[string]model.MediaItem),
		blobs:       make(map[string]blob),
		mediaSubs:   make(map[int]store.MediaFunc),
		historySubs: make(map[int]store.HistoryFunc),
	}
	s.items[model.MediaRootID] = model.MediaItem{
		ID:       model.MediaRootID,
		Name:     "Media Library",
		Kind:     enum.MediaKindFolder,
		Children: []string{},
	}
	return s
}

// --- Documents ---

func (s *Store) GetDoc(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.docs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append(json.RawMessage(nil), value...), nil
}

func (s *Store) SetDoc(_ context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	s.docs[key] = append(json.RawMessage(nil), value...)
	subs := make([]store.DocFunc, 0, len(s.docSubs[key]))
	for _, fn := range s.docSubs[key] {
		subs = append(subs, fn)
	}
	current := append(json.RawMessage(nil), value...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(current, nil)
	}
	return nil
}

func (s *Store) SubscribeDoc(key string, fn store.DocFunc) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.docSubs[key] == nil {
		s.docSubs[key] = make(map[int]store.DocFunc)
	}
	s.docSubs[key][id] = fn
	current, ok := s.docs[key]
	if ok {
		current = append(json.RawMessage(nil), current...)
	}
	s.mu.Unlock()

	if ok {
		fn(current, nil)
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.docSubs[key], id)
	}
}

// --- Media ---

func (s *Store) PutItem(_ context.Context, item model.MediaItem) error {
	s.mu.Lock()
	s.items[item.ID] = item.Clone()
	subs, snap := s.mediaSubsAndSnapshotLocked()
	s.mu.Unlock()

	notifyMedia(subs, snap)
	return nil
}

func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	subs, snap := s.mediaSubsAndSnapshotLocked()
	s.mu.Unlock()

	notifyMedia(subs, snap)
	return nil
}

func (s *Store) UploadBlob(_ context.Context, id, mimeType string, data []byte) (string, error) {
	s.mu.Lock()
	s.blobs[id] = blob{mimeType: mimeType, data: append([]byte(nil), data...)}
	subs, snap := s.mediaSubsAndSnapshotLocked()
	s.mu.Unlock()

	notifyMedia(subs, snap)
	return blobURL(id), nil
}

func (s *Store) DeleteBlob(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.blobs, id)
	subs, snap := s.mediaSubsAndSnapshotLocked()
	s.mu.Unlock()

	notifyMedia(subs, snap)
	return nil
}

func (s *Store) GetBlob(_ context.Context, id string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[id]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	return append([]byte(nil), b.data...), b.mimeType, nil
}

func (s *Store) Snapshot(_ context.Context) (store.MediaSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

func (s *Store) SubscribeMedia(fn store.MediaFunc) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.mediaSubs[id] = fn
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap, nil)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.mediaSubs, id)
	}
}

func (s *Store) snapshotLocked() store.MediaSnapshot {
	snap := store.MediaSnapshot{
		Items:    make(map[string]model.MediaItem, len(s.items)),
		ImageMap: make(map[string]string, len(s.blobs)),
	}
	for id, item := range s.items {
		snap.Items[id] = item.Clone()
	}
	for id := range s.blobs {
		snap.ImageMap[id] = blobURL(id)
	}
	return snap
}

func (s *Store) mediaSubsAndSnapshotLocked() ([]store.MediaFunc, store.MediaSnapshot) {
	subs := make([]store.MediaFunc, 0, len(s.mediaSubs))
	for _, fn := range s.mediaSubs {
		subs = append(subs, fn)
	}
	return subs, s.snapshotLocked()
}

func notifyMedia(subs []store.MediaFunc, snap store.MediaSnapshot) {
	for _, fn := range subs {
		fn(snap.Clone(), nil)
	}
}

func blobURL(id string) string { return "/media/" + id + "/blob" }

// --- OrderHistory ---

func (s *Store) Append(_ context.Context, order model.SavedOrder) (string, error) {
	s.mu.Lock()
	order.ID = uuid.NewString()
	s.orders = append(s.orders, order.Clone())
	subs, list := s.historySubsAndListLocked()
	s.mu.Unlock()

	notifyHistory(subs, list)
	return order.ID, nil
}

func (s *Store) List(_ context.Context) ([]model.SavedOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(), nil
}

func (s *Store) Get(_ context.Context, id string) (model.SavedOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return model.SavedOrder{}, store.ErrNotFound
}

func (s *Store) SetStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	found := false
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	subs, list := s.historySubsAndListLocked()
	s.mu.Unlock()

	notifyHistory(subs, list)
	return nil
}

func (s *Store) SubscribeHistory(fn store.HistoryFunc) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.historySubs[id] = fn
	list := s.listLocked()
	s.mu.Unlock()

	fn(list, nil)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.historySubs, id)
	}
}

func (s *Store) listLocked() []model.SavedOrder {
	list := make([]model.SavedOrder, 0, len(s.orders))
	for _, o := range s.orders {
		list = append(list, o.Clone())
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp > list[j].Timestamp
	})
	return list
}

func (s *Store) historySubsAndListLocked() ([]store.HistoryFunc, []model.SavedOrder) {
	subs := make([]store.HistoryFunc, 0, len(s.historySubs))
	for _, fn := range s.historySubs {
		subs = append(subs, fn)
	}
	return subs, s.listLocked()
}

func notifyHistory(subs []store.HistoryFunc, list []model.SavedOrder) {
	for _, fn := range subs {
		copied := make([]model.SavedOrder, len(list))
		for i, o := range list {
			copied[i] = o.Clone()
		}
		fn(copied, nil)
	}
}
