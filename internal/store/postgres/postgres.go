// Package postgres is the production store backend. Change subscriptions
// are served by in-process fan-out after each committed write, which is
// sufficient for the single-instance deployment this service targets.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nidys-catering/api/internal/enum"
	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// Store implements store.Store on a Postgres pool.
type Store struct {
	pool *pgxpool.Pool

	mu          sync.Mutex
	docSubs     map[string]map[int]store.DocFunc
	mediaSubs   map[int]store.MediaFunc
	historySubs map[int]store.HistoryFunc
	nextSub     int
}

// New connects, applies the schema, and guarantees the media root folder.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{
		pool:        pool,
		docSubs:     make(map[string]map[int]store.DocFunc),
		mediaSubs:   make(map[int]store.MediaFunc),
		historySubs: make(map[int]store.HistoryFunc),
	}
	if err := s.ensureRoot(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

func (s *Store) ensureRoot(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO media_items (id, name, kind, children)
		VALUES ($1, 'Media Library', $2, '{}')
		ON CONFLICT (id) DO NOTHING`,
		model.MediaRootID, enum.MediaKindFolder)
	if err != nil {
		return fmt.Errorf("ensure media root: %w", err)
	}
	return nil
}

// --- Documents ---

func (s *Store) GetDoc(ctx context.Context, key string) (json.RawMessage, error) {
	var value json.RawMessage
	err := s.pool.QueryRow(ctx, `SELECT value FROM documents WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get doc %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetDoc(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("set doc %s: %w", key, err)
	}
	s.notifyDoc(key, value)
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
	s.mu.Unlock()

	current, err := s.GetDoc(context.Background(), key)
	if err == nil {
		fn(current, nil)
	} else if !errors.Is(err, store.ErrNotFound) {
		fn(nil, err)
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.docSubs[key], id)
	}
}

func (s *Store) notifyDoc(key string, value json.RawMessage) {
	s.mu.Lock()
	subs := make([]store.DocFunc, 0, len(s.docSubs[key]))
	for _, fn := range s.docSubs[key] {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(append(json.RawMessage(nil), value...), nil)
	}
}

// --- Media ---

func (s *Store) PutItem(ctx context.Context, item model.MediaItem) error {
	children := item.Children
	if children == nil {
		children = []string{}
	}
	parent := any(nil)
	if item.ParentID != "" {
		parent = item.ParentID
	}
	mime := any(nil)
	if item.MimeType != "" {
		mime = item.MimeType
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO media_items (id, name, kind, parent_id, children, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			parent_id = EXCLUDED.parent_id,
			children = EXCLUDED.children,
			mime_type = EXCLUDED.mime_type`,
		item.ID, item.Name, item.Kind, parent, children, mime)
	if err != nil {
		return fmt.Errorf("put media item %s: %w", item.ID, err)
	}
	s.notifyMedia(ctx)
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM media_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete media item %s: %w", id, err)
	}
	s.notifyMedia(ctx)
	return nil
}

func (s *Store) UploadBlob(ctx context.Context, id, mimeType string, data []byte) (string, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO media_blobs (id, mime_type, data) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET mime_type = EXCLUDED.mime_type, data = EXCLUDED.data`,
		id, mimeType, data)
	if err != nil {
		return "", fmt.Errorf("upload blob %s: %w", id, err)
	}
	s.notifyMedia(ctx)
	return blobURL(id), nil
}

func (s *Store) DeleteBlob(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM media_blobs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete blob %s: %w", id, err)
	}
	s.notifyMedia(ctx)
	return nil
}

func (s *Store) GetBlob(ctx context.Context, id string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := s.pool.QueryRow(ctx, `SELECT data, mime_type FROM media_blobs WHERE id = $1`, id).Scan(&data, &mime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", store.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("get blob %s: %w", id, err)
	}
	return data, mime, nil
}

func (s *Store) Snapshot(ctx context.Context) (store.MediaSnapshot, error) {
	snap := store.MediaSnapshot{
		Items:    make(map[string]model.MediaItem),
		ImageMap: make(map[string]string),
	}

	rows, err := s.pool.Query(ctx, `SELECT id, name, kind, parent_id, children, mime_type FROM media_items`)
	if err != nil {
		return store.MediaSnapshot{}, fmt.Errorf("load media items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item model.MediaItem
		var parent, mime *string
		if err := rows.Scan(&item.ID, &item.Name, &item.Kind, &parent, &item.Children, &mime); err != nil {
			return store.MediaSnapshot{}, fmt.Errorf("scan media item: %w", err)
		}
		if parent != nil {
			item.ParentID = *parent
		}
		if mime != nil {
			item.MimeType = *mime
		}
		snap.Items[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return store.MediaSnapshot{}, fmt.Errorf("load media items: %w", err)
	}

	blobRows, err := s.pool.Query(ctx, `SELECT id FROM media_blobs`)
	if err != nil {
		return store.MediaSnapshot{}, fmt.Errorf("load blob ids: %w", err)
	}
	defer blobRows.Close()
	for blobRows.Next() {
		var id string
		if err := blobRows.Scan(&id); err != nil {
			return store.MediaSnapshot{}, fmt.Errorf("scan blob id: %w", err)
		}
		snap.ImageMap[id] = blobURL(id)
	}
	if err := blobRows.Err(); err != nil {
		return store.MediaSnapshot{}, fmt.Errorf("load blob ids: %w", err)
	}

	return snap, nil
}

func (s *Store) SubscribeMedia(fn store.MediaFunc) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.mediaSubs[id] = fn
	s.mu.Unlock()

	fn(s.Snapshot(context.Background()))
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.mediaSubs, id)
	}
}

func (s *Store) notifyMedia(ctx context.Context) {
	s.mu.Lock()
	subs := make([]store.MediaFunc, 0, len(s.mediaSubs))
	for _, fn := range s.mediaSubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	if len(subs) == 0 {
		return
	}

	snap, err := s.Snapshot(ctx)
	for _, fn := range subs {
		if err != nil {
			fn(store.MediaSnapshot{}, err)
			continue
		}
		fn(snap.Clone(), nil)
	}
}

func blobURL(id string) string { return "/media/" + id + "/blob" }

// --- OrderHistory ---

func (s *Store) Append(ctx context.Context, order model.SavedOrder) (string, error) {
	order.ID = uuid.NewString()
	ts, err := time.Parse(time.RFC3339, order.Timestamp)
	if err != nil {
		ts = time.Now()
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO order_snapshots (id, order_number, ts, status, payload)
		VALUES ($1, $2, $3, $4, $5)`,
		order.ID, order.OrderNumber, ts, order.Status, payload)
	if err != nil {
		return "", fmt.Errorf("append snapshot: %w", err)
	}
	s.notifyHistory(ctx)
	return order.ID, nil
}

func (s *Store) List(ctx context.Context) ([]model.SavedOrder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, status, payload FROM order_snapshots ORDER BY ts DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var orders []model.SavedOrder
	for rows.Next() {
		var id, status string
		var payload []byte
		if err := rows.Scan(&id, &status, &payload); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		var order model.SavedOrder
		if err := json.Unmarshal(payload, &order); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
		}
		order.ID = id
		order.Status = status
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return orders, nil
}

func (s *Store) Get(ctx context.Context, id string) (model.SavedOrder, error) {
	var status string
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT status, payload FROM order_snapshots WHERE id = $1`, id).
		Scan(&status, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SavedOrder{}, store.ErrNotFound
	}
	if err != nil {
		return model.SavedOrder{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	var order model.SavedOrder
	if err := json.Unmarshal(payload, &order); err != nil {
		return model.SavedOrder{}, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	order.ID = id
	order.Status = status
	return order, nil
}

func (s *Store) SetStatus(ctx context.Context, id, status string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE order_snapshots SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set snapshot status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	s.notifyHistory(ctx)
	return nil
}

func (s *Store) SubscribeHistory(fn store.HistoryFunc) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.historySubs[id] = fn
	s.mu.Unlock()

	fn(s.List(context.Background()))
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.historySubs, id)
	}
}

func (s *Store) notifyHistory(ctx context.Context) {
	s.mu.Lock()
	subs := make([]store.HistoryFunc, 0, len(s.historySubs))
	for _, fn := range s.historySubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	if len(subs) == 0 {
		return
	}

	list, err := s.List(ctx)
	for _, fn := range subs {
		fn(list, err)
	}
}
