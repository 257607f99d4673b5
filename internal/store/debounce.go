package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// DefaultDebounce is the delay between the last local change and the
// remote write for bulk documents (menu catalog, themes, app title).
const DefaultDebounce = 300 * time.Millisecond

// DebouncedWriter coalesces rapid writes to one document key: the caller's
// in-memory value updates immediately, the remote write happens once the
// burst settles. A failed remote write is logged and does not roll back the
// local value.
type DebouncedWriter struct {
	docs   Documents
	key    string
	delay  time.Duration
	onSave func()

	mu      sync.Mutex
	timer   *time.Timer
	pending json.RawMessage
}

// NewDebouncedWriter creates a writer for one document key. onSave may be
// nil; when set it runs after every confirmed remote write (the saving
// indicator hook).
func NewDebouncedWriter(docs Documents, key string, delay time.Duration, onSave func()) *DebouncedWriter {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &DebouncedWriter{docs: docs, key: key, delay: delay, onSave: onSave}
}

// Write schedules value for the remote store, replacing any pending value.
func (w *DebouncedWriter) Write(value json.RawMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = value
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flushPending)
}

func (w *DebouncedWriter) flushPending() {
	w.mu.Lock()
	value := w.pending
	w.pending = nil
	w.timer = nil
	w.mu.Unlock()

	if value == nil {
		return
	}
	if err := w.docs.SetDoc(context.Background(), w.key, value); err != nil {
		log.Printf("ERROR: debounced write %s: %v", w.key, err)
		return
	}
	if w.onSave != nil {
		w.onSave()
	}
}

// Flush writes any pending value immediately. Used on shutdown so a
// trailing edit is not lost to the debounce window.
func (w *DebouncedWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	value := w.pending
	w.pending = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	if value == nil {
		return nil
	}
	if err := w.docs.SetDoc(ctx, w.key, value); err != nil {
		return err
	}
	if w.onSave != nil {
		w.onSave()
	}
	return nil
}

// Stop cancels any pending write without flushing it.
func (w *DebouncedWriter) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
}
