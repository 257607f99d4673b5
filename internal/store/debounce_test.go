package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// mockDocs implements Documents and records every SetDoc call.
type mockDocs struct {
	mu     sync.Mutex
	writes []json.RawMessage
	setErr error
}

func (m *mockDocs) GetDoc(ctx context.Context, key string) (json.RawMessage, error) {
	return nil, ErrNotFound
}

func (m *mockDocs) SetDoc(ctx context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.writes = append(m.writes, append(json.RawMessage(nil), value...))
	return nil
}

func (m *mockDocs) SubscribeDoc(key string, fn DocFunc) func() { return func() {} }

func (m *mockDocs) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

func (m *mockDocs) lastWrite() json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writes) == 0 {
		return nil
	}
	return m.writes[len(m.writes)-1]
}

func TestDebouncedWriterCoalesces(t *testing.T) {
	docs := &mockDocs{}
	saved := make(chan struct{}, 4)
	w := NewDebouncedWriter(docs, "menuData", 10*time.Millisecond, func() { saved <- struct{}{} })
	defer w.Stop()

	// A burst of writes lands as one remote write carrying the last value.
	w.Write(json.RawMessage(`"a"`))
	w.Write(json.RawMessage(`"b"`))
	w.Write(json.RawMessage(`"c"`))

	select {
	case <-saved:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for debounced write")
	}

	if got := docs.writeCount(); got != 1 {
		t.Errorf("write count = %d, want 1", got)
	}
	if got := string(docs.lastWrite()); got != `"c"` {
		t.Errorf("persisted value = %s, want \"c\"", got)
	}
}

func TestDebouncedWriterFlush(t *testing.T) {
	docs := &mockDocs{}
	w := NewDebouncedWriter(docs, "menuData", time.Hour, nil)
	defer w.Stop()

	w.Write(json.RawMessage(`"pending"`))
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := string(docs.lastWrite()); got != `"pending"` {
		t.Errorf("persisted value = %s, want \"pending\"", got)
	}

	// Nothing pending means nothing written.
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if got := docs.writeCount(); got != 1 {
		t.Errorf("write count = %d, want 1", got)
	}
}

func TestDebouncedWriterStopDropsPending(t *testing.T) {
	docs := &mockDocs{}
	w := NewDebouncedWriter(docs, "menuData", 10*time.Millisecond, nil)

	w.Write(json.RawMessage(`"dropped"`))
	w.Stop()

	time.Sleep(30 * time.Millisecond)
	if got := docs.writeCount(); got != 0 {
		t.Errorf("write count = %d, want 0 after Stop", got)
	}
}
