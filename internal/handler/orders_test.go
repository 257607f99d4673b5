package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/store/memory"
)

func newOrderFixture(t *testing.T) (chi.Router, *memory.Store, string) {
	t.Helper()
	st := memory.New()
	id, err := st.Append(context.Background(), model.SavedOrder{
		OrderNumber: "ORD-202507-001",
		Timestamp:   "2025-07-01T10:00:00Z",
		Status:      "sent",
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}

	r := chi.NewRouter()
	NewOrderHandler(st).RegisterRoutes(r)
	return r, st, id
}

func TestListOrders(t *testing.T) {
	r, _, _ := newOrderFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var orders []model.SavedOrder
	if err := json.NewDecoder(rec.Body).Decode(&orders); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(orders) != 1 || orders[0].OrderNumber != "ORD-202507-001" {
		t.Errorf("orders = %+v", orders)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	r, _, _ := newOrderFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/orders/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSetOrderStatus(t *testing.T) {
	r, st, id := newOrderFixture(t)

	req := httptest.NewRequest(http.MethodPatch, "/orders/"+id+"/status", strings.NewReader(`{"status":"cancelled"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got, err := st.Get(context.Background(), id)
	if err != nil || got.Status != "cancelled" {
		t.Errorf("stored status = %s (%v), want cancelled", got.Status, err)
	}
}

func TestSetOrderStatusRejectsUnknown(t *testing.T) {
	r, _, id := newOrderFixture(t)

	req := httptest.NewRequest(http.MethodPatch, "/orders/"+id+"/status", strings.NewReader(`{"status":"teleported"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
