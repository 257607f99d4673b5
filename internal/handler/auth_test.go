package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

func newAuthRouter(t *testing.T, password string) chi.Router {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	r := chi.NewRouter()
	NewAuthHandler(string(hashed), "test-secret").RegisterRoutes(r)
	return r
}

func TestLoginSuccess(t *testing.T) {
	r := newAuthRouter(t, "letmein")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"letmein"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken == "" || resp.Role != "ADMIN" {
		t.Errorf("response = %+v", resp)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r := newAuthRouter(t, "letmein")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"nope"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLoginMissingPassword(t *testing.T) {
	r := newAuthRouter(t, "letmein")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLoginNotConfigured(t *testing.T) {
	r := chi.NewRouter()
	NewAuthHandler("", "test-secret").RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"anything"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
