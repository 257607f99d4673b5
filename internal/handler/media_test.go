package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nidys-catering/api/internal/media"
	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/store/memory"
)

func newMediaFixture(t *testing.T) (chi.Router, *media.Manager) {
	t.Helper()
	st := memory.New()
	manager := media.NewManager(st, media.NewTree(), nil)
	t.Cleanup(manager.Watch())

	r := chi.NewRouter()
	h := NewMediaHandler(manager, st)
	h.RegisterPublicRoutes(r)
	h.RegisterAdminRoutes(r)
	return r, manager
}

func uploadRequest(t *testing.T, parentID, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("parentId", parentID); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/media/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadAndServeBlob(t *testing.T) {
	r, _ := newMediaFixture(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, model.MediaRootID, "hero.png", []byte("png-bytes")))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body)
	}
	var item model.MediaItem
	if err := json.NewDecoder(rec.Body).Decode(&item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.Name != "hero.png" || item.ParentID != model.MediaRootID {
		t.Errorf("item = %+v", item)
	}

	req := httptest.NewRequest(http.MethodGet, "/media/"+item.ID+"/blob", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "png-bytes" {
		t.Errorf("blob status = %d, body = %q", rec.Code, rec.Body.String())
	}
}

func TestBlobNotFound(t *testing.T) {
	r, _ := newMediaFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/media/missing/blob", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCreateFolderAndChildren(t *testing.T) {
	r, _ := newMediaFixture(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/media/folders", strings.NewReader(`{"name":"Gallery"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var folder model.MediaItem
	if err := json.NewDecoder(rec.Body).Decode(&folder); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/media/"+model.MediaRootID+"/children", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var children []model.MediaItem
	if err := json.NewDecoder(rec.Body).Decode(&children); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(children) != 1 || children[0].ID != folder.ID {
		t.Errorf("children = %+v", children)
	}
}

func TestMediaErrorMapping(t *testing.T) {
	r, manager := newMediaFixture(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"delete root refused", http.MethodDelete, "/media/" + model.MediaRootID, "", http.StatusConflict},
		{"rename missing", http.MethodPatch, "/media/missing", `{"name":"x"}`, http.StatusNotFound},
		{"move missing", http.MethodPost, "/media/missing/move", `{"parentId":"root"}`, http.StatusNotFound},
		{"duplicate missing", http.MethodPost, "/media/missing/duplicate", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}

	// A self-move is a cycle, reported as a bad request.
	folder, err := manager.AddFolder(context.Background(), "F1", model.MediaRootID)
	if err != nil {
		t.Fatalf("AddFolder: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/media/"+folder.ID+"/move", strings.NewReader(`{"parentId":"`+folder.ID+`"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("cycle move status = %d, want 400", rec.Code)
	}
}
