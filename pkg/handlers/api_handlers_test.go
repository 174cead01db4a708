package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"photo-gallery/pkg/config"
	"photo-gallery/pkg/models"
	"photo-gallery/pkg/services"
)

// memoryStore serves a fixed catalog and accepts no writes
type memoryStore struct{}

func (memoryStore) ListFolders(context.Context, string) ([]models.FolderRow, error) {
	return []models.FolderRow{{Name: "Landscapes", UniqueID: "00000000-000b-4000-8000-000000000000"}}, nil
}

func (memoryStore) ListItems(context.Context, string) ([]models.ItemRow, error) {
	return []models.ItemRow{
		{ID: 1, Title: "Sunset", FileLeafRef: "sunset.jpg", FileRef: "/sites/s/PublishingImages/Landscapes/sunset.jpg"},
		{ID: 2, Title: "City Street at Night", FileLeafRef: "street.jpg", FileRef: "/sites/s/PublishingImages/street.jpg"},
	}, nil
}

func (memoryStore) UploadFile(context.Context, string, string, []byte, bool) (models.UploadResult, error) {
	panic("unexpected upload")
}

func (memoryStore) ItemIDForFile(context.Context, string) (int, error) {
	panic("unexpected item lookup")
}

func (memoryStore) UpdateListItem(context.Context, string, int, models.ItemFields) error {
	panic("unexpected update")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterWithStore(t, memoryStore{})
}

func newTestRouterWithStore(t *testing.T, store services.Store) http.Handler {
	t.Helper()
	cfg := &config.Config{
		SiteRelative:   "/sites/s",
		LibraryName:    "PublishingImages",
		ListID:         "list",
		Strategy:       config.StrategyPath,
		FolderIDSource: config.FolderIDFromGUID,
		CacheTTL:       time.Minute,
	}
	svc, err := services.NewService(cfg, store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	// pug resolves template names inside FsDir("."), so run from the repo
	// root and use the same relative path as the server entry points.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(filepath.Join("..", "..")); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	return New(svc, "./views/index.pug").Router()
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, models.View) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var view models.View
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("decode view: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, view
}

func TestViewAndFilters(t *testing.T) {
	router := newTestRouter(t)

	rec, view := do(t, router, http.MethodGet, "/api/view", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if view.SelectedFolderName != services.AllImagesName || len(view.FilteredImages) != 2 || len(view.Folders) != 1 {
		t.Errorf("view = %+v", view)
	}

	_, view = do(t, router, http.MethodPost, "/api/select", map[string]int{"folderId": 11})
	if view.SelectedFolderName != "Landscapes" || len(view.FilteredImages) != 1 || view.FilteredImages[0].ID != 1 {
		t.Errorf("folder view = %+v", view)
	}

	do(t, router, http.MethodPost, "/api/select", map[string]int{"folderId": 0})
	_, view = do(t, router, http.MethodPost, "/api/search", map[string]string{"query": "city"})
	if len(view.FilteredImages) != 1 || view.FilteredImages[0].ID != 2 {
		t.Errorf("search view = %+v", view.FilteredImages)
	}

	_, view = do(t, router, http.MethodPost, "/api/refresh", nil)
	if len(view.FilteredImages) != 1 || view.SearchQuery != "city" {
		t.Errorf("refresh reset the view state: %+v", view)
	}
}

func TestModalRoutes(t *testing.T) {
	router := newTestRouter(t)

	_, view := do(t, router, http.MethodPost, "/api/modal/add", nil)
	if view.Modal.Mode != models.ModalAdding {
		t.Errorf("mode = %s", view.Modal.Mode)
	}

	_, view = do(t, router, http.MethodPost, "/api/modal/edit/2", nil)
	if view.Modal.Mode != models.ModalEditing || view.Modal.EditingImage == nil || view.Modal.EditingImage.ID != 2 {
		t.Errorf("modal = %+v", view.Modal)
	}

	rec, _ := do(t, router, http.MethodPost, "/api/modal/edit/99", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown image status = %d", rec.Code)
	}

	rec, _ = do(t, router, http.MethodPost, "/api/modal/edit/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", rec.Code)
	}

	_, view = do(t, router, http.MethodPost, "/api/modal/close", nil)
	if view.Modal.Mode != models.ModalClosed || view.Modal.EditingImage != nil {
		t.Errorf("modal = %+v", view.Modal)
	}
}

func TestSaveImageValidationErrors(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodGet, "/api/view", nil)

	tests := []struct {
		name  string
		draft models.ImageDraft
	}{
		{"unknown folder", models.ImageDraft{FolderID: 5, Src: "data:image/png;base64,aGVsbG8=", Name: "a.png"}},
		{"remote source", models.ImageDraft{FolderID: 11, Src: "https://host/a.png", Name: "a.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := do(t, router, http.MethodPost, "/api/images", tt.draft)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Errorf("error body = %s", rec.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/images", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d", rec.Code)
	}
}
