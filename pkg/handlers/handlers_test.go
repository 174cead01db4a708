package handlers

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"photo-gallery/pkg/models"
)

// recordingStore serves the memoryStore catalog and records writes
type recordingStore struct {
	memoryStore
	uploadedName string
	uploadedData []byte
	fields       models.ItemFields
}

func (s *recordingStore) UploadFile(_ context.Context, folderPath, fileName string, data []byte, _ bool) (models.UploadResult, error) {
	s.uploadedName = fileName
	s.uploadedData = data
	return models.UploadResult{ServerRelativeURL: folderPath + "/" + fileName}, nil
}

func (s *recordingStore) ItemIDForFile(context.Context, string) (int, error) {
	return 9, nil
}

func (s *recordingStore) UpdateListItem(_ context.Context, _ string, _ int, fields models.ItemFields) error {
	s.fields = fields
	return nil
}

func getPage(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	return rec.Body.String()
}

func postForm(t *testing.T, router http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("status = %d, location = %q (%s)", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestGalleryPageRenders(t *testing.T) {
	page := getPage(t, newTestRouter(t))

	for _, want := range []string{
		"Gallery: All Images",
		"Landscapes",
		"Sunset",
		"City Street at Night",
		"No description.",
		"Add New Image",
		`action="/modal/edit/1"`,
		`action="/select"`,
		`action="/search"`,
		`name="folderId" value="11"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page is missing %q", want)
		}
	}
	if strings.Contains(page, `name="title"`) {
		t.Error("editor rendered while no modal is open")
	}
}

func TestGalleryPageUntitledImage(t *testing.T) {
	router := newTestRouterWithStore(t, untitledStore{})
	page := getPage(t, router)
	if !strings.Contains(page, "Untitled") {
		t.Error("image without a title not shown as Untitled")
	}
}

// untitledStore serves one image without a title
type untitledStore struct{ memoryStore }

func (untitledStore) ListItems(context.Context, string) ([]models.ItemRow, error) {
	return []models.ItemRow{{ID: 3, FileLeafRef: "blank.jpg", FileRef: "/sites/s/PublishingImages/blank.jpg"}}, nil
}

func TestGalleryPageFolderAndSearchForms(t *testing.T) {
	router := newTestRouter(t)

	assertRedirect(t, postForm(t, router, "/select", url.Values{"folderId": {"11"}}))
	page := getPage(t, router)
	if !strings.Contains(page, "Gallery: Landscapes") || !strings.Contains(page, "Sunset") {
		t.Error("selected folder not shown")
	}
	if strings.Contains(page, "City Street at Night") {
		t.Error("image outside the selected folder shown")
	}

	assertRedirect(t, postForm(t, router, "/select", url.Values{"folderId": {"0"}}))
	assertRedirect(t, postForm(t, router, "/search", url.Values{"query": {"city"}}))
	page = getPage(t, router)
	if !strings.Contains(page, "City Street at Night") || strings.Contains(page, "Sunset") {
		t.Error("search filter not applied")
	}
	if !strings.Contains(page, `value="city"`) {
		t.Error("search box lost the query")
	}

	if rec := postForm(t, router, "/select", url.Values{"folderId": {"abc"}}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad folder id status = %d", rec.Code)
	}
}

func TestGalleryPageEditorForms(t *testing.T) {
	router := newTestRouter(t)

	assertRedirect(t, postForm(t, router, "/modal/edit/1", nil))
	page := getPage(t, router)
	for _, want := range []string{
		"Edit Image",
		`name="id" value="1"`,
		`name="title" value="Sunset"`,
		`value="11" selected`,
		`enctype="multipart/form-data"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("editor is missing %q", want)
		}
	}

	if rec := postForm(t, router, "/modal/edit/99", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown image status = %d", rec.Code)
	}

	assertRedirect(t, postForm(t, router, "/modal/close", nil))
	if page := getPage(t, router); strings.Contains(page, `name="title"`) {
		t.Error("editor still rendered after close")
	}

	assertRedirect(t, postForm(t, router, "/modal/add", nil))
	page = getPage(t, router)
	if !strings.Contains(page, `name="title" value=""`) || !strings.Contains(page, `value="11" selected`) {
		t.Error("add editor not rendered with the first folder preselected")
	}
}

func TestSaveImageFormWithoutFile(t *testing.T) {
	router := newTestRouter(t)
	getPage(t, router)
	assertRedirect(t, postForm(t, router, "/modal/add", nil))

	rec := postForm(t, router, "/images", url.Values{"folderId": {"11"}, "title": {"No file"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Could not save image") {
		t.Error("save failure not shown in the banner")
	}
	if !strings.Contains(body, `name="title"`) {
		t.Error("editor closed after a failed save")
	}

	if rec := postForm(t, router, "/images", url.Values{"folderId": {"x"}}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad folder id status = %d", rec.Code)
	}
}

func TestSaveImageFormUpload(t *testing.T) {
	store := &recordingStore{}
	router := newTestRouterWithStore(t, store)
	getPage(t, router)
	assertRedirect(t, postForm(t, router, "/modal/add", nil))

	data := pngBytes(t, 3, 2)
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for field, value := range map[string]string{"folderId": "11", "title": "Tiny", "copyright": "me"} {
		if err := form.WriteField(field, value); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="tiny pic.png"`)
	header.Set("Content-Type", "image/png")
	part, err := form.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	part.Write(data)
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/images", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assertRedirect(t, rec)

	if store.uploadedName != "tiny pic.png" || !bytes.Equal(store.uploadedData, data) {
		t.Errorf("uploaded %q (%d bytes)", store.uploadedName, len(store.uploadedData))
	}
	want := models.ItemFields{Title: "Tiny", Copyright: "me", Width: 3, Height: 2}
	if store.fields != want {
		t.Errorf("fields = %+v, want %+v", store.fields, want)
	}
	if page := getPage(t, router); strings.Contains(page, `name="title"`) {
		t.Error("editor still open after save")
	}
}
