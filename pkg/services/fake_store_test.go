package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path"
	"testing"
	"time"

	"photo-gallery/pkg/config"
	"photo-gallery/pkg/models"
)

type updateCall struct {
	listID string
	itemID int
	fields models.ItemFields
}

type uploadCall struct {
	folderPath string
	fileName   string
	data       []byte
	overwrite  bool
}

// fakeStore is an in-memory Store that records write calls
type fakeStore struct {
	folders []models.FolderRow
	items   []models.ItemRow

	listFoldersErr error
	listItemsErr   error
	uploadErr      error
	itemIDErr      error
	updateErr      error

	listCalls int
	uploads   []uploadCall
	updates   []updateCall
	nextID    int
}

func (f *fakeStore) ListFolders(_ context.Context, _ string) ([]models.FolderRow, error) {
	f.listCalls++
	if f.listFoldersErr != nil {
		return nil, f.listFoldersErr
	}
	return append([]models.FolderRow(nil), f.folders...), nil
}

func (f *fakeStore) ListItems(_ context.Context, _ string) ([]models.ItemRow, error) {
	if f.listItemsErr != nil {
		return nil, f.listItemsErr
	}
	return append([]models.ItemRow(nil), f.items...), nil
}

func (f *fakeStore) UploadFile(_ context.Context, folderPath, fileName string, data []byte, overwrite bool) (models.UploadResult, error) {
	f.uploads = append(f.uploads, uploadCall{folderPath, fileName, data, overwrite})
	if f.uploadErr != nil {
		return models.UploadResult{}, f.uploadErr
	}
	return models.UploadResult{ServerRelativeURL: folderPath + "/" + fileName}, nil
}

func (f *fakeStore) ItemIDForFile(_ context.Context, serverRelativeURL string) (int, error) {
	if f.itemIDErr != nil {
		return 0, f.itemIDErr
	}
	if f.nextID == 0 {
		f.nextID = 100
	}
	f.nextID++
	f.items = append(f.items, models.ItemRow{
		ID:          f.nextID,
		FileRef:     serverRelativeURL,
		FileLeafRef: path.Base(serverRelativeURL),
	})
	return f.nextID, nil
}

func (f *fakeStore) UpdateListItem(_ context.Context, listID string, itemID int, fields models.ItemFields) error {
	f.updates = append(f.updates, updateCall{listID, itemID, fields})
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].Title = fields.Title
			f.items[i].Description = fields.Description
			f.items[i].CopyrightInfo = fields.Copyright
		}
	}
	return nil
}

const (
	landscapesGUID = "00000000-000b-4000-8000-000000000000"
	cityGUID       = "00000000-0016-4000-8000-000000000000"
	siteBase       = "https://contoso.sharepoint.com/sites/gallery/webstudio/PublishingImages"
)

var errBoom = errors.New("boom")

func testConfig() *config.Config {
	return &config.Config{
		Backend:        config.BackendSharePoint,
		SiteURL:        "https://contoso.sharepoint.com/sites/gallery/webstudio",
		SiteRelative:   "/sites/gallery/webstudio",
		LibraryName:    "PublishingImages",
		ListID:         "8a54a424-5c8f-4106-af7f-f5bed7b23c9d",
		Strategy:       config.StrategyPath,
		FolderIDSource: config.FolderIDFromGUID,
		PageSize:       2000,
		CacheTTL:       time.Minute,
	}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		folders: []models.FolderRow{
			{Name: "Landscapes", UniqueID: landscapesGUID},
			{Name: "City", UniqueID: cityGUID},
			{Name: "Forms", UniqueID: "11111111-1111-4111-8111-111111111111"},
			{Name: "_catalogs", UniqueID: "22222222-2222-4222-8222-222222222222"},
		},
		items: []models.ItemRow{
			{ID: 1, Title: "Misty Forest", FileLeafRef: "forest.jpg", EncodedAbsURL: siteBase + "/Landscapes/forest.jpg"},
			{ID: 2, Title: "City Street at Night", FileLeafRef: "street.PNG", EncodedAbsURL: siteBase + "/City/street.PNG"},
			{ID: 3, Title: "Loose", FileLeafRef: "loose.webp", FileRef: "/sites/gallery/webstudio/PublishingImages/loose.webp"},
			{ID: 4, Title: "Notes", FileLeafRef: "notes.docx", EncodedAbsURL: siteBase + "/City/notes.docx"},
		},
	}
}

func newTestService(t *testing.T, store *fakeStore) *Service {
	t.Helper()
	svc, err := NewService(testConfig(), store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

// pngDataURI returns a small, decodable PNG as a data-URI
func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
