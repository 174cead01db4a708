package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"photo-gallery/pkg/config"
	"photo-gallery/pkg/models"
)

const catalogCacheKey = "catalog"

// Service handles the gallery catalog, its view state and the save flow
type Service struct {
	config       *config.Config
	store        Store
	reader       *Reader
	catalogCache *cache.Cache
	mu           sync.RWMutex
	catalog      models.Catalog
	state        ViewState
	lastError    string
}

// NewService creates a service for one gallery session. The store handle is
// shared by the reader and the save flow for the lifetime of the service.
func NewService(cfg *config.Config, store Store) (*Service, error) {
	resolver, err := NewResolver(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Service{
		config:       cfg,
		store:        store,
		reader:       NewReader(store, cfg, resolver),
		catalogCache: cache.New(ttl, 2*ttl),
	}, nil
}

// FetchCatalog reads a fresh snapshot from the remote store without installing it
func (s *Service) FetchCatalog(ctx context.Context) (models.Catalog, error) {
	return s.reader.FetchCatalog(ctx)
}

// Refresh re-fetches the catalog and installs it. On failure the previous
// catalog stays displayed and the error is kept for the banner.
func (s *Service) Refresh(ctx context.Context) (models.Catalog, error) {
	log.Println("Getting Catalog")

	catalog, err := s.reader.FetchCatalog(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.Printf("Data fetching error: %v", err)
		s.lastError = err.Error()
		return s.catalog, err
	}

	s.catalog = catalog
	s.lastError = ""
	s.catalogCache.Set(catalogCacheKey, catalog, cache.DefaultExpiration)
	log.Printf("Catalog loaded: %d folders, %d images", len(catalog.Folders), len(catalog.Images))
	return catalog, nil
}

// Catalog returns the installed catalog, re-fetching when the cached copy expired
func (s *Service) Catalog(ctx context.Context) (models.Catalog, error) {
	s.mu.RLock()
	if cached, found := s.catalogCache.Get(catalogCacheKey); found {
		s.mu.RUnlock()
		log.Println("Using Cached Catalog")
		return cached.(models.Catalog), nil
	}
	s.mu.RUnlock()

	return s.Refresh(ctx)
}

// View returns the projection of the current catalog under the current view state
func (s *Service) View(ctx context.Context) models.View {
	// Fetch errors are recorded in lastError and shown in the banner.
	_, _ = s.Catalog(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	view := s.state.Project(s.catalog)
	view.Error = s.lastError
	return view
}

// Image returns a catalog image by id
func (s *Service) Image(ctx context.Context, id int) (models.Image, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil && len(catalog.Images) == 0 {
		return models.Image{}, err
	}
	for _, image := range catalog.Images {
		if image.ID == id {
			return image, nil
		}
	}
	return models.Image{}, fmt.Errorf("%w: %d", ErrImageNotFound, id)
}

// FolderByName finds a catalog folder by case-insensitive name
func (s *Service) FolderByName(ctx context.Context, name string) (models.Folder, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil && len(catalog.Folders) == 0 {
		return models.Folder{}, err
	}
	for _, f := range catalog.Folders {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return models.Folder{}, fmt.Errorf("%w: %s", ErrFolderNotFound, name)
}

// OpenAddModal opens the editor for a new image
func (s *Service) OpenAddModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.OpenAddModal()
}

// OpenEditModal opens the editor for an existing image
func (s *Service) OpenEditModal(ctx context.Context, id int) error {
	image, err := s.Image(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.OpenEditModal(image)
	return nil
}

// CloseModal cancels adding or editing
func (s *Service) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CloseModal()
}

// SelectFolder sets the folder filter
func (s *Service) SelectFolder(folderID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectFolder(folderID)
}

// SetSearchQuery sets the title filter
func (s *Service) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetSearchQuery(query)
}

// SaveImage uploads a data-URI image into its folder and writes its metadata.
// On success the catalog is re-fetched and the modal closed; on failure the
// modal and the installed catalog are left untouched.
func (s *Service) SaveImage(ctx context.Context, draft models.ImageDraft) error {
	s.mu.RLock()
	folders := s.catalog.Folders
	s.mu.RUnlock()

	var folder *models.Folder
	for i := range folders {
		if folders[i].ID == draft.FolderID {
			folder = &folders[i]
			break
		}
	}
	if folder == nil {
		return &SaveFailedError{Step: "resolve folder", Err: fmt.Errorf("%w: id %d", ErrFolderNotFound, draft.FolderID)}
	}

	if !IsDataURI(draft.Src) {
		return &SaveFailedError{Step: "check source", Err: ErrInvalidImageSource}
	}
	if draft.Name == "" {
		return &SaveFailedError{Step: "check source", Err: ErrMissingFileName}
	}
	source, err := DecodeImageSource(draft.Src)
	if err != nil {
		return &SaveFailedError{Step: "decode source", Err: err}
	}

	folderPath := s.config.LibraryPath() + "/" + folder.Name
	log.Printf("Uploading image: %s to %s (%dx%d, %d bytes)", draft.Name, folderPath, source.Width, source.Height, len(source.Data))

	result, err := s.store.UploadFile(ctx, folderPath, draft.Name, source.Data, true)
	if err != nil {
		return &SaveFailedError{Step: "upload", Err: err}
	}

	itemID, err := s.store.ItemIDForFile(ctx, result.ServerRelativeURL)
	if err != nil {
		return &SaveFailedError{Step: "resolve item", Err: err}
	}

	fields := models.ItemFields{
		Title:       draft.Title,
		Description: draft.Description,
		Copyright:   draft.Copyright,
		Width:       source.Width,
		Height:      source.Height,
	}
	if err := s.store.UpdateListItem(ctx, s.config.ListID, itemID, fields); err != nil {
		return &SaveFailedError{Step: "update metadata", Err: err}
	}

	log.Printf("Saved image %s as item %d", result.ServerRelativeURL, itemID)

	s.mu.Lock()
	s.catalogCache.Flush()
	s.state.CloseModal()
	s.mu.Unlock()

	if _, err := s.Refresh(ctx); err != nil {
		return err
	}
	return nil
}
