package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"photo-gallery/pkg/config"
	"photo-gallery/pkg/models"
)

// Store is the remote document library and list the gallery reads from and writes to
type Store interface {
	ListFolders(ctx context.Context, libraryPath string) ([]models.FolderRow, error)
	ListItems(ctx context.Context, listID string) ([]models.ItemRow, error)
	UploadFile(ctx context.Context, folderPath, fileName string, data []byte, overwrite bool) (models.UploadResult, error)
	ItemIDForFile(ctx context.Context, serverRelativeURL string) (int, error)
	UpdateListItem(ctx context.Context, listID string, itemID int, fields models.ItemFields) error
}

var imageExtensionRegex = regexp.MustCompile(`(?i)\.(jpeg|jpg|png|gif|webp)$`)

// Reader turns remote folder entries and list rows into a catalog snapshot
type Reader struct {
	store          Store
	libraryPath    string
	listID         string
	folderIDSource string
	resolver       Resolver
}

// NewReader creates a catalog reader for one gallery
func NewReader(store Store, cfg *config.Config, resolver Resolver) *Reader {
	return &Reader{
		store:          store,
		libraryPath:    cfg.LibraryPath(),
		listID:         cfg.ListID,
		folderIDSource: cfg.FolderIDSource,
		resolver:       resolver,
	}
}

// FetchCatalog reads folders and images from the remote store. It returns a
// fresh snapshot and never touches state held by the caller.
func (r *Reader) FetchCatalog(ctx context.Context) (models.Catalog, error) {
	folderRows, err := r.store.ListFolders(ctx, r.libraryPath)
	if err != nil {
		return models.Catalog{}, &RemoteFetchError{Op: "list folders", Err: err}
	}

	folders, err := r.mapFolders(folderRows)
	if err != nil {
		return models.Catalog{}, &RemoteFetchError{Op: "map folders", Err: err}
	}

	itemRows, err := r.store.ListItems(ctx, r.listID)
	if err != nil {
		return models.Catalog{}, &RemoteFetchError{Op: "list items", Err: err}
	}

	images := make([]models.Image, 0, len(itemRows))
	for _, row := range itemRows {
		fileURL := row.EncodedAbsURL
		if fileURL == "" {
			fileURL = row.FileRef
		}
		if !IsImageFile(fileURL) {
			continue
		}
		if row.ID <= 0 {
			return models.Catalog{}, &RemoteFetchError{
				Op:  "map items",
				Err: fmt.Errorf("row for %q has no item id", fileURL),
			}
		}

		image := models.Image{
			ID:          row.ID,
			Src:         fileURL,
			Name:        row.FileLeafRef,
			Title:       row.Title,
			Description: row.Description,
			Copyright:   row.CopyrightInfo,
			Width:       row.ImageWidth,
			Height:      row.ImageHeight,
		}
		if id, ok := r.resolver.Resolve(fileURL, folders); ok {
			image.FolderID = &id
		}
		images = append(images, image)
	}

	return models.Catalog{Folders: folders, Images: images}, nil
}

func (r *Reader) mapFolders(rows []models.FolderRow) ([]models.Folder, error) {
	folders := make([]models.Folder, 0, len(rows))
	seenNames := make(map[string]bool)
	seenIDs := make(map[int]bool)

	for _, row := range rows {
		if row.Name == "" {
			return nil, fmt.Errorf("folder row %q has no name", row.ServerRelativeURL)
		}
		if IsSystemFolder(row.Name) {
			continue
		}

		var id int
		if r.folderIDSource == config.FolderIDFromItem {
			if row.ItemID <= 0 {
				return nil, fmt.Errorf("folder %q has no item id", row.Name)
			}
			id = row.ItemID
		} else {
			var err error
			id, err = GUIDToNumber(row.UniqueID)
			if err != nil {
				return nil, fmt.Errorf("folder %q: %w", row.Name, err)
			}
		}

		key := strings.ToLower(row.Name)
		if seenNames[key] || seenIDs[id] {
			log.Printf("Skipping duplicate folder %q (id %d)", row.Name, id)
			continue
		}
		seenNames[key] = true
		seenIDs[id] = true

		folders = append(folders, models.Folder{ID: id, Name: row.Name})
	}
	return folders, nil
}

// IsSystemFolder reports whether a library entry is reserved by the platform
func IsSystemFolder(name string) bool {
	return name == "Forms" || strings.HasPrefix(name, "_")
}

// IsImageFile reports whether a file URL carries a known image extension
func IsImageFile(fileURL string) bool {
	return fileURL != "" && imageExtensionRegex.MatchString(fileURL)
}

// GUIDToNumber projects the leading 12 hex digits of a unique id onto an integer.
// Zero is reserved for "all images" and is rejected.
func GUIDToNumber(guid string) (int, error) {
	parsed, err := uuid.Parse(guid)
	if err != nil {
		return 0, fmt.Errorf("invalid unique id %q: %w", guid, err)
	}
	hex := strings.ReplaceAll(parsed.String(), "-", "")
	n, err := strconv.ParseInt(hex[:12], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid unique id %q: %w", guid, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("unique id %q projects onto reserved id 0", guid)
	}
	return int(n), nil
}
