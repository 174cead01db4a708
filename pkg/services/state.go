package services

import (
	"strings"

	"photo-gallery/pkg/models"
)

// AllImagesID is the folder id that disables folder filtering
const AllImagesID = 0

// AllImagesName is the gallery title shown when no folder is selected
const AllImagesName = "All Images"

// ViewState holds folder selection, search text and the editor modal.
// It is not safe for concurrent use; Service serialises access to it.
type ViewState struct {
	SelectedFolderID int
	SearchQuery      string
	IsModalOpen      bool
	EditingImage     *models.Image
}

// OpenAddModal switches to adding a new image
func (s *ViewState) OpenAddModal() {
	s.EditingImage = nil
	s.IsModalOpen = true
}

// OpenEditModal switches to editing the given image
func (s *ViewState) OpenEditModal(image models.Image) {
	s.EditingImage = &image
	s.IsModalOpen = true
}

// CloseModal returns to viewing from any state
func (s *ViewState) CloseModal() {
	s.IsModalOpen = false
	s.EditingImage = nil
}

// SelectFolder changes the folder filter; 0 shows all images
func (s *ViewState) SelectFolder(folderID int) {
	s.SelectedFolderID = folderID
}

// SetSearchQuery changes the title filter
func (s *ViewState) SetSearchQuery(query string) {
	s.SearchQuery = query
}

// Mode returns the current modal mode
func (s *ViewState) Mode() models.ModalMode {
	switch {
	case !s.IsModalOpen:
		return models.ModalClosed
	case s.EditingImage != nil:
		return models.ModalEditing
	default:
		return models.ModalAdding
	}
}

// FilterImages applies the folder and search filters, keeping source order
func (s *ViewState) FilterImages(images []models.Image) []models.Image {
	query := strings.ToLower(strings.TrimSpace(s.SearchQuery))
	filtered := make([]models.Image, 0, len(images))
	for _, image := range images {
		if s.SelectedFolderID != AllImagesID {
			if image.FolderID == nil || *image.FolderID != s.SelectedFolderID {
				continue
			}
		}
		if query != "" && !strings.Contains(strings.ToLower(image.Title), query) {
			continue
		}
		filtered = append(filtered, image)
	}
	return filtered
}

// SelectedFolderName returns the gallery title for the current selection
func (s *ViewState) SelectedFolderName(folders []models.Folder) string {
	if s.SelectedFolderID == AllImagesID {
		return AllImagesName
	}
	for _, f := range folders {
		if f.ID == s.SelectedFolderID {
			return f.Name
		}
	}
	return ""
}

// Project builds the read-only view of a catalog under this state
func (s *ViewState) Project(catalog models.Catalog) models.View {
	view := models.View{
		Folders:            catalog.Folders,
		FilteredImages:     s.FilterImages(catalog.Images),
		SelectedFolderID:   s.SelectedFolderID,
		SelectedFolderName: s.SelectedFolderName(catalog.Folders),
		SearchQuery:        s.SearchQuery,
		Modal:              models.ModalState{Mode: s.Mode()},
	}
	if s.EditingImage != nil {
		image := *s.EditingImage
		view.Modal.EditingImage = &image
	}
	if view.Folders == nil {
		view.Folders = []models.Folder{}
	}
	return view
}
