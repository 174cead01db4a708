package models

// Folder represents a gallery folder in the document library
type Folder struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Image represents an image file with its list item metadata
type Image struct {
	ID          int    `json:"id"`
	FolderID    *int   `json:"folderId"`
	Src         string `json:"src"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Copyright   string `json:"copyright"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// ImageDraft is the payload submitted from the add/edit modal
type ImageDraft struct {
	ID          *int   `json:"id,omitempty"`
	FolderID    int    `json:"folderId"`
	Src         string `json:"src"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Copyright   string `json:"copyright"`
}

// Catalog is one snapshot of the folders and images of a gallery
type Catalog struct {
	Folders []Folder `json:"folders"`
	Images  []Image  `json:"images"`
}

// FolderRow is a folder entry as returned by the remote store
type FolderRow struct {
	Name              string
	ServerRelativeURL string
	UniqueID          string
	ItemID            int
}

// ItemRow is a list item row as returned by the remote store
type ItemRow struct {
	ID            int
	Title         string
	Description   string
	FileLeafRef   string
	FileRef       string
	EncodedAbsURL string
	ImageWidth    int
	ImageHeight   int
	CopyrightInfo string
}

// UploadResult is the outcome of a file upload
type UploadResult struct {
	ServerRelativeURL string
}

// ItemFields are the metadata fields written back after an upload
type ItemFields struct {
	Title       string
	Description string
	Copyright   string
	// Width and Height are the decoded pixel size; zero when unknown
	Width  int
	Height int
}

// ModalMode describes what the editor modal is doing
type ModalMode string

const (
	ModalClosed  ModalMode = "viewing"
	ModalAdding  ModalMode = "adding"
	ModalEditing ModalMode = "editing"
)

// ModalState is the modal part of the view projection
type ModalState struct {
	Mode         ModalMode `json:"mode"`
	EditingImage *Image    `json:"editingImage,omitempty"`
}

// View is the read-only projection handed to the page and the API
type View struct {
	Folders            []Folder   `json:"folders"`
	FilteredImages     []Image    `json:"filteredImages"`
	SelectedFolderID   int        `json:"selectedFolderId"`
	SelectedFolderName string     `json:"selectedFolderName"`
	SearchQuery        string     `json:"searchQuery"`
	Modal              ModalState `json:"modal"`
	Error              string     `json:"error,omitempty"`
}
