package handlers

import (
	"bytes"
	"log"
	"net/http"

	"github.com/eknkc/pug"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"photo-gallery/pkg/models"
	"photo-gallery/pkg/services"
)

// Handlers serves the gallery page and the view-state API for one session
type Handlers struct {
	service      *services.Service
	templatePath string
}

// New creates handlers around a gallery service
func New(service *services.Service, templatePath string) *Handlers {
	return &Handlers{service: service, templatePath: templatePath}
}

// Router wires the page and API routes
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir("./public"))))
	r.Get("/", h.GalleryHandler)

	// Page forms post here and are redirected back to the gallery
	r.Post("/select", h.SelectFolderFormHandler)
	r.Post("/search", h.SearchFormHandler)
	r.Post("/modal/add", h.OpenAddModalFormHandler)
	r.Post("/modal/edit/{imageID}", h.OpenEditModalFormHandler)
	r.Post("/modal/close", h.CloseModalFormHandler)
	r.Post("/images", h.SaveImageFormHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/view", h.ViewHandler)
		r.Post("/refresh", h.RefreshHandler)
		r.Post("/select", h.SelectFolderHandler)
		r.Post("/search", h.SearchHandler)
		r.Post("/modal/add", h.OpenAddModalHandler)
		r.Post("/modal/edit/{imageID}", h.OpenEditModalHandler)
		r.Post("/modal/close", h.CloseModalHandler)
		r.Post("/images", h.SaveImageHandler)
	})
	return r
}

// galleryPage is the template data: the view plus the editor form values
type galleryPage struct {
	models.View
	Editor editorForm
}

type editorForm struct {
	Open        bool
	Heading     string
	ID          int
	FolderID    int
	Name        string
	Title       string
	Description string
	Copyright   string
}

func newGalleryPage(view models.View) galleryPage {
	page := galleryPage{View: view}

	switch view.Modal.Mode {
	case models.ModalAdding:
		page.Editor = editorForm{Open: true, Heading: "Add New Image", FolderID: view.SelectedFolderID}
		if page.Editor.FolderID == services.AllImagesID && len(view.Folders) > 0 {
			page.Editor.FolderID = view.Folders[0].ID
		}
	case models.ModalEditing:
		image := view.Modal.EditingImage
		if image == nil {
			break
		}
		page.Editor = editorForm{
			Open:        true,
			Heading:     "Edit Image",
			ID:          image.ID,
			Name:        image.Name,
			Title:       image.Title,
			Description: image.Description,
			Copyright:   image.Copyright,
		}
		if image.FolderID != nil {
			page.Editor.FolderID = *image.FolderID
		}
	}
	return page
}

// GalleryHandler renders the gallery page for the current view
func (h *Handlers) GalleryHandler(w http.ResponseWriter, r *http.Request) {
	h.renderGallery(w, r, http.StatusOK, "")
}

// renderGallery renders the page, replacing the banner with message when one is given
func (h *Handlers) renderGallery(w http.ResponseWriter, r *http.Request, status int, message string) {
	log.Println("Generating Gallery Page")

	template, err := pug.CompileFile(h.templatePath, pug.Options{})
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		log.Printf("Template error: %v", err)
		return
	}

	view := h.service.View(r.Context())
	if message != "" {
		view.Error = message
	}

	var page bytes.Buffer
	if err := template.Execute(&page, newGalleryPage(view)); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		log.Printf("Template execution error: %v", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := page.WriteTo(w); err != nil {
		log.Printf("Error writing page: %v", err)
	}
}
