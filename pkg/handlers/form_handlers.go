package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"photo-gallery/pkg/models"
	"photo-gallery/pkg/services"
)

const maxUploadSize = 32 << 20

func redirectToGallery(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SelectFolderFormHandler changes the folder filter from the folder list
func (h *Handlers) SelectFolderFormHandler(w http.ResponseWriter, r *http.Request) {
	folderID, err := strconv.Atoi(r.FormValue("folderId"))
	if err != nil {
		http.Error(w, "Invalid folder id", http.StatusBadRequest)
		return
	}

	h.service.SelectFolder(folderID)
	redirectToGallery(w, r)
}

// SearchFormHandler changes the title filter from the search box
func (h *Handlers) SearchFormHandler(w http.ResponseWriter, r *http.Request) {
	h.service.SetSearchQuery(r.FormValue("query"))
	redirectToGallery(w, r)
}

// OpenAddModalFormHandler opens the editor in add mode
func (h *Handlers) OpenAddModalFormHandler(w http.ResponseWriter, r *http.Request) {
	h.service.OpenAddModal()
	redirectToGallery(w, r)
}

// OpenEditModalFormHandler opens the editor for the card's image
func (h *Handlers) OpenEditModalFormHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "imageID"))
	if err != nil {
		http.Error(w, "Invalid image id", http.StatusBadRequest)
		return
	}

	if err := h.service.OpenEditModal(r.Context(), id); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, services.ErrImageNotFound) {
			status = http.StatusNotFound
		}
		h.renderGallery(w, r, status, err.Error())
		return
	}
	redirectToGallery(w, r)
}

// CloseModalFormHandler cancels the editor
func (h *Handlers) CloseModalFormHandler(w http.ResponseWriter, r *http.Request) {
	h.service.CloseModal()
	redirectToGallery(w, r)
}

// SaveImageFormHandler turns the editor form into an ImageDraft and runs the save flow.
// The uploaded file travels as a data-URI, the same shape the JSON API accepts.
func (h *Handlers) SaveImageFormHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	draft, err := h.draftFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Printf("Saving image %s to folder %d", draft.Name, draft.FolderID)

	if err := h.service.SaveImage(r.Context(), draft); err != nil {
		log.Printf("Error saving image: %v", err)
		status := http.StatusBadGateway
		if services.IsValidationError(err) {
			status = http.StatusBadRequest
		}
		h.renderGallery(w, r, status, "Could not save image: "+err.Error())
		return
	}
	redirectToGallery(w, r)
}

func (h *Handlers) draftFromForm(r *http.Request) (models.ImageDraft, error) {
	folderID, err := strconv.Atoi(r.FormValue("folderId"))
	if err != nil {
		return models.ImageDraft{}, errors.New("invalid folder id")
	}

	draft := models.ImageDraft{
		FolderID:    folderID,
		Name:        strings.TrimSpace(r.FormValue("name")),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Copyright:   r.FormValue("copyright"),
	}
	if id, err := strconv.Atoi(r.FormValue("id")); err == nil && id > 0 {
		draft.ID = &id
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return models.ImageDraft{}, errors.New("unreadable upload")
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		draft.Src = services.EncodeImageSource(contentType, data)
		if draft.Name == "" {
			draft.Name = services.SafeFileName(header.Filename)
		}
	case errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart):
		// Without a new file an edit resubmits the stored source, which the save flow rejects.
		if editing := h.service.View(r.Context()).Modal.EditingImage; editing != nil {
			draft.Src = editing.Src
			if draft.Name == "" {
				draft.Name = editing.Name
			}
		}
	default:
		return models.ImageDraft{}, errors.New("invalid upload")
	}

	return draft, nil
}
