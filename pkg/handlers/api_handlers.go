package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"photo-gallery/pkg/models"
	"photo-gallery/pkg/services"
)

// ViewHandler returns the current view projection
func (h *Handlers) ViewHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.View(r.Context()))
}

// RefreshHandler re-fetches the catalog
func (h *Handlers) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.View(r.Context()))
}

// SelectFolderHandler changes the folder filter
func (h *Handlers) SelectFolderHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FolderID int `json:"folderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.service.SelectFolder(req.FolderID)
	writeJSON(w, http.StatusOK, h.service.View(r.Context()))
}

// SearchHandler changes the title filter
func (h *Handlers) SearchHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.service.SetSearchQuery(req.Query)
	writeJSON(w, http.StatusOK, h.service.View(r.Context()))
}

// OpenAddModalHandler opens the editor in add mode
func (h *Handlers) OpenAddModalHandler(w http.ResponseWriter, r *http.Request) {
	h.service.OpenAddModal()
	writeJSON(w, http.StatusOK, h.service.View(r.Context()))
}

// OpenEditModalHandler opens the editor for one image
func (h *Handlers) OpenEditModalHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "imageID"))
	if err != nil {
		http.Error(w, "Invalid image id", http.StatusBadRequest)
		return
	}

	if err := h.service.OpenEditModal(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.View(r.Context()))
}

// CloseModalHandler cancels the editor
func (h *Handlers) CloseModalHandler(w http.ResponseWriter, r *http.Request) {
	h.service.CloseModal()
	writeJSON(w, http.StatusOK, h.service.View(r.Context()))
}

// SaveImageHandler runs the save flow for an add or edit
func (h *Handlers) SaveImageHandler(w http.ResponseWriter, r *http.Request) {
	var draft models.ImageDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	log.Printf("Saving image %s to folder %d", draft.Name, draft.FolderID)

	if err := h.service.SaveImage(r.Context(), draft); err != nil {
		log.Printf("Error saving image: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.View(r.Context()))
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, services.ErrImageNotFound):
		status = http.StatusNotFound
	case services.IsValidationError(err):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}
