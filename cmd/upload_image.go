package cmd

import (
	"context"
	"fmt"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"photo-gallery/pkg/models"
	"photo-gallery/pkg/services"
)

// Command options
var (
	uploadFolder      string
	uploadName        string
	uploadTitle       string
	uploadDescription string
	uploadCopyright   string
)

// newUploadImageCmd creates a new command for uploading an image with its metadata
func newUploadImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload-image [file]",
		Short: "Upload an image into a gallery folder",
		Long: `Upload a local image into a gallery folder and set its title, description and copyright.
An existing file of the same name in that folder is overwritten.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*requestTimeout)
			defer cancel()

			service, release := mustOpenGallery(ctx)
			defer release()

			draft, err := buildDraft(ctx, service, args[0])
			if err != nil {
				log.Fatalf("Error: %v", err)
			}

			service.OpenAddModal()
			if err := service.SaveImage(ctx, draft); err != nil {
				log.Fatalf("Error saving image: %v", err)
			}
			fmt.Printf("Uploaded %s to %s\n", draft.Name, uploadFolder)
		},
	}

	cmd.Flags().StringVarP(&uploadFolder, "folder", "f", "", "Folder to upload into (required)")
	cmd.Flags().StringVarP(&uploadName, "name", "n", "", "File name in the library (defaults to the local file name)")
	cmd.Flags().StringVarP(&uploadTitle, "title", "t", "", "Image title")
	cmd.Flags().StringVarP(&uploadDescription, "description", "d", "", "Image description")
	cmd.Flags().StringVarP(&uploadCopyright, "copyright", "c", "", "Image copyright")
	cmd.MarkFlagRequired("folder")

	return cmd
}

// buildDraft reads a local file into a data-URI save payload
func buildDraft(ctx context.Context, service *services.Service, path string) (models.ImageDraft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ImageDraft{}, fmt.Errorf("os.ReadFile: %v", err)
	}

	folder, err := service.FolderByName(ctx, uploadFolder)
	if err != nil {
		return models.ImageDraft{}, err
	}

	name := uploadName
	if name == "" {
		name = path
	}
	name = services.SafeFileName(name)
	if !services.IsImageFile(name) {
		return models.ImageDraft{}, fmt.Errorf("%s does not have an image extension", name)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	if !strings.HasPrefix(contentType, "image/") {
		return models.ImageDraft{}, fmt.Errorf("%s is not an image (%s)", path, contentType)
	}

	return models.ImageDraft{
		FolderID:    folder.ID,
		Src:         services.EncodeImageSource(contentType, data),
		Name:        name,
		Title:       uploadTitle,
		Description: uploadDescription,
		Copyright:   uploadCopyright,
	}, nil
}
