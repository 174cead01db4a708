package cmd

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"

	"photo-gallery/pkg/models"
)

// newShowImageCmd creates a new command for showing image details
func newShowImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-image [id]",
		Short: "Show the metadata of one image",
		Long:  `Show detailed information about an image identified by its list item id.`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				log.Fatalf("Invalid image id %q: %v", args[0], err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			service, release := mustOpenGallery(ctx)
			defer release()

			image, err := service.Image(ctx, id)
			if err != nil {
				log.Fatalf("Error: %v", err)
			}
			catalog, _ := service.Catalog(ctx)
			showImage(image, catalog.Folders)
		},
	}
}

// showImage displays details about a specific image
func showImage(image models.Image, folders []models.Folder) {
	folderName := "(unassociated)"
	if image.FolderID != nil {
		for _, f := range folders {
			if f.ID == *image.FolderID {
				folderName = f.Name
			}
		}
	}

	fmt.Printf("Image: %s\n", image.Name)
	fmt.Printf("Folder: %s\n", folderName)
	fmt.Printf("Title: %s\n", image.Title)
	fmt.Printf("Description: %s\n", image.Description)
	fmt.Printf("Copyright: %s\n", image.Copyright)
	if image.Width > 0 && image.Height > 0 {
		fmt.Printf("Size: %dx%d\n", image.Width, image.Height)
	}
	fmt.Printf("URL: %s\n", image.Src)
}
