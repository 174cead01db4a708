package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"photo-gallery/pkg/models"
)

// Command options
var (
	folderFilter string
	searchFilter string
)

// newListImagesCmd creates a new command for listing images
func newListImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-images",
		Short: "List gallery images",
		Long:  `List gallery images, optionally restricted to one folder and to titles containing a search text.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			service, release := mustOpenGallery(ctx)
			defer release()

			if folderFilter != "" {
				folder, err := service.FolderByName(ctx, folderFilter)
				if err != nil {
					log.Fatalf("Error: %v", err)
				}
				service.SelectFolder(folder.ID)
			}
			service.SetSearchQuery(searchFilter)

			listImages(service.View(ctx))
		},
	}

	cmd.Flags().StringVarP(&folderFilter, "folder", "f", "", "Only list images in this folder")
	cmd.Flags().StringVarP(&searchFilter, "search", "q", "", "Only list images whose title contains this text")

	return cmd
}

// listImages displays the filtered images of a view
func listImages(view models.View) {
	fmt.Printf("Gallery: %s\n", view.SelectedFolderName)
	fmt.Println("================")

	for _, image := range view.FilteredImages {
		title := image.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Printf("  - %s (id %d)\n", title, image.ID)
		fmt.Printf("    File: %s\n", image.Name)
	}

	fmt.Println()
	fmt.Printf("Total: %d images\n", len(view.FilteredImages))
}
