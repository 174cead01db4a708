package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"photo-gallery/pkg/models"
	"photo-gallery/pkg/services"
)

// newListFoldersCmd creates a new command for listing folders
func newListFoldersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-folders",
		Short: "List all gallery folders",
		Long:  `List all gallery folders with the number of images associated with each.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			service, release := mustOpenGallery(ctx)
			defer release()

			catalog, _ := service.Catalog(ctx)
			listFolders(catalog)
		},
	}
}

// listFolders displays all folders and their image counts
func listFolders(catalog models.Catalog) {
	counts := make(map[int]int)
	unassociated := 0
	for _, image := range catalog.Images {
		if image.FolderID == nil {
			unassociated++
			continue
		}
		counts[*image.FolderID]++
	}

	fmt.Println("Folders:")
	fmt.Println("========")

	fmt.Printf("%s\n", services.AllImagesName)
	fmt.Printf("  Images: %d\n", len(catalog.Images))
	fmt.Println()

	for _, folder := range catalog.Folders {
		fmt.Printf("%s (id %d)\n", folder.Name, folder.ID)
		fmt.Printf("  Images: %d\n", counts[folder.ID])
		fmt.Println()
	}

	fmt.Printf("Total: %d folders, %d unassociated images\n", len(catalog.Folders), unassociated)
}
