package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"photo-gallery/pkg/models"
)

// newExportCmd creates a new command for exporting gallery data
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [format]",
		Short: "Export gallery data",
		Long:  `Export the gallery catalog in the specified format. Currently supported formats: json.`,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			format := "json"
			if len(args) > 0 {
				format = args[0]
			}
			if format != "json" {
				fmt.Printf("Unsupported export format: %s\n", format)
				fmt.Println("Supported formats: json")
				os.Exit(1)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			service, release := mustOpenGallery(ctx)
			defer release()

			catalog, _ := service.Catalog(ctx)
			exportData(catalog)
		},
	}
}

// exportData prints the catalog as indented JSON
func exportData(catalog models.Catalog) {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(data))
}
