package cmd

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"photo-gallery/pkg/config"
	"photo-gallery/pkg/handlers"
	"photo-gallery/pkg/services"
)

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to browse and edit the gallery via HTTP.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := LoadConfig()
			if err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}
			service, release, err := OpenGallery(cmd.Context(), cfg)
			if err != nil {
				log.Fatalf("Failed to open gallery: %v", err)
			}
			defer release()
			serveWebsite(cfg, service)
		},
	}
}

// InitialFetch loads the catalog before the server starts. A failure is logged
// and returned; the page shows it as the banner until a later fetch succeeds.
func InitialFetch(service *services.Service) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if _, err := service.Refresh(ctx); err != nil {
		log.Printf("Initial fetch failed: %v", err)
		return err
	}
	return nil
}

// serveWebsite runs the web server for one gallery session
func serveWebsite(cfg *config.Config, service *services.Service) {
	_ = InitialFetch(service)

	router := handlers.New(service, "./views/index.pug").Router()

	// Start server
	cfg.PrintServerStartMessage()
	if err := http.ListenAndServe(cfg.ServerAddress(), router); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}
