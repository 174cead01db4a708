package cmd

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"photo-gallery/pkg/bucket"
	"photo-gallery/pkg/config"
	"photo-gallery/pkg/services"
	"photo-gallery/pkg/sharepoint"
)

// Configuration flags
var (
	backend    string
	siteURL    string
	library    string
	listID     string
	strategy   string
	bucketName string
	portNumber string
)

// requestTimeout bounds every remote call made by a command
const requestTimeout = 30 * time.Second

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "photo-gallery",
		Short: "Photo Gallery browses and edits an image library",
		Long: `Photo Gallery is a command line application that lists the folders and images of a
SharePoint picture library (or a Cloud Storage bucket laid out the same way), uploads
images with their title, description and copyright, and serves the gallery via a web interface.`,
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Set the STORE_BACKEND: sharepoint or gcs (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&siteURL, "site-url", "u", "", "Set the SITE_URL (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&library, "library", "l", "", "Set the LIBRARY_NAME (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&listID, "list-id", "", "Set the LIST_ID (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&strategy, "strategy", "", "Set the RESOLVER_STRATEGY: path or substring (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&bucketName, "bucket", "b", "", "Set the BUCKET_NAME (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Set the PORT (overrides environment variable)")

	// Add commands to root
	rootCmd.AddCommand(newListFoldersCmd())
	rootCmd.AddCommand(newListImagesCmd())
	rootCmd.AddCommand(newShowImageCmd())
	rootCmd.AddCommand(newUploadImageCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	// Set environment variables from flags if provided
	overrides := map[string]string{
		"STORE_BACKEND":     backend,
		"SITE_URL":          siteURL,
		"LIBRARY_NAME":      library,
		"LIST_ID":           listID,
		"RESOLVER_STRATEGY": strategy,
		"BUCKET_NAME":       bucketName,
		"PORT":              portNumber,
	}
	for key, value := range overrides {
		if value != "" {
			os.Setenv(key, value)
		}
	}

	// Load configuration from environment variables (potentially set above)
	return config.Load()
}

// OpenGallery connects the configured store and wraps it in a gallery service.
// The returned func releases the store.
func OpenGallery(ctx context.Context, cfg *config.Config) (*services.Service, func(), error) {
	var (
		store   services.Store
		release = func() {}
	)

	switch cfg.Backend {
	case config.BackendGCS:
		bs, err := bucket.NewStore(ctx, cfg.BucketName, cfg.LibraryPath(), cfg.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		store = bs
		release = func() { bs.Close() }
	default:
		store = sharepoint.NewClient(cfg.SiteURL, cfg.AccessToken, sharepoint.WithPageSize(cfg.PageSize))
	}

	service, err := services.NewService(cfg, store)
	if err != nil {
		release()
		return nil, nil, err
	}
	return service, release, nil
}

// mustOpenGallery loads configuration, opens the gallery and reads its catalog
func mustOpenGallery(ctx context.Context) (*services.Service, func()) {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	service, release, err := OpenGallery(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open gallery: %v", err)
	}
	if _, err := service.Refresh(ctx); err != nil {
		release()
		log.Fatalf("Failed to fetch catalog: %v", err)
	}
	return service, release
}
