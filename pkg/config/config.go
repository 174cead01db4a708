package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	BackendSharePoint = "sharepoint"
	BackendGCS        = "gcs"
)

// Resolver strategies
const (
	StrategyPath      = "path"
	StrategySubstring = "substring"
)

// Folder id sources
const (
	FolderIDFromGUID = "guid"
	FolderIDFromItem = "item"
)

// Config holds all configuration for the application
type Config struct {
	Backend         string
	SiteURL         string
	SiteRelative    string
	LibraryName     string
	ListID          string
	Strategy        string
	FolderIDSource  string
	AccessToken     string
	PageSize        int
	BucketName      string
	CredentialsFile string
	Port            string
	CacheTTL        time.Duration
}

// ErrSiteURLNotSet is returned when the SITE_URL environment variable is not set
var ErrSiteURLNotSet = errors.New("SITE_URL environment variable not set")

// ErrListIDNotSet is returned when the LIST_ID environment variable is not set
var ErrListIDNotSet = errors.New("LIST_ID environment variable not set")

// ErrBucketNameNotSet is returned when the BUCKET_NAME environment variable is not set
var ErrBucketNameNotSet = errors.New("BUCKET_NAME environment variable not set")

// ErrUnknownBackend is returned when STORE_BACKEND names an unsupported backend
var ErrUnknownBackend = errors.New("unknown STORE_BACKEND")

// ErrUnknownStrategy is returned when RESOLVER_STRATEGY names an unsupported strategy
var ErrUnknownStrategy = errors.New("unknown RESOLVER_STRATEGY")

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Backend:         envOr("STORE_BACKEND", BackendSharePoint),
		SiteURL:         strings.TrimRight(os.Getenv("SITE_URL"), "/"),
		SiteRelative:    strings.TrimRight(os.Getenv("SITE_RELATIVE"), "/"),
		LibraryName:     envOr("LIBRARY_NAME", "PublishingImages"),
		ListID:          os.Getenv("LIST_ID"),
		Strategy:        envOr("RESOLVER_STRATEGY", StrategyPath),
		FolderIDSource:  envOr("FOLDER_ID_SOURCE", FolderIDFromGUID),
		AccessToken:     os.Getenv("ACCESS_TOKEN"),
		BucketName:      os.Getenv("BUCKET_NAME"),
		CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		Port:            envOr("PORT", "8080"),
	}

	pageSize, err := strconv.Atoi(envOr("PAGE_SIZE", "2000"))
	if err != nil || pageSize <= 0 {
		return nil, fmt.Errorf("invalid PAGE_SIZE: %q", os.Getenv("PAGE_SIZE"))
	}
	cfg.PageSize = pageSize

	ttl, err := time.ParseDuration(envOr("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %v", err)
	}
	cfg.CacheTTL = ttl

	switch cfg.Strategy {
	case StrategyPath, StrategySubstring:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, cfg.Strategy)
	}

	if cfg.FolderIDSource != FolderIDFromGUID && cfg.FolderIDSource != FolderIDFromItem {
		return nil, fmt.Errorf("invalid FOLDER_ID_SOURCE: %s", cfg.FolderIDSource)
	}

	switch cfg.Backend {
	case BackendSharePoint:
		if cfg.SiteURL == "" {
			return nil, ErrSiteURLNotSet
		}
		if cfg.ListID == "" {
			return nil, ErrListIDNotSet
		}
		if cfg.SiteRelative == "" {
			u, err := url.Parse(cfg.SiteURL)
			if err != nil {
				return nil, fmt.Errorf("invalid SITE_URL: %v", err)
			}
			cfg.SiteRelative = strings.TrimRight(u.Path, "/")
		}
	case BackendGCS:
		if cfg.BucketName == "" {
			return nil, ErrBucketNameNotSet
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}

	return cfg, nil
}

// LibraryPath returns the server-relative path of the document library
func (c *Config) LibraryPath() string {
	return c.SiteRelative + "/" + c.LibraryName
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Gallery URL: http://localhost:%s/\n", c.Port)
	fmt.Printf("Library: %s (%s backend, %s resolver)\n", c.LibraryPath(), c.Backend, c.Strategy)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
