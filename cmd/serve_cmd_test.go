package cmd

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"photo-gallery/pkg/config"
	"photo-gallery/pkg/models"
	"photo-gallery/pkg/services"
)

var errUnreachable = errors.New("site unreachable")

// unreachableStore fails every call
type unreachableStore struct{}

func (unreachableStore) ListFolders(context.Context, string) ([]models.FolderRow, error) {
	return nil, errUnreachable
}

func (unreachableStore) ListItems(context.Context, string) ([]models.ItemRow, error) {
	return nil, errUnreachable
}

func (unreachableStore) UploadFile(context.Context, string, string, []byte, bool) (models.UploadResult, error) {
	return models.UploadResult{}, errUnreachable
}

func (unreachableStore) ItemIDForFile(context.Context, string) (int, error) {
	return 0, errUnreachable
}

func (unreachableStore) UpdateListItem(context.Context, string, int, models.ItemFields) error {
	return errUnreachable
}

func TestInitialFetchLogsFailure(t *testing.T) {
	cfg := &config.Config{
		SiteRelative:   "/sites/s",
		LibraryName:    "PublishingImages",
		ListID:         "list",
		Strategy:       config.StrategyPath,
		FolderIDSource: config.FolderIDFromGUID,
		CacheTTL:       time.Minute,
	}
	service, err := services.NewService(cfg, unreachableStore{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	err = InitialFetch(service)
	if !errors.Is(err, errUnreachable) {
		t.Fatalf("InitialFetch error = %v, want %v", err, errUnreachable)
	}
	if !strings.Contains(logs.String(), "Initial fetch failed") {
		t.Errorf("failure not logged, got %q", logs.String())
	}
	if service.View(context.Background()).Error == "" {
		t.Error("failure not shown in the page banner")
	}
}
