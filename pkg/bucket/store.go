// Package bucket stores a gallery in a Google Cloud Storage bucket. Folders
// are the immediate prefixes under the library path and image metadata lives
// in object metadata.
package bucket

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"photo-gallery/pkg/models"
)

// Object metadata keys
const (
	MetaTitle       = "title"
	MetaDescription = "description"
	MetaCopyright   = "copyright"
	MetaWidth       = "width"
	MetaHeight      = "height"
)

// Store is a gallery kept in a bucket
type Store struct {
	client      *storage.Client
	bucketName  string
	libraryPath string

	mu    sync.RWMutex
	names map[int]string
}

// NewStore connects to the bucket. libraryPath is the object prefix holding
// the gallery folders; ListItems lists everything under it.
func NewStore(ctx context.Context, bucketName, libraryPath, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &Store{
		client:      client,
		bucketName:  bucketName,
		libraryPath: libraryPath,
		names:       make(map[int]string),
	}, nil
}

// Close releases the storage client
func (s *Store) Close() error {
	return s.client.Close()
}

// ListFolders returns the immediate prefixes below libraryPath
func (s *Store) ListFolders(ctx context.Context, libraryPath string) ([]models.FolderRow, error) {
	prefix := objectPrefix(libraryPath)
	it := s.client.Bucket(s.bucketName).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})

	var rows []models.FolderRow
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating objects: %v", err)
		}
		if attrs.Prefix == "" {
			continue
		}
		rows = append(rows, s.folderRow(attrs.Prefix))
	}
	return rows, nil
}

// ListItems returns every object below the library path. The list id is
// ignored; a bucket gallery has exactly one list.
func (s *Store) ListItems(ctx context.Context, _ string) ([]models.ItemRow, error) {
	bucket := s.client.Bucket(s.bucketName)
	it := bucket.Objects(ctx, &storage.Query{Prefix: objectPrefix(s.libraryPath)})

	var rows []models.ItemRow
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating objects: %v", err)
		}
		if attrs.Name == "" || strings.HasSuffix(attrs.Name, "/") {
			continue
		}

		signedURL, err := bucket.SignedURL(attrs.Name, &storage.SignedURLOptions{
			Expires: time.Now().Add(24 * time.Hour),
			Method:  http.MethodGet,
		})
		if err != nil {
			log.Printf("Error creating signed URL for %s: %v", attrs.Name, err)
			signedURL = publicURL(s.bucketName, attrs.Name)
		}

		row := itemRow(attrs.Name, attrs.Metadata, signedURL)
		s.remember(row.ID, attrs.Name)
		rows = append(rows, row)
	}
	return rows, nil
}

// UploadFile writes data to folderPath/fileName, replacing any existing object
func (s *Store) UploadFile(ctx context.Context, folderPath, fileName string, data []byte, overwrite bool) (models.UploadResult, error) {
	name := objectPrefix(folderPath) + fileName
	obj := s.client.Bucket(s.bucketName).Object(name)
	if !overwrite {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}

	writer := obj.NewWriter(ctx)
	writer.ContentType = http.DetectContentType(data)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return models.UploadResult{}, fmt.Errorf("Writer.Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		return models.UploadResult{}, fmt.Errorf("Writer.Close: %v", err)
	}

	return models.UploadResult{ServerRelativeURL: "/" + name}, nil
}

// ItemIDForFile returns the stable item id of an existing object
func (s *Store) ItemIDForFile(ctx context.Context, serverRelativeURL string) (int, error) {
	name := strings.TrimPrefix(serverRelativeURL, "/")
	if _, err := s.client.Bucket(s.bucketName).Object(name).Attrs(ctx); err != nil {
		return 0, fmt.Errorf("Object(%q).Attrs: %v", name, err)
	}
	id := ObjectID(name)
	s.remember(id, name)
	return id, nil
}

// UpdateListItem replaces the metadata of the object behind itemID
func (s *Store) UpdateListItem(ctx context.Context, _ string, itemID int, fields models.ItemFields) error {
	s.mu.RLock()
	name, ok := s.names[itemID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown item id %d", itemID)
	}

	obj := s.client.Bucket(s.bucketName).Object(name)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("Object(%q).Attrs: %v", name, err)
	}

	_, err = obj.Update(ctx, storage.ObjectAttrsToUpdate{
		Metadata: mergeMetadata(attrs.Metadata, fields),
	})
	if err != nil {
		return fmt.Errorf("Object(%q).Update: %v", name, err)
	}
	return nil
}

func (s *Store) remember(id int, name string) {
	s.mu.Lock()
	s.names[id] = name
	s.mu.Unlock()
}

func (s *Store) folderRow(prefix string) models.FolderRow {
	trimmed := strings.TrimSuffix(prefix, "/")
	return models.FolderRow{
		Name:              path.Base(trimmed),
		ServerRelativeURL: "/" + trimmed,
		UniqueID:          FolderUniqueID(s.bucketName, prefix),
		ItemID:            ObjectID(prefix),
	}
}

// FolderUniqueID derives a stable unique id for a folder prefix
func FolderUniqueID(bucketName, prefix string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("gs://"+bucketName+"/"+prefix)).String()
}

// ObjectID derives a positive, stable item id from an object name
func ObjectID(name string) int {
	h := fnv.New32a()
	h.Write([]byte(name))
	id := int(h.Sum32() & 0x7fffffff)
	if id == 0 {
		id = 1
	}
	return id
}

func itemRow(name string, metadata map[string]string, fileURL string) models.ItemRow {
	width, _ := strconv.Atoi(metadata[MetaWidth])
	height, _ := strconv.Atoi(metadata[MetaHeight])
	return models.ItemRow{
		ID:            ObjectID(name),
		Title:         metadata[MetaTitle],
		Description:   metadata[MetaDescription],
		FileLeafRef:   path.Base(name),
		FileRef:       "/" + name,
		EncodedAbsURL: fileURL,
		ImageWidth:    width,
		ImageHeight:   height,
		CopyrightInfo: metadata[MetaCopyright],
	}
}

// mergeMetadata keeps unrelated keys and replaces the three editable fields wholesale.
// Dimensions are written only when known.
func mergeMetadata(existing map[string]string, fields models.ItemFields) map[string]string {
	merged := make(map[string]string, len(existing)+5)
	for k, v := range existing {
		merged[k] = v
	}
	merged[MetaTitle] = fields.Title
	merged[MetaDescription] = fields.Description
	merged[MetaCopyright] = fields.Copyright
	if fields.Width > 0 && fields.Height > 0 {
		merged[MetaWidth] = strconv.Itoa(fields.Width)
		merged[MetaHeight] = strconv.Itoa(fields.Height)
	}
	return merged
}

func objectPrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func publicURL(bucketName, name string) string {
	return (&url.URL{
		Scheme: "https",
		Host:   "storage.googleapis.com",
		Path:   "/" + bucketName + "/" + name,
	}).String()
}
