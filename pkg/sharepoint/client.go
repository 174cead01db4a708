// Package sharepoint is a small REST client for the SharePoint _api surface
// the gallery depends on: folder listing, paged list items, file upload and
// list item metadata updates.
package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"photo-gallery/pkg/models"
)

const (
	acceptNoMetadata = "application/json;odata=nometadata"
	digestCacheKey   = "form-digest"
	digestMargin     = 60 * time.Second
)

var itemFields = []string{
	"Id", "Title", "Description", "FileLeafRef", "FileRef",
	"EncodedAbsUrl", "ImageWidth", "ImageHeight", "CopyrightInfo",
}

// Client talks to one SharePoint web
type Client struct {
	siteURL     string
	accessToken string
	pageSize    int
	httpClient  *http.Client
	digestCache *cache.Cache
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageSize sets the $top page size used when listing items
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient creates a client for the web at siteURL
func NewClient(siteURL, accessToken string, opts ...Option) *Client {
	c := &Client{
		siteURL:     strings.TrimRight(siteURL, "/"),
		accessToken: accessToken,
		pageSize:    2000,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		digestCache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type folderEntry struct {
	Name              string `json:"Name"`
	ServerRelativeURL string `json:"ServerRelativeUrl"`
	UniqueID          string `json:"UniqueId"`
	ListItemAllFields *struct {
		ID int `json:"Id"`
	} `json:"ListItemAllFields"`
}

type itemEntry struct {
	ID            int     `json:"Id"`
	Title         *string `json:"Title"`
	Description   *string `json:"Description"`
	FileLeafRef   string  `json:"FileLeafRef"`
	FileRef       string  `json:"FileRef"`
	EncodedAbsURL string  `json:"EncodedAbsUrl"`
	ImageWidth    *int    `json:"ImageWidth"`
	ImageHeight   *int    `json:"ImageHeight"`
	CopyrightInfo *string `json:"CopyrightInfo"`
}

// ListFolders returns the sub folders of the folder at libraryPath
func (c *Client) ListFolders(ctx context.Context, libraryPath string) ([]models.FolderRow, error) {
	endpoint := fmt.Sprintf("%s/_api/web/GetFolderByServerRelativeUrl('%s')/Folders?%s",
		c.siteURL, odataString(libraryPath), url.Values{
			"$select": {"Name,ServerRelativeUrl,UniqueId,ListItemAllFields/Id"},
			"$expand": {"ListItemAllFields"},
		}.Encode())

	var page struct {
		Value []folderEntry `json:"value"`
	}
	if err := c.getJSON(ctx, endpoint, &page); err != nil {
		return nil, fmt.Errorf("list folders of %s: %w", libraryPath, err)
	}

	rows := make([]models.FolderRow, 0, len(page.Value))
	for _, f := range page.Value {
		row := models.FolderRow{
			Name:              f.Name,
			ServerRelativeURL: f.ServerRelativeURL,
			UniqueID:          f.UniqueID,
		}
		if f.ListItemAllFields != nil {
			row.ItemID = f.ListItemAllFields.ID
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ListItems returns every item of the list, following paging links until exhausted
func (c *Client) ListItems(ctx context.Context, listID string) ([]models.ItemRow, error) {
	next := fmt.Sprintf("%s/_api/web/lists(guid'%s')/items?%s",
		c.siteURL, odataString(listID), url.Values{
			"$select": {strings.Join(itemFields, ",")},
			"$top":    {strconv.Itoa(c.pageSize)},
		}.Encode())

	var rows []models.ItemRow
	for pageNum := 1; next != ""; pageNum++ {
		var page struct {
			Value    []itemEntry `json:"value"`
			NextLink string      `json:"odata.nextLink"`
		}
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("list items of %s (page %d): %w", listID, pageNum, err)
		}
		for _, it := range page.Value {
			rows = append(rows, it.toRow())
		}
		next = page.NextLink
	}

	log.Printf("Listed %d items from list %s", len(rows), listID)
	return rows, nil
}

func (it itemEntry) toRow() models.ItemRow {
	return models.ItemRow{
		ID:            it.ID,
		Title:         deref(it.Title),
		Description:   deref(it.Description),
		FileLeafRef:   it.FileLeafRef,
		FileRef:       it.FileRef,
		EncodedAbsURL: it.EncodedAbsURL,
		ImageWidth:    derefInt(it.ImageWidth),
		ImageHeight:   derefInt(it.ImageHeight),
		CopyrightInfo: deref(it.CopyrightInfo),
	}
}

// UploadFile adds a file to the folder at folderPath
func (c *Client) UploadFile(ctx context.Context, folderPath, fileName string, data []byte, overwrite bool) (models.UploadResult, error) {
	endpoint := fmt.Sprintf("%s/_api/web/GetFolderByServerRelativeUrl('%s')/Files/add(url='%s',overwrite=%t)",
		c.siteURL, odataString(folderPath), odataString(fileName), overwrite)

	var file struct {
		ServerRelativeURL string `json:"ServerRelativeUrl"`
	}
	if err := c.post(ctx, endpoint, "application/octet-stream", data, nil, &file); err != nil {
		return models.UploadResult{}, fmt.Errorf("upload %s to %s: %w", fileName, folderPath, err)
	}
	if file.ServerRelativeURL == "" {
		return models.UploadResult{}, fmt.Errorf("upload %s to %s: response has no ServerRelativeUrl", fileName, folderPath)
	}
	return models.UploadResult{ServerRelativeURL: file.ServerRelativeURL}, nil
}

// ItemIDForFile returns the list item id backing a file
func (c *Client) ItemIDForFile(ctx context.Context, serverRelativeURL string) (int, error) {
	endpoint := fmt.Sprintf("%s/_api/web/GetFileByServerRelativeUrl('%s')/ListItemAllFields?%s",
		c.siteURL, odataString(serverRelativeURL), url.Values{"$select": {"Id"}}.Encode())

	var item struct {
		ID int `json:"Id"`
	}
	if err := c.getJSON(ctx, endpoint, &item); err != nil {
		return 0, fmt.Errorf("item for %s: %w", serverRelativeURL, err)
	}
	if item.ID <= 0 {
		return 0, fmt.Errorf("item for %s: response has no Id", serverRelativeURL)
	}
	return item.ID, nil
}

// UpdateListItem replaces the title, description and copyright of an item.
// The library fills ImageWidth and ImageHeight itself, so fields.Width and
// fields.Height are not sent.
func (c *Client) UpdateListItem(ctx context.Context, listID string, itemID int, fields models.ItemFields) error {
	endpoint := fmt.Sprintf("%s/_api/web/lists(guid'%s')/items(%d)", c.siteURL, odataString(listID), itemID)

	body, err := json.Marshal(map[string]string{
		"Title":         fields.Title,
		"Description":   fields.Description,
		"CopyrightInfo": fields.Copyright,
	})
	if err != nil {
		return err
	}

	headers := map[string]string{
		"X-HTTP-Method": "MERGE",
		"IF-MATCH":      "*",
	}
	if err := c.post(ctx, endpoint, acceptNoMetadata, body, headers, nil); err != nil {
		return fmt.Errorf("update item %d: %w", itemID, err)
	}
	return nil
}

// formDigest returns a request digest for write calls, reusing a cached one
// until shortly before it expires.
func (c *Client) formDigest(ctx context.Context) (string, error) {
	if cached, found := c.digestCache.Get(digestCacheKey); found {
		return cached.(string), nil
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.siteURL+"/_api/contextinfo", nil)
	if err != nil {
		return "", err
	}
	var info struct {
		FormDigestValue          string `json:"FormDigestValue"`
		FormDigestTimeoutSeconds int    `json:"FormDigestTimeoutSeconds"`
	}
	if err := c.do(req, &info); err != nil {
		return "", fmt.Errorf("context info: %w", err)
	}
	if info.FormDigestValue == "" {
		return "", fmt.Errorf("context info: empty form digest")
	}

	ttl := time.Duration(info.FormDigestTimeoutSeconds)*time.Second - digestMargin
	if ttl > 0 {
		c.digestCache.Set(digestCacheKey, info.FormDigestValue, ttl)
	}
	return info.FormDigestValue, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, body []byte, headers map[string]string, out interface{}) error {
	digest, err := c.formDigest(ctx)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-RequestDigest", digest)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptNoMetadata)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("SharePoint API error (status %d): %s", e.StatusCode, e.Body)
}

// odataString escapes a value for use inside a single-quoted OData literal
func odataString(s string) string {
	return url.PathEscape(strings.ReplaceAll(s, "'", "''"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
