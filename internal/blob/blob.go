// Package blob stores idea attachments. With a storage service configured
// files are uploaded and referenced by public URL; without one, small
// files are embedded as data: URLs.
package blob

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/yukikurage/release-planner/internal/models"
)

var (
	ErrTooLarge  = errors.New("file exceeds the inline attachment limit")
	ErrEmptyFile = errors.New("file is empty")
)

// Store uploads a file under path and returns its public URL.
type Store interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
}

// StorageClient talks to a Supabase-style storage REST API:
// POST {base}/storage/v1/object/{bucket}/{path}.
type StorageClient struct {
	BaseURL string
	Key     string
	Bucket  string
	Client  *http.Client
}

func NewStorageClient(baseURL, key, bucket string) *StorageClient {
	return &StorageClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Key:     key,
		Bucket:  bucket,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *StorageClient) objectPath(objectPath string) string {
	parts := strings.Split(strings.TrimLeft(objectPath, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return url.PathEscape(c.Bucket) + "/" + strings.Join(parts, "/")
}

// PublicURL is where an uploaded object can be read.
func (c *StorageClient) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s", c.BaseURL, c.objectPath(objectPath))
}

func (c *StorageClient) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s", c.BaseURL, c.objectPath(objectPath))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")
	if c.Key != "" {
		req.Header.Set("Authorization", "Bearer "+c.Key)
		req.Header.Set("apikey", c.Key)
	}

	res, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("storage status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return c.PublicURL(objectPath), nil
}

// Attacher turns uploaded files into attachments.
type Attacher struct {
	store     Store
	inlineMax int64
}

// NewAttacher uses store when non-nil, otherwise inlines files up to
// inlineMax bytes.
func NewAttacher(store Store, inlineMax int64) *Attacher {
	return &Attacher{store: store, inlineMax: inlineMax}
}

// Attach stores data as prefix/name and describes it. The content type
// is sniffed from the bytes.
func (a *Attacher) Attach(ctx context.Context, prefix, name string, data []byte) (models.Attachment, error) {
	if len(data) == 0 {
		return models.Attachment{}, ErrEmptyFile
	}
	contentType := mimetype.Detect(data).String()
	att := models.Attachment{
		Name:        path.Base(name),
		ContentType: contentType,
		Size:        int64(len(data)),
	}

	if a.store == nil {
		if int64(len(data)) > a.inlineMax {
			return models.Attachment{}, ErrTooLarge
		}
		att.URL = DataURL(contentType, data)
		att.Inline = true
		return att, nil
	}

	u, err := a.store.Upload(ctx, path.Join(prefix, att.Name), contentType, data)
	if err != nil {
		return models.Attachment{}, err
	}
	att.URL = u
	return att, nil
}

func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
