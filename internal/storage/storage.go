// Package storage keeps recipe images in object storage.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/pageza/recetario/backend/internal/apperr"
)

// DefaultMaxBytes caps an uploaded image.
const DefaultMaxBytes = 5 << 20

// ImageStore uploads images and deletes them by the URL it handed out.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Prepare checks an image and returns the object key and content type to
// upload it under. Keys look like images/<uuid>.<ext>.
func Prepare(data []byte, maxBytes int64) (key, contentType string, err error) {
	if len(data) == 0 {
		return "", "", apperr.Validation("image is empty")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", "", apperr.Validation("image exceeds %d bytes", maxBytes)
	}
	mt := mimetype.Detect(data)
	ct := mt.String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if !allowedTypes[ct] {
		return "", "", apperr.Validation("unsupported image type %s", ct)
	}
	return fmt.Sprintf("images/%s%s", uuid.NewString(), mt.Extension()), ct, nil
}

// Memory is an ImageStore held in process, for tests and local runs
// without a bucket.
type Memory struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]object
}

type object struct {
	data        []byte
	contentType string
}

func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: strings.TrimSuffix(baseURL, "/"), objects: make(map[string]object)}
}

func (m *Memory) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperr.Write("upload image", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = object{data: append([]byte(nil), data...), contentType: contentType}
	return m.baseURL + "/" + key, nil
}

func (m *Memory) Delete(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	key, ok := strings.CutPrefix(url, m.baseURL+"/")
	if !ok {
		return apperr.Write("delete image", fmt.Errorf("%s is not stored here", url))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Get returns the object stored under key and its content type.
func (m *Memory) Get(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[key]
	return o.data, o.contentType, ok
}

// Has reports whether the object behind url exists.
func (m *Memory) Has(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[strings.TrimPrefix(url, m.baseURL+"/")]
	return ok
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
