// Package blob stores signature images.
package blob

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/Numffy/jumping-park-app-sub000/internal/models"
)

// SignatureRoute is the admin route that serves stored signatures
const SignatureRoute = "/v1/admin/signatures/"

// ErrEmptyPath is returned when a blob has no path
var ErrEmptyPath = errors.New("blob path is empty")

// retrievalURL builds the URL under which the API serves a stored blob
func retrievalURL(baseURL, path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(baseURL, "/") + SignatureRoute + strings.Join(segments, "/")
}

// Memory keeps blobs in process
type Memory struct {
	baseURL string

	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory creates an in-memory blob store serving URLs under baseURL
func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: baseURL, blobs: make(map[string][]byte)}
}

// Put stores a copy of data
func (m *Memory) Put(_ context.Context, path string, data []byte, _ string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[path] = append([]byte(nil), data...)
	return retrievalURL(m.baseURL, path), nil
}

// Get returns a copy of the blob at path
func (m *Memory) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[path]
	if !ok {
		return nil, models.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Len reports how many blobs are stored
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
