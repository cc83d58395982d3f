package store

import (
	"context"
	"strings"
	"sync"

	"github.com/tilsley/bindle/apps/server/internal/importer"
	"github.com/tilsley/bindle/apps/server/internal/importer/upload"
	"github.com/tilsley/bindle/pkg/api"
)

// Compile-time checks.
var (
	_ upload.ContentStore     = (*MemoryContentStore)(nil)
	_ importer.ContainerStore = (*MemoryContainerStore)(nil)
)

// MemoryContentStore keeps uploaded content in process memory. It backs local
// development without object-store credentials and unit tests. Safe for
// concurrent use.
type MemoryContentStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

// NewMemoryContentStore creates an empty in-memory content store. baseURL is
// used to fabricate content URLs (e.g. "http://localhost:8080/content").
func NewMemoryContentStore(baseURL string) *MemoryContentStore {
	return &MemoryContentStore{
		objects: make(map[string][]byte),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Put stores data under key. Empty payloads are rejected, matching the
// behavior of the production content store.
func (s *MemoryContentStore) Put(_ context.Context, key string, data []byte, _ string) (upload.PutResult, error) {
	if len(data) == 0 {
		return upload.PutResult{}, ErrEmptyPayload
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf

	return upload.PutResult{Key: key, URL: s.baseURL + "/" + key}, nil
}

// Get returns the stored payload; nil when absent. Test helper.
func (s *MemoryContentStore) Get(key string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[key]
}

// Len returns the number of stored objects. Test helper.
func (s *MemoryContentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// MemoryContainerStore is an in-memory importer.ContainerStore for tests and
// local development. Safe for concurrent use.
type MemoryContainerStore struct {
	mu         sync.RWMutex
	containers map[string]api.Container // by id
}

// NewMemoryContainerStore creates an empty in-memory container store.
func NewMemoryContainerStore() *MemoryContainerStore {
	return &MemoryContainerStore{containers: make(map[string]api.Container)}
}

// Save persists the container.
func (s *MemoryContainerStore) Save(_ context.Context, c api.Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers[c.Id] = c
	return nil
}

// Get retrieves a container by ID, returning nil when absent.
func (s *MemoryContainerStore) Get(_ context.Context, id string) (*api.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.containers[id]
	if !ok {
		return nil, nil //nolint:nilnil // caller checks nil value to detect "not found"
	}
	return &c, nil
}

// GetByName retrieves a container by case-insensitive exact name match.
func (s *MemoryContainerStore) GetByName(_ context.Context, name string) (*api.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.containers {
		if strings.EqualFold(c.Name, name) {
			out := c
			return &out, nil
		}
	}
	return nil, nil //nolint:nilnil // caller checks nil value to detect "not found"
}
