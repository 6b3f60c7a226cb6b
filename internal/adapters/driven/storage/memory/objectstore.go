package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

type object struct {
	data     []byte
	modified time.Time
}

// ObjectStore is an in-memory implementation of driven.ObjectStore.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string]object

	// Unavailable makes every call fail with domain.ErrStoreUnavailable.
	Unavailable bool
}

// NewObjectStore creates an empty in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		objects: make(map[string]object),
	}
}

func (s *ObjectStore) check() error {
	if s.Unavailable {
		return fmt.Errorf("%w: memory store offline", domain.ErrStoreUnavailable)
	}
	return nil
}

// Exists reports whether the key is present.
func (s *ObjectStore) Exists(_ context.Context, key string) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Put stores a copy of data under key.
func (s *ObjectStore) Put(_ context.Context, key string, data []byte) (string, error) {
	if err := s.check(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{
		data:     append([]byte(nil), data...),
		modified: time.Now(),
	}
	return locationURL(key), nil
}

// List returns every stored object.
func (s *ObjectStore) List(_ context.Context) ([]domain.StoredDocument, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.StoredDocument, 0, len(s.objects))
	for key, obj := range s.objects {
		docs = append(docs, storedDocument(key, obj))
	}
	return docs, nil
}

// Get returns a copy of the object bytes.
func (s *ObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return append([]byte(nil), obj.data...), nil
}

// Stat returns metadata for a single object.
func (s *ObjectStore) Stat(_ context.Context, key string) (*domain.StoredDocument, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	doc := storedDocument(key, obj)
	return &doc, nil
}

func storedDocument(key string, obj object) domain.StoredDocument {
	return domain.StoredDocument{
		Key:          key,
		Filename:     domain.FilenameFromKey(key),
		SizeBytes:    int64(len(obj.data)),
		LastModified: obj.modified,
		LocationURL:  locationURL(key),
	}
}

func locationURL(key string) string {
	return "memory://" + key
}
