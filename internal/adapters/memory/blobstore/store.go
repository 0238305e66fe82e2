package blobstore

import (
	"context"
	"io"
	"sync"
)

// Store is an in-memory blobstore.Store used in tests and the memory backend.
// It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	objects map[string][]byte
	baseURL string

	uploads int
	deletes int
}

func NewStore(baseURL string) *Store {
	return &Store{
		objects: make(map[string][]byte),
		baseURL: baseURL,
	}
}

func (s *Store) Upload(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	_ = contentType
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[filename] = b
	s.uploads++
	return s.baseURL + "/" + filename, nil
}

func (s *Store) Delete(ctx context.Context, filename string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if _, ok := s.objects[filename]; !ok {
		return false, nil
	}
	delete(s.objects, filename)
	return true, nil
}

// Len reports the number of stored objects.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// UploadCount reports how many uploads were performed. Test helper.
func (s *Store) UploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}

// DeleteCount reports how many delete calls were issued. Test helper.
func (s *Store) DeleteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}
