// Package fsblob stores photo blobs on the local filesystem. It stands in for
// a hosted object store in single-node deployments; the URL scheme mirrors
// one (base URL + filename).
package fsblob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Store struct {
	dir     string
	baseURL string
}

// New creates the backing directory if needed.
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *Store) Upload(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	_ = contentType
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.objectPath(filename)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	tmp := f.Name()
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	// Rename gives the same overwrite-on-collision behavior a hosted blob
	// store has; callers guard against filename collisions upstream.
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return s.baseURL + "/" + filename, nil
}

func (s *Store) Delete(ctx context.Context, filename string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, err := s.objectPath(filename)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// objectPath rejects filenames that would escape the blob directory.
func (s *Store) objectPath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid blob filename %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}
