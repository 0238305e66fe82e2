package blobstore

import (
	"context"
	"io"
)

// Store is the external object store holding photo binary content, addressed
// by filename. Uploading an existing filename silently overwrites the object;
// callers must guard against collisions before uploading.
type Store interface {
	// Upload writes the object and returns its public URL.
	Upload(ctx context.Context, r io.Reader, filename, contentType string) (string, error)

	// Delete removes the object. It reports whether the object existed; a
	// missing object is not an error.
	Delete(ctx context.Context, filename string) (bool, error)
}
