package directory

import (
	"context"
	"sync"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/ports/out/directory"
)

// Directory is an in-memory directory.Directory used in tests.
// It is safe for concurrent use.
type Directory struct {
	mu   sync.RWMutex
	byID map[string]domain.DirectoryUser
}

func New(users ...domain.DirectoryUser) *Directory {
	d := &Directory{byID: make(map[string]domain.DirectoryUser, len(users))}
	for _, u := range users {
		d.byID[u.ID] = u
	}
	return d
}

func (d *Directory) UserByID(ctx context.Context, id string) (domain.DirectoryUser, error) {
	_ = ctx
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byID[id]
	if !ok {
		return domain.DirectoryUser{}, directory.ErrNotFound
	}
	return u, nil
}

func (d *Directory) UserByUsername(ctx context.Context, username string) (domain.DirectoryUser, error) {
	_ = ctx
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.DirectoryUser{}, directory.ErrNotFound
}

func (d *Directory) ListUsers(ctx context.Context) ([]domain.DirectoryUser, error) {
	_ = ctx
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.DirectoryUser, 0, len(d.byID))
	for _, u := range d.byID {
		out = append(out, u)
	}
	return out, nil
}
