package userrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/wayfare-app/wayfare-api/internal/ports/out/userrepo"
)

// Repo is an in-memory implementation of userrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu         sync.RWMutex
	byUsername map[string]userrepo.User
}

func NewRepo() *Repo {
	return &Repo{byUsername: make(map[string]userrepo.User)}
}

func (r *Repo) Create(ctx context.Context, u userrepo.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUsername[u.Username]; ok {
		return userrepo.ErrAlreadyExists
	}
	r.byUsername[u.Username] = u
	return nil
}

func (r *Repo) Update(ctx context.Context, u userrepo.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byUsername[u.Username]
	if !ok {
		return userrepo.ErrNotFound
	}
	u.CreatedAt = existing.CreatedAt
	r.byUsername[u.Username] = u
	return nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (userrepo.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byUsername[username]
	if !ok {
		return userrepo.User{}, userrepo.ErrNotFound
	}
	return u, nil
}

func (r *Repo) List(ctx context.Context) ([]userrepo.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]userrepo.User, 0, len(r.byUsername))
	for _, u := range r.byUsername {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, username string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUsername[username]; !ok {
		return userrepo.ErrNotFound
	}
	delete(r.byUsername, username)
	return nil
}
