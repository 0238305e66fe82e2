package triprepo

import (
	"context"
	"sort"
	"sync"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/ports/out/triprepo"
)

// Repo is an in-memory implementation of triprepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu    sync.RWMutex
	byID  map[domain.TripID]triprepo.Trip
	dests map[domain.DestinationID]domain.Destination

	nextTripID int64
	nextTodoID int64
}

func NewRepo() *Repo {
	return &Repo{
		byID:  make(map[domain.TripID]triprepo.Trip),
		dests: make(map[domain.DestinationID]domain.Destination),
	}
}

func (r *Repo) Create(ctx context.Context, t triprepo.Trip) (triprepo.Trip, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextTripID++
	t.ID = domain.TripID(r.nextTripID)
	t.Destinations = r.linkDestinationsLocked(t.Destinations)
	t.Todos = r.renumberTodosLocked(t.Todos)
	for i := range t.Photos {
		t.Photos[i].TripID = t.ID
	}

	r.byID[t.ID] = cloneTrip(t)
	return cloneTrip(t), nil
}

func (r *Repo) Replace(ctx context.Context, t triprepo.Trip) (triprepo.Trip, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[t.ID]
	if !ok {
		return triprepo.Trip{}, triprepo.ErrNotFound
	}

	// The old child rows are discarded wholesale; the replacement set gets
	// fresh to-do IDs, mirroring delete-then-reinsert in the SQL adapter.
	t.CreatedAt = existing.CreatedAt
	t.Destinations = r.linkDestinationsLocked(t.Destinations)
	t.Todos = r.renumberTodosLocked(t.Todos)
	for i := range t.Photos {
		t.Photos[i].TripID = t.ID
	}

	r.byID[t.ID] = cloneTrip(t)
	return cloneTrip(t), nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.TripID) (triprepo.Trip, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return triprepo.Trip{}, triprepo.ErrNotFound
	}
	return cloneTrip(t), nil
}

func (r *Repo) List(ctx context.Context) ([]triprepo.Trip, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]triprepo.Trip, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, cloneTrip(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.TripID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return triprepo.ErrNotFound
	}
	// Join rows, to-dos and photos live on the aggregate; destinations are
	// reference data and survive.
	delete(r.byID, id)
	return nil
}

func (r *Repo) AddPhoto(ctx context.Context, id domain.TripID, p domain.Photo) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return triprepo.ErrNotFound
	}
	for _, existing := range t.Photos {
		if existing.FileName == p.FileName {
			return triprepo.ErrDuplicateFilename
		}
	}
	p.TripID = id
	t.Photos = append(t.Photos, p)
	r.byID[id] = t
	return nil
}

func (r *Repo) RemovePhotos(ctx context.Context, id domain.TripID, photoIDs []domain.PhotoID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return triprepo.ErrNotFound
	}
	drop := make(map[domain.PhotoID]struct{}, len(photoIDs))
	for _, pid := range photoIDs {
		drop[pid] = struct{}{}
	}
	kept := make([]domain.Photo, 0, len(t.Photos))
	for _, p := range t.Photos {
		if _, ok := drop[p.ID]; ok {
			continue
		}
		kept = append(kept, p)
	}
	t.Photos = kept
	r.byID[id] = t
	return nil
}

func (r *Repo) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Destination, 0, len(r.dests))
	for _, d := range r.dests {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// linkDestinationsLocked reuses destination rows that already exist in the
// reference table; unseen IDs are inserted.
func (r *Repo) linkDestinationsLocked(in []domain.Destination) []domain.Destination {
	out := make([]domain.Destination, 0, len(in))
	seen := make(map[domain.DestinationID]struct{}, len(in))
	for _, d := range in {
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		if stored, ok := r.dests[d.ID]; ok {
			out = append(out, stored)
			continue
		}
		r.dests[d.ID] = d
		out = append(out, d)
	}
	return out
}

func (r *Repo) renumberTodosLocked(in []domain.TodoItem) []domain.TodoItem {
	out := make([]domain.TodoItem, 0, len(in))
	for _, td := range in {
		r.nextTodoID++
		td.ID = domain.TodoID(r.nextTodoID)
		out = append(out, td)
	}
	return out
}

func cloneTrip(t triprepo.Trip) triprepo.Trip {
	cp := t
	cp.Details = cloneStringPtr(t.Details)
	cp.CoverImageURL = cloneStringPtr(t.CoverImageURL)
	if t.Destinations != nil {
		cp.Destinations = append([]domain.Destination(nil), t.Destinations...)
	}
	if t.MemberUsernames != nil {
		cp.MemberUsernames = append([]string(nil), t.MemberUsernames...)
	}
	if t.Todos != nil {
		cp.Todos = append([]domain.TodoItem(nil), t.Todos...)
	}
	if t.Photos != nil {
		cp.Photos = append([]domain.Photo(nil), t.Photos...)
	}
	return cp
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
