package triprepo

import (
	"context"
	"time"

	"github.com/wayfare-app/wayfare-api/internal/domain"
)

// Trip is the persistence shape of the trip aggregate. It is not an HTTP DTO.
//
// Membership is persisted as bare usernames; profile hydration happens at the
// application layer. Referential existence of members is likewise an
// application-layer concern (see the trips service), so implementations must
// not enforce a foreign key from join rows to the user store.
type Trip struct {
	ID    domain.TripID
	Title string

	Details       *string
	StartDate     time.Time
	EndDate       time.Time
	CoverImageURL *string

	Destinations    []domain.Destination
	MemberUsernames []string
	Todos           []domain.TodoItem
	Photos          []domain.Photo

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted trip aggregates.
//
// Write methods operate on the whole aggregate atomically: either the trip row
// and all of its child rows are persisted, or nothing is.
type Repository interface {
	// Create inserts a new trip with its children and returns the aggregate
	// with server-generated IDs (trip, to-do items) populated. Destinations
	// already present in the reference table are linked, not re-inserted.
	Create(ctx context.Context, t Trip) (Trip, error)

	// Replace overwrites the trip's scalar fields, deletes all existing join
	// rows, to-do rows, and photo rows, and re-inserts the replacement set, in
	// one transaction. Returns ErrNotFound if the trip does not exist.
	Replace(ctx context.Context, t Trip) (Trip, error)

	GetByID(ctx context.Context, id domain.TripID) (Trip, error)

	// List returns every trip with all collections populated, ordered by ID
	// ascending. No pagination.
	List(ctx context.Context) ([]Trip, error)

	// Delete removes the trip row; join rows and owned children go with it.
	// Returns ErrNotFound if the trip does not exist.
	Delete(ctx context.Context, id domain.TripID) error

	// AddPhoto appends one photo row to an existing trip.
	// Returns ErrDuplicateFilename if the trip already has a photo with the
	// same filename.
	AddPhoto(ctx context.Context, id domain.TripID, p domain.Photo) error

	// RemovePhotos deletes the given photo rows from the trip. IDs not present
	// on the trip are ignored.
	RemovePhotos(ctx context.Context, id domain.TripID, photoIDs []domain.PhotoID) error

	// ListDestinations returns the destination reference table, ordered by ID.
	// Destination rows are created as a side effect of trip writes and never
	// deleted.
	ListDestinations(ctx context.Context) ([]domain.Destination, error)
}
