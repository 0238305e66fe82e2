package userrepo

import (
	"context"
	"time"

	"github.com/wayfare-app/wayfare-api/internal/domain"
)

// User is the persistence shape used by the user repository.
type User struct {
	Username  string
	Password  string
	FirstName string
	LastName  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to locally persisted users.
type Repository interface {
	// Create inserts a new user. Returns ErrAlreadyExists if a row with the
	// same username exists.
	Create(ctx context.Context, u User) error

	// Update overwrites the mutable fields of an existing user (first name,
	// last name, password). Returns ErrNotFound if absent.
	Update(ctx context.Context, u User) error

	GetByUsername(ctx context.Context, username string) (User, error)

	// List returns all users ordered by username ascending.
	List(ctx context.Context) ([]User, error)

	// Delete removes the user row. Trip memberships referencing the username
	// are deliberately left in place (application-layer integrity only).
	Delete(ctx context.Context, username string) error
}

// ToDomain converts the persistence shape to the domain representation.
func ToDomain(u User) domain.User {
	return domain.User{
		Username:  u.Username,
		Password:  u.Password,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
