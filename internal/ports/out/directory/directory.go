package directory

import (
	"context"

	"github.com/wayfare-app/wayfare-api/internal/domain"
)

// Directory is the external federated user directory, queried by id or
// username. It is read-only from this system's point of view.
type Directory interface {
	UserByID(ctx context.Context, id string) (domain.DirectoryUser, error)
	UserByUsername(ctx context.Context, username string) (domain.DirectoryUser, error)
	ListUsers(ctx context.Context) ([]domain.DirectoryUser, error)
}
