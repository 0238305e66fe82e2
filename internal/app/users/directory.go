package users

import (
	"context"
	"errors"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/ports/out/directory"
)

// DirectoryService is the federated variant of the user surface: reads go
// straight to the external identity directory, translated into the local DTO
// shape. There is no local persistence for profile data and no write path.
type DirectoryService struct {
	dir directory.Directory
}

func NewDirectoryService(dir directory.Directory) *DirectoryService {
	return &DirectoryService{dir: dir}
}

func (s *DirectoryService) List(ctx context.Context) ([]domain.User, error) {
	us, err := s.dir.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(us))
	for _, u := range us {
		out = append(out, toLocalShape(u))
	}
	return out, nil
}

func (s *DirectoryService) Get(ctx context.Context, username string) (domain.User, error) {
	u, err := s.dir.UserByUsername(ctx, domain.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return domain.User{}, notFoundError()
		}
		return domain.User{}, err
	}
	return toLocalShape(u), nil
}

// toLocalShape maps a directory profile onto the local user DTO. The password
// field stays empty: credentials live with the identity provider.
func toLocalShape(u domain.DirectoryUser) domain.User {
	return domain.User{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
