package trips

import (
	"context"
	"errors"
	"strings"

	"github.com/wayfare-app/wayfare-api/internal/ports/out/directory"
	"github.com/wayfare-app/wayfare-api/internal/ports/out/userrepo"

	"github.com/wayfare-app/wayfare-api/internal/domain"
)

// ErrUnknownMember is returned by a MemberSource when the referenced identity
// does not exist. The service maps it to a BadRequest.
var ErrUnknownMember = errors.New("unknown trip member")

// MemberSource resolves a trip-member username to a hydrated profile. Two
// implementations exist: the local user store and the federated identity
// directory.
type MemberSource interface {
	Lookup(ctx context.Context, username string) (domain.TripMember, error)
}

type localMembers struct {
	users userrepo.Repository
}

// LocalMembers resolves members against the local user store.
func LocalMembers(users userrepo.Repository) MemberSource {
	return &localMembers{users: users}
}

func (s *localMembers) Lookup(ctx context.Context, username string) (domain.TripMember, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.TripMember{}, ErrUnknownMember
		}
		return domain.TripMember{}, err
	}
	return domain.TripMember{
		Username:    u.Username,
		DisplayName: strings.TrimSpace(u.FirstName + " " + u.LastName),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
	}, nil
}

type directoryMembers struct {
	dir directory.Directory
}

// DirectoryMembers resolves members against the external identity directory.
func DirectoryMembers(dir directory.Directory) MemberSource {
	return &directoryMembers{dir: dir}
}

func (s *directoryMembers) Lookup(ctx context.Context, username string) (domain.TripMember, error) {
	u, err := s.dir.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return domain.TripMember{}, ErrUnknownMember
		}
		return domain.TripMember{}, err
	}
	return domain.TripMember{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
	}, nil
}
