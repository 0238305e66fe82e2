package users

import (
	"context"
	"errors"
	"time"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/ports/out/userrepo"
)

// UserInput is the write shape for Add and Update.
type UserInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

type Service struct {
	users userrepo.Repository
}

func NewService(usersRepo userrepo.Repository) *Service {
	return &Service{users: usersRepo}
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(us))
	for _, u := range us {
		out = append(out, userrepo.ToDomain(u))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, username string) (domain.User, error) {
	u, err := s.users.GetByUsername(ctx, domain.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, notFoundError()
		}
		return domain.User{}, err
	}
	return userrepo.ToDomain(u), nil
}

func (s *Service) Add(ctx context.Context, in *UserInput) (domain.User, error) {
	if in == nil {
		return domain.User{}, &Error{Status: 400, Code: "USER_REQUIRED", Message: "user is required"}
	}
	username := domain.NormalizeUsername(in.Username)
	if username == "" {
		return domain.User{}, &Error{Status: 400, Code: "USERNAME_REQUIRED", Message: "username is required"}
	}

	now := time.Now().UTC()
	rec := userrepo.User{
		Username:  username,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, rec); err != nil {
		if errors.Is(err, userrepo.ErrAlreadyExists) {
			return domain.User{}, &Error{
				Status:  409,
				Code:    "USERNAME_EXISTS",
				Message: "username already exists",
				Details: map[string]any{"username": username},
			}
		}
		return domain.User{}, err
	}
	return userrepo.ToDomain(rec), nil
}

func (s *Service) Update(ctx context.Context, username string, in *UserInput) (domain.User, error) {
	if in == nil {
		return domain.User{}, &Error{Status: 400, Code: "USER_REQUIRED", Message: "user is required"}
	}
	username = domain.NormalizeUsername(username)
	if username != domain.NormalizeUsername(in.Username) {
		return domain.User{}, &Error{
			Status:  400,
			Code:    "USERNAME_MISMATCH",
			Message: "username in path does not match body",
			Details: map[string]any{"pathUsername": username, "bodyUsername": in.Username},
		}
	}

	// Username is the natural key; only the profile fields move.
	rec := userrepo.User{
		Username:  username,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.users.Update(ctx, rec); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, notFoundError()
		}
		return domain.User{}, err
	}
	return s.Get(ctx, username)
}

func (s *Service) Delete(ctx context.Context, username string) error {
	// Trip memberships referencing the username are not detached here; reads
	// degrade to a bare-username member entry.
	err := s.users.Delete(ctx, domain.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return notFoundError()
		}
		return err
	}
	return nil
}

func notFoundError() *Error {
	return &Error{Status: 404, Code: "USER_NOT_FOUND", Message: "user not found"}
}
