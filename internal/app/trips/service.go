package trips

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/ports/out/blobstore"
	"github.com/wayfare-app/wayfare-api/internal/ports/out/triprepo"
)

// externalFanout bounds concurrent profile lookups and blob deletes. The
// external calls have no ordering dependency between items, so they run
// fanned out instead of one by one.
const externalFanout = 4

type Service struct {
	trips   triprepo.Repository
	members MemberSource
	blobs   blobstore.Store

	newPhotoID func() domain.PhotoID
}

func NewService(tripsRepo triprepo.Repository, members MemberSource, blobs blobstore.Store) *Service {
	return &Service{
		trips:   tripsRepo,
		members: members,
		blobs:   blobs,
		newPhotoID: func() domain.PhotoID {
			return domain.PhotoID(uuid.NewString())
		},
	}
}

// SetNewPhotoIDForTest overrides photo ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewPhotoIDForTest(fn func() domain.PhotoID) {
	if fn != nil {
		s.newPhotoID = fn
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Trip, error) {
	ts, err := s.trips.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Trip, 0, len(ts))
	for _, t := range ts {
		d, err := s.hydrate(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.Trip{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return domain.Trip{}, err
	}
	return s.hydrate(ctx, t)
}

func (s *Service) Add(ctx context.Context, in *TripInput) (domain.Trip, error) {
	if err := s.validateTripInput(ctx, in); err != nil {
		return domain.Trip{}, err
	}

	now := time.Now().UTC()
	rec := s.toRecord(in)
	rec.CreatedAt = now
	rec.UpdatedAt = now

	created, err := s.trips.Create(ctx, rec)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.hydrate(ctx, created)
}

func (s *Service) Update(ctx context.Context, id domain.TripID, in *TripInput) (domain.Trip, error) {
	if err := s.validateTripInput(ctx, in); err != nil {
		return domain.Trip{}, err
	}
	if in.ID != id {
		return domain.Trip{}, &Error{
			Status:  400,
			Code:    "ID_MISMATCH",
			Message: "trip id in path does not match body",
			Details: map[string]any{"pathId": int64(id), "bodyId": int64(in.ID)},
		}
	}

	rec := s.toRecord(in)
	rec.ID = id
	rec.UpdatedAt = time.Now().UTC()

	replaced, err := s.trips.Replace(ctx, rec)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.Trip{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return domain.Trip{}, err
	}
	return s.hydrate(ctx, replaced)
}

func (s *Service) Delete(ctx context.Context, id domain.TripID) error {
	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return err
	}

	if err := s.deleteBlobs(ctx, t.Photos); err != nil {
		return err
	}
	if err := s.trips.Delete(ctx, id); err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return err
	}
	return nil
}

func (s *Service) AddPhoto(ctx context.Context, id domain.TripID, in *PhotoInput, file io.Reader) (domain.Trip, error) {
	if in == nil {
		return domain.Trip{}, &Error{Status: 400, Code: "PHOTO_REQUIRED", Message: "photo is required"}
	}
	if in.ContentType != "image/jpeg" && in.ContentType != "image/png" {
		return domain.Trip{}, &Error{
			Status:  400,
			Code:    "INVALID_FILE_TYPE",
			Message: "invalid file type",
			Details: map[string]any{"contentType": in.ContentType},
		}
	}
	if in.TripID != id {
		return domain.Trip{}, &Error{
			Status:  400,
			Code:    "ID_MISMATCH",
			Message: "trip id in path does not match photo",
			Details: map[string]any{"pathId": int64(id), "bodyId": int64(in.TripID)},
		}
	}

	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.Trip{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return domain.Trip{}, err
	}

	// The blob store overwrites on filename collision, so the conflict check
	// must happen before the upload.
	for _, p := range t.Photos {
		if p.FileName == in.FileName {
			return domain.Trip{}, duplicateFilenameError(in.FileName)
		}
	}

	url, err := s.blobs.Upload(ctx, file, in.FileName, in.ContentType)
	if err != nil {
		return domain.Trip{}, err
	}

	photo := domain.Photo{
		ID:          s.newPhotoID(),
		TripID:      id,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		URL:         url,
		UploadedBy:  domain.NormalizeUsername(in.UploadedBy),
		AltText:     in.AltText,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.trips.AddPhoto(ctx, id, photo); err != nil {
		if errors.Is(err, triprepo.ErrDuplicateFilename) {
			// Lost a race with a concurrent upload of the same filename.
			return domain.Trip{}, duplicateFilenameError(in.FileName)
		}
		return domain.Trip{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) RemovePhotos(ctx context.Context, id domain.TripID, photos []RemovePhotoInput) (domain.Trip, error) {
	if len(photos) == 0 {
		return domain.Trip{}, &Error{Status: 400, Code: "PHOTOS_REQUIRED", Message: "at least one photo is required"}
	}
	for _, p := range photos {
		if p.TripID != id {
			return domain.Trip{}, &Error{
				Status:  400,
				Code:    "ID_MISMATCH",
				Message: "trip id in path does not match photo",
				Details: map[string]any{"pathId": int64(id), "photoId": string(p.ID)},
			}
		}
	}

	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.Trip{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return domain.Trip{}, err
	}

	// Only photos actually on the trip are touched; unknown IDs are no-ops.
	onTrip := make(map[domain.PhotoID]domain.Photo, len(t.Photos))
	for _, p := range t.Photos {
		onTrip[p.ID] = p
	}
	ids := make([]domain.PhotoID, 0, len(photos))
	doomed := make([]domain.Photo, 0, len(photos))
	for _, p := range photos {
		existing, ok := onTrip[p.ID]
		if !ok {
			continue
		}
		ids = append(ids, p.ID)
		doomed = append(doomed, existing)
	}

	if len(ids) > 0 {
		if err := s.trips.RemovePhotos(ctx, id, ids); err != nil {
			return domain.Trip{}, err
		}
		if err := s.deleteBlobs(ctx, doomed); err != nil {
			return domain.Trip{}, err
		}
	}
	return s.Get(ctx, id)
}

func (s *Service) validateTripInput(ctx context.Context, in *TripInput) error {
	if in == nil {
		return &Error{Status: 400, Code: "TRIP_REQUIRED", Message: "trip is required"}
	}
	if len(in.Destinations) == 0 {
		return &Error{Status: 400, Code: "DESTINATIONS_REQUIRED", Message: "trip must have at least one destination"}
	}
	if len(in.Members) == 0 {
		return &Error{Status: 400, Code: "MEMBERS_REQUIRED", Message: "trip must have at least one member"}
	}

	// Every member must resolve before anything is written; an unknown
	// username rejects the whole request with no partial write.
	for _, username := range in.Members {
		username = domain.NormalizeUsername(username)
		if _, err := s.members.Lookup(ctx, username); err != nil {
			if errors.Is(err, ErrUnknownMember) {
				return &Error{
					Status:  400,
					Code:    "MEMBER_NOT_FOUND",
					Message: "trip member does not exist",
					Details: map[string]any{"username": username},
				}
			}
			return err
		}
	}
	return nil
}

func (s *Service) toRecord(in *TripInput) triprepo.Trip {
	members := make([]string, 0, len(in.Members))
	for _, username := range in.Members {
		members = append(members, domain.NormalizeUsername(username))
	}

	photos := make([]domain.Photo, 0, len(in.Photos))
	for _, p := range in.Photos {
		if p.ID == "" {
			p.ID = s.newPhotoID()
		}
		photos = append(photos, p)
	}

	return triprepo.Trip{
		Title:           domain.NormalizeTitle(in.Title),
		Details:         cloneStringPtr(in.Details),
		StartDate:       in.StartDate.UTC(),
		EndDate:         in.EndDate.UTC(),
		CoverImageURL:   cloneStringPtr(in.CoverImageURL),
		Destinations:    append([]domain.Destination(nil), in.Destinations...),
		MemberUsernames: members,
		Todos:           append([]domain.TodoItem(nil), in.Todos...),
		Photos:          photos,
	}
}

// hydrate maps the persistence shape to the read model, resolving member
// profiles through the configured source. A membership whose identity no
// longer resolves keeps its username with an otherwise empty profile.
func (s *Service) hydrate(ctx context.Context, t triprepo.Trip) (domain.Trip, error) {
	members := make([]domain.TripMember, len(t.MemberUsernames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(externalFanout)
	for i, username := range t.MemberUsernames {
		i, username := i, username
		g.Go(func() error {
			m, err := s.members.Lookup(gctx, username)
			if err != nil {
				if errors.Is(err, ErrUnknownMember) {
					members[i] = domain.TripMember{Username: username}
					return nil
				}
				return err
			}
			members[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Trip{}, err
	}

	return domain.Trip{
		ID:            t.ID,
		Title:         t.Title,
		Details:       cloneStringPtr(t.Details),
		StartDate:     t.StartDate,
		EndDate:       t.EndDate,
		CoverImageURL: cloneStringPtr(t.CoverImageURL),
		Destinations:  append([]domain.Destination(nil), t.Destinations...),
		Members:       members,
		Todos:         append([]domain.TodoItem(nil), t.Todos...),
		Photos:        append([]domain.Photo(nil), t.Photos...),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}, nil
}

func (s *Service) deleteBlobs(ctx context.Context, photos []domain.Photo) error {
	if len(photos) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(externalFanout)
	for _, p := range photos {
		p := p
		g.Go(func() error {
			// A blob that is already gone is fine; the row is the source of truth.
			_, err := s.blobs.Delete(gctx, p.FileName)
			return err
		})
	}
	return g.Wait()
}

func duplicateFilenameError(fileName string) *Error {
	return &Error{
		Status:  409,
		Code:    "DUPLICATE_FILENAME",
		Message: "a photo with this filename already exists on the trip",
		Details: map[string]any{"fileName": fileName},
	}
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
