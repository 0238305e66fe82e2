// Package contracttest holds behavioral contract suites shared by every
// implementation of the outbound repository ports. The memory and postgres
// adapters both run them, so a semantic drift between backends shows up as a
// test failure rather than a production surprise.
package contracttest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	triprepoport "github.com/wayfare-app/wayfare-api/internal/ports/out/triprepo"
	userrepoport "github.com/wayfare-app/wayfare-api/internal/ports/out/userrepo"
)

type CleanupFunc = func()

type TripRepoFactory func(t *testing.T) (triprepoport.Repository, CleanupFunc)
type UserRepoFactory func(t *testing.T) (userrepoport.Repository, CleanupFunc)

func baseTrip() triprepoport.Trip {
	details := "roadtrip"
	return triprepoport.Trip{
		Title:     "Coast Drive",
		Details:   &details,
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC),
		Destinations: []domain.Destination{
			{ID: "place-sf", City: "San Francisco", Region: "CA", Country: "USA"},
			{ID: "place-la", City: "Los Angeles", Region: "CA", Country: "USA"},
		},
		MemberUsernames: []string{"a@example.com", "b@example.com"},
		Todos: []domain.TodoItem{
			{Task: "Rent car", Complete: false},
			{Task: "Plan stops", Complete: true},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func RunTripRepo(t *testing.T, newRepo TripRepoFactory) {
	t.Helper()

	t.Run("CreateAssignsIDsAndRoundTrips", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		created, err := repo.Create(ctx, baseTrip())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.ID == 0 {
			t.Fatalf("expected assigned trip id")
		}
		for _, td := range created.Todos {
			if td.ID == 0 {
				t.Fatalf("todo without id: %+v", created.Todos)
			}
		}

		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Title != "Coast Drive" || len(got.Destinations) != 2 || len(got.MemberUsernames) != 2 || len(got.Todos) != 2 {
			t.Fatalf("round trip lost data: %+v", got)
		}
		if got.Details == nil || *got.Details != "roadtrip" {
			t.Fatalf("details lost: %v", got.Details)
		}
	})

	t.Run("GetMissingReturnsNotFound", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		if _, err := repo.GetByID(context.Background(), 987654); err != triprepoport.ErrNotFound {
			t.Fatalf("err=%v, want ErrNotFound", err)
		}
	})

	t.Run("ReplaceSwapsChildren", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		created, err := repo.Create(ctx, baseTrip())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		next := baseTrip()
		next.ID = created.ID
		next.Title = "Desert Drive"
		next.Destinations = []domain.Destination{{ID: "place-lv", City: "Las Vegas", Region: "NV", Country: "USA"}}
		next.MemberUsernames = []string{"c@example.com"}
		next.Todos = []domain.TodoItem{{Task: "Book hotel", Complete: false}}
		next.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

		replaced, err := repo.Replace(ctx, next)
		if err != nil {
			t.Fatalf("Replace: %v", err)
		}
		if replaced.Title != "Desert Drive" {
			t.Fatalf("title not replaced: %q", replaced.Title)
		}
		if len(replaced.Destinations) != 1 || len(replaced.MemberUsernames) != 1 || len(replaced.Todos) != 1 {
			t.Fatalf("children not replaced: %+v", replaced)
		}
		if !replaced.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("CreatedAt changed: %v -> %v", created.CreatedAt, replaced.CreatedAt)
		}

		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetByID after replace: %v", err)
		}
		if len(got.MemberUsernames) != 1 || got.MemberUsernames[0] != "c@example.com" {
			t.Fatalf("members not persisted: %v", got.MemberUsernames)
		}
	})

	t.Run("ReplaceMissingReturnsNotFound", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		missing := baseTrip()
		missing.ID = 987654
		if _, err := repo.Replace(context.Background(), missing); err != triprepoport.ErrNotFound {
			t.Fatalf("err=%v, want ErrNotFound", err)
		}
	})

	t.Run("DestinationsDedupAcrossTrips", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		if _, err := repo.Create(ctx, baseTrip()); err != nil {
			t.Fatalf("Create first: %v", err)
		}
		second := baseTrip()
		second.Destinations = []domain.Destination{
			{ID: "place-sf", City: "SAN FRANCISCO", Region: "CA", Country: "USA"},
		}
		got, err := repo.Create(ctx, second)
		if err != nil {
			t.Fatalf("Create second: %v", err)
		}
		// The stored destination row wins over the resubmitted fields.
		if got.Destinations[0].City != "San Francisco" {
			t.Fatalf("stored destination not reused: %+v", got.Destinations[0])
		}

		dests, err := repo.ListDestinations(ctx)
		if err != nil {
			t.Fatalf("ListDestinations: %v", err)
		}
		count := 0
		for _, d := range dests {
			if d.ID == "place-sf" {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("place-sf appears %d times, want 1", count)
		}
	})

	t.Run("ListOrderedByID", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		var ids []domain.TripID
		for i := 0; i < 3; i++ {
			created, err := repo.Create(ctx, baseTrip())
			if err != nil {
				t.Fatalf("Create %d: %v", i, err)
			}
			ids = append(ids, created.ID)
		}
		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) < 3 {
			t.Fatalf("got %d trips, want at least 3", len(got))
		}
		pos := map[domain.TripID]int{}
		for i, tr := range got {
			pos[tr.ID] = i
		}
		if !(pos[ids[0]] < pos[ids[1]] && pos[ids[1]] < pos[ids[2]]) {
			t.Fatalf("trips not ordered by id: %v", pos)
		}
	})

	t.Run("DeleteCascades", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		created, err := repo.Create(ctx, baseTrip())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := repo.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := repo.GetByID(ctx, created.ID); err != triprepoport.ErrNotFound {
			t.Fatalf("err=%v, want ErrNotFound", err)
		}
		if err := repo.Delete(ctx, created.ID); err != triprepoport.ErrNotFound {
			t.Fatalf("second delete err=%v, want ErrNotFound", err)
		}
	})

	t.Run("PhotosAddAndRemove", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		created, err := repo.Create(ctx, baseTrip())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		photo := domain.Photo{
			ID:          domain.PhotoID(uuid.NewString()),
			TripID:      created.ID,
			FileName:    "dunes.jpg",
			ContentType: "image/jpeg",
			URL:         "https://blobs.test/photos/dunes.jpg",
			UploadedBy:  "a@example.com",
			CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		}
		if err := repo.AddPhoto(ctx, created.ID, photo); err != nil {
			t.Fatalf("AddPhoto: %v", err)
		}

		dup := photo
		dup.ID = domain.PhotoID(uuid.NewString())
		if err := repo.AddPhoto(ctx, created.ID, dup); err != triprepoport.ErrDuplicateFilename {
			t.Fatalf("duplicate filename err=%v, want ErrDuplicateFilename", err)
		}

		if err := repo.AddPhoto(ctx, 987654, photo); err != triprepoport.ErrNotFound {
			t.Fatalf("missing trip err=%v, want ErrNotFound", err)
		}

		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if len(got.Photos) != 1 || got.Photos[0].FileName != "dunes.jpg" {
			t.Fatalf("unexpected photos: %+v", got.Photos)
		}

		// Unknown photo ids are ignored.
		err = repo.RemovePhotos(ctx, created.ID, []domain.PhotoID{
			photo.ID,
			domain.PhotoID(uuid.NewString()),
		})
		if err != nil {
			t.Fatalf("RemovePhotos: %v", err)
		}
		got, err = repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetByID after remove: %v", err)
		}
		if len(got.Photos) != 0 {
			t.Fatalf("photos left after remove: %+v", got.Photos)
		}
	})
}

func RunUserRepo(t *testing.T, newRepo UserRepoFactory) {
	t.Helper()

	baseUser := func(username string) userrepoport.User {
		now := time.Now().UTC().Truncate(time.Millisecond)
		return userrepoport.User{
			Username:  username,
			Password:  "opaque",
			FirstName: "First",
			LastName:  "Last",
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		if err := repo.Create(ctx, baseUser("a@example.com")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		got, err := repo.GetByUsername(ctx, "a@example.com")
		if err != nil {
			t.Fatalf("GetByUsername: %v", err)
		}
		if got.FirstName != "First" || got.Password != "opaque" {
			t.Fatalf("round trip lost data: %+v", got)
		}

		if err := repo.Create(ctx, baseUser("a@example.com")); err != userrepoport.ErrAlreadyExists {
			t.Fatalf("duplicate err=%v, want ErrAlreadyExists", err)
		}
	})

	t.Run("UpdatePreservesCreatedAt", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		u := baseUser("a@example.com")
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}
		upd := u
		upd.FirstName = "Changed"
		upd.UpdatedAt = u.UpdatedAt.Add(time.Minute)
		if err := repo.Update(ctx, upd); err != nil {
			t.Fatalf("Update: %v", err)
		}
		got, err := repo.GetByUsername(ctx, "a@example.com")
		if err != nil {
			t.Fatalf("GetByUsername: %v", err)
		}
		if got.FirstName != "Changed" {
			t.Fatalf("update not applied: %+v", got)
		}
		if !got.CreatedAt.Equal(u.CreatedAt) {
			t.Fatalf("CreatedAt changed: %v -> %v", u.CreatedAt, got.CreatedAt)
		}

		missing := baseUser("ghost@example.com")
		if err := repo.Update(ctx, missing); err != userrepoport.ErrNotFound {
			t.Fatalf("missing err=%v, want ErrNotFound", err)
		}
	})

	t.Run("ListOrderedByUsername", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		for _, u := range []string{"c@example.com", "a@example.com", "b@example.com"} {
			if err := repo.Create(ctx, baseUser(u)); err != nil {
				t.Fatalf("Create %s: %v", u, err)
			}
		}
		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d users, want 3", len(got))
		}
		for i, want := range []string{"a@example.com", "b@example.com", "c@example.com"} {
			if got[i].Username != want {
				t.Fatalf("position %d: got %q want %q", i, got[i].Username, want)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		if err := repo.Create(ctx, baseUser("a@example.com")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := repo.Delete(ctx, "a@example.com"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := repo.GetByUsername(ctx, "a@example.com"); err != userrepoport.ErrNotFound {
			t.Fatalf("err=%v, want ErrNotFound", err)
		}
		if err := repo.Delete(ctx, "a@example.com"); err != userrepoport.ErrNotFound {
			t.Fatalf("second delete err=%v, want ErrNotFound", err)
		}
	})
}
