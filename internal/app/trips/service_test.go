package trips_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	memblob "github.com/wayfare-app/wayfare-api/internal/adapters/memory/blobstore"
	memdirectory "github.com/wayfare-app/wayfare-api/internal/adapters/memory/directory"
	memtriprepo "github.com/wayfare-app/wayfare-api/internal/adapters/memory/triprepo"
	memuserrepo "github.com/wayfare-app/wayfare-api/internal/adapters/memory/userrepo"
	"github.com/wayfare-app/wayfare-api/internal/app/trips"
	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/ports/out/userrepo"
)

type fixture struct {
	svc   *trips.Service
	repo  *memtriprepo.Repo
	blobs *memblob.Store
}

func newFixture(t *testing.T, usernames ...string) *fixture {
	t.Helper()
	usersRepo := memuserrepo.NewRepo()
	for _, u := range usernames {
		err := usersRepo.Create(context.Background(), userrepo.User{
			Username:  u,
			FirstName: "Test",
			LastName:  "User",
		})
		if err != nil {
			t.Fatalf("seed user %s: %v", u, err)
		}
	}
	repo := memtriprepo.NewRepo()
	blobs := memblob.NewStore("https://blobs.test/photos")
	return &fixture{
		svc:   trips.NewService(repo, trips.LocalMembers(usersRepo), blobs),
		repo:  repo,
		blobs: blobs,
	}
}

func validInput(members ...string) *trips.TripInput {
	details := "A week away"
	return &trips.TripInput{
		Title:     "Spring Break",
		Details:   &details,
		StartDate: time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		Destinations: []domain.Destination{
			{ID: "ChIJw4OtV8ZZwokRn-zvhYiYgZc", City: "New York", Region: "NY", Country: "USA"},
		},
		Members: members,
		Todos: []domain.TodoItem{
			{Task: "Book flights", Complete: false},
			{Task: "Reserve hotel", Complete: true},
		},
	}
}

func TestAddAndGetTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")
	ctx := context.Background()

	created, err := f.svc.Add(ctx, validInput("jmoran@ceiamerica.com"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned trip id")
	}
	if len(created.Todos) != 2 || created.Todos[0].ID == 0 {
		t.Fatalf("todos not numbered: %+v", created.Todos)
	}
	if len(created.Members) != 1 {
		t.Fatalf("got %d members, want 1", len(created.Members))
	}
	m := created.Members[0]
	if m.Username != "jmoran@ceiamerica.com" || m.DisplayName != "Test User" {
		t.Fatalf("member not hydrated: %+v", m)
	}

	got, err := f.svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Spring Break" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if got.Details == nil || *got.Details != "A week away" {
		t.Fatalf("details lost: %v", got.Details)
	}
}

func TestAddTripValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")
	ctx := context.Background()

	cases := []struct {
		name     string
		mutate   func(*trips.TripInput)
		nilInput bool
		wantCode string
	}{
		{name: "nil trip", nilInput: true, wantCode: "TRIP_REQUIRED"},
		{name: "no destinations", mutate: func(in *trips.TripInput) { in.Destinations = nil }, wantCode: "DESTINATIONS_REQUIRED"},
		{name: "no members", mutate: func(in *trips.TripInput) { in.Members = nil }, wantCode: "MEMBERS_REQUIRED"},
		{name: "unknown member", mutate: func(in *trips.TripInput) { in.Members = []string{"ghost@example.com"} }, wantCode: "MEMBER_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput("jmoran@ceiamerica.com")
			if tc.mutate != nil {
				tc.mutate(in)
			}
			if tc.nilInput {
				in = nil
			}
			_, err := f.svc.Add(ctx, in)
			if got := appCode(err); got != tc.wantCode {
				t.Fatalf("got code %q (err %v), want %q", got, err, tc.wantCode)
			}
			var appErr *trips.Error
			if errors.As(err, &appErr) && appErr.Status != 400 {
				t.Fatalf("status %d, want 400", appErr.Status)
			}
		})
	}

	// Nothing should have been written by any of the rejected requests.
	all, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("rejected adds leaked %d trips", len(all))
	}
}

func TestUpdateReplacesChildren(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com", "dummyuser@dummy.dum")
	ctx := context.Background()

	created, err := f.svc.Add(ctx, validInput("jmoran@ceiamerica.com", "dummyuser@dummy.dum"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	var withPhotos domain.Trip
	for _, name := range []string{"keep.jpg", "drop.jpg"} {
		withPhotos, err = f.svc.AddPhoto(ctx, created.ID, &trips.PhotoInput{
			TripID: created.ID, FileName: name, ContentType: "image/jpeg",
		}, strings.NewReader(name))
		if err != nil {
			t.Fatalf("AddPhoto %s: %v", name, err)
		}
	}

	in := validInput("dummyuser@dummy.dum")
	in.ID = created.ID
	in.Title = "Fall Break"
	// Photos follow the same full-replace rule as the other collections.
	in.Photos = []domain.Photo{withPhotos.Photos[0]}
	in.Destinations = []domain.Destination{
		{ID: "ChIJOwg_06VPwokRYv534QaPC8g", City: "Brooklyn", Region: "NY", Country: "USA"},
	}
	in.Todos = []domain.TodoItem{{Task: "Pack", Complete: false}}

	updated, err := f.svc.Update(ctx, created.ID, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Fall Break" {
		t.Fatalf("title not replaced: %q", updated.Title)
	}
	if len(updated.Members) != 1 || updated.Members[0].Username != "dummyuser@dummy.dum" {
		t.Fatalf("members not replaced: %+v", updated.Members)
	}
	if len(updated.Destinations) != 1 || updated.Destinations[0].City != "Brooklyn" {
		t.Fatalf("destinations not replaced: %+v", updated.Destinations)
	}
	if len(updated.Todos) != 1 || updated.Todos[0].Task != "Pack" {
		t.Fatalf("todos not replaced: %+v", updated.Todos)
	}
	if len(updated.Photos) != 1 || updated.Photos[0].FileName != "keep.jpg" {
		t.Fatalf("photos not replaced with the request's set: %+v", updated.Photos)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("CreatedAt changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
}

func TestUpdateIDMismatchLeavesTripsUntouched(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")
	ctx := context.Background()

	first, err := f.svc.Add(ctx, validInput("jmoran@ceiamerica.com"))
	if err != nil {
		t.Fatalf("Add first: %v", err)
	}
	second, err := f.svc.Add(ctx, validInput("jmoran@ceiamerica.com"))
	if err != nil {
		t.Fatalf("Add second: %v", err)
	}

	in := validInput("jmoran@ceiamerica.com")
	in.ID = second.ID
	in.Title = "Hijacked"
	_, err = f.svc.Update(ctx, first.ID, in)
	if appCode(err) != "ID_MISMATCH" {
		t.Fatalf("expected id mismatch, got %v", err)
	}

	for _, id := range []domain.TripID{first.ID, second.ID} {
		got, err := f.svc.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get %d: %v", id, err)
		}
		if got.Title == "Hijacked" {
			t.Fatalf("trip %d was mutated by rejected update", id)
		}
	}
}

func TestUpdateMissingTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")

	in := validInput("jmoran@ceiamerica.com")
	in.ID = 404
	_, err := f.svc.Update(context.Background(), 404, in)
	if appCode(err) != "TRIP_NOT_FOUND" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDestinationsDedupByPlaceID(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")
	ctx := context.Background()

	if _, err := f.svc.Add(ctx, validInput("jmoran@ceiamerica.com")); err != nil {
		t.Fatalf("Add first: %v", err)
	}
	// Same place id, different casing on the city; the stored row wins.
	in := validInput("jmoran@ceiamerica.com")
	in.Destinations = []domain.Destination{
		{ID: "ChIJw4OtV8ZZwokRn-zvhYiYgZc", City: "NEW YORK", Region: "NY", Country: "USA"},
	}
	second, err := f.svc.Add(ctx, in)
	if err != nil {
		t.Fatalf("Add second: %v", err)
	}
	if second.Destinations[0].City != "New York" {
		t.Fatalf("stored destination not reused: %+v", second.Destinations[0])
	}

	dests, err := f.repo.ListDestinations(ctx)
	if err != nil {
		t.Fatalf("ListDestinations: %v", err)
	}
	if len(dests) != 1 {
		t.Fatalf("got %d destination rows, want 1", len(dests))
	}
}

func TestDeleteTripRemovesBlobs(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")
	ctx := context.Background()

	created, err := f.svc.Add(ctx, validInput("jmoran@ceiamerica.com"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	for i := 0; i < 3; i++ {
		_, err := f.svc.AddPhoto(ctx, created.ID, &trips.PhotoInput{
			TripID:      created.ID,
			FileName:    fmt.Sprintf("beach-%d.jpg", i),
			ContentType: "image/jpeg",
			UploadedBy:  "jmoran@ceiamerica.com",
		}, strings.NewReader("jpegbytes"))
		if err != nil {
			t.Fatalf("AddPhoto %d: %v", i, err)
		}
	}
	if f.blobs.Len() != 3 {
		t.Fatalf("got %d blobs before delete, want 3", f.blobs.Len())
	}

	if err := f.svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, created.ID); appCode(err) != "TRIP_NOT_FOUND" {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if f.blobs.Len() != 0 {
		t.Fatalf("%d blobs left after delete", f.blobs.Len())
	}
	if f.blobs.DeleteCount() != 3 {
		t.Fatalf("got %d blob deletes, want 3", f.blobs.DeleteCount())
	}
}

func TestDeleteMissingTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")
	if err := f.svc.Delete(context.Background(), 404); appCode(err) != "TRIP_NOT_FOUND" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddPhoto(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")
	ctx := context.Background()

	created, err := f.svc.Add(ctx, validInput("jmoran@ceiamerica.com"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	f.svc.SetNewPhotoIDForTest(func() domain.PhotoID { return "11111111-1111-1111-1111-111111111111" })

	got, err := f.svc.AddPhoto(ctx, created.ID, &trips.PhotoInput{
		TripID:      created.ID,
		FileName:    "sunset.png",
		ContentType: "image/png",
		UploadedBy:  "JMoran@CEIAmerica.com",
		AltText:     "Sunset over the bay",
	}, strings.NewReader("pngbytes"))
	if err != nil {
		t.Fatalf("AddPhoto: %v", err)
	}
	if len(got.Photos) != 1 {
		t.Fatalf("got %d photos, want 1", len(got.Photos))
	}
	p := got.Photos[0]
	if p.ID != "11111111-1111-1111-1111-111111111111" {
		t.Fatalf("unexpected photo id %q", p.ID)
	}
	if p.UploadedBy != "jmoran@ceiamerica.com" {
		t.Fatalf("uploader not normalized: %q", p.UploadedBy)
	}
	if !strings.HasSuffix(p.URL, "/sunset.png") {
		t.Fatalf("unexpected URL %q", p.URL)
	}
	if f.blobs.Len() != 1 {
		t.Fatalf("got %d blobs, want 1", f.blobs.Len())
	}
}

func TestAddPhotoRejectsBadInput(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")
	ctx := context.Background()

	created, err := f.svc.Add(ctx, validInput("jmoran@ceiamerica.com"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := f.svc.AddPhoto(ctx, created.ID, nil, strings.NewReader("x")); appCode(err) != "PHOTO_REQUIRED" {
		t.Fatalf("nil photo: %v", err)
	}
	_, err = f.svc.AddPhoto(ctx, created.ID, &trips.PhotoInput{
		TripID: created.ID, FileName: "notes.pdf", ContentType: "application/pdf",
	}, strings.NewReader("x"))
	if appCode(err) != "INVALID_FILE_TYPE" {
		t.Fatalf("pdf upload: %v", err)
	}
	_, err = f.svc.AddPhoto(ctx, created.ID, &trips.PhotoInput{
		TripID: created.ID + 1, FileName: "a.jpg", ContentType: "image/jpeg",
	}, strings.NewReader("x"))
	if appCode(err) != "ID_MISMATCH" {
		t.Fatalf("trip id mismatch: %v", err)
	}
	_, err = f.svc.AddPhoto(ctx, 404, &trips.PhotoInput{
		TripID: 404, FileName: "a.jpg", ContentType: "image/jpeg",
	}, strings.NewReader("x"))
	if appCode(err) != "TRIP_NOT_FOUND" {
		t.Fatalf("missing trip: %v", err)
	}
	if f.blobs.UploadCount() != 0 {
		t.Fatalf("rejected uploads reached the blob store: %d", f.blobs.UploadCount())
	}
}

func TestAddPhotoDuplicateFilename(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")
	ctx := context.Background()

	created, err := f.svc.Add(ctx, validInput("jmoran@ceiamerica.com"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	in := &trips.PhotoInput{TripID: created.ID, FileName: "beach.jpg", ContentType: "image/jpeg"}
	if _, err := f.svc.AddPhoto(ctx, created.ID, in, strings.NewReader("first")); err != nil {
		t.Fatalf("first AddPhoto: %v", err)
	}

	_, err = f.svc.AddPhoto(ctx, created.ID, in, strings.NewReader("second"))
	var appErr *trips.Error
	if !errors.As(err, &appErr) || appErr.Status != 409 || appErr.Code != "DUPLICATE_FILENAME" {
		t.Fatalf("expected 409 duplicate filename, got %v", err)
	}
	// The conflicting upload must be rejected before it reaches the store,
	// otherwise it would overwrite the existing blob.
	if f.blobs.UploadCount() != 1 {
		t.Fatalf("got %d uploads, want 1", f.blobs.UploadCount())
	}
}

func TestRemovePhotos(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")
	ctx := context.Background()

	created, err := f.svc.Add(ctx, validInput("jmoran@ceiamerica.com"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	var withPhotos domain.Trip
	for _, name := range []string{"one.jpg", "two.jpg", "three.jpg"} {
		withPhotos, err = f.svc.AddPhoto(ctx, created.ID, &trips.PhotoInput{
			TripID: created.ID, FileName: name, ContentType: "image/jpeg",
		}, strings.NewReader(name))
		if err != nil {
			t.Fatalf("AddPhoto %s: %v", name, err)
		}
	}

	remove := []trips.RemovePhotoInput{
		{ID: withPhotos.Photos[0].ID, TripID: created.ID, FileName: "one.jpg"},
		{ID: withPhotos.Photos[2].ID, TripID: created.ID, FileName: "three.jpg"},
		{ID: "99999999-9999-9999-9999-999999999999", TripID: created.ID, FileName: "ghost.jpg"},
	}
	got, err := f.svc.RemovePhotos(ctx, created.ID, remove)
	if err != nil {
		t.Fatalf("RemovePhotos: %v", err)
	}
	if len(got.Photos) != 1 || got.Photos[0].FileName != "two.jpg" {
		t.Fatalf("unexpected photos after removal: %+v", got.Photos)
	}
	// Two real photos removed; the unknown id must not produce a blob delete.
	if f.blobs.DeleteCount() != 2 {
		t.Fatalf("got %d blob deletes, want 2", f.blobs.DeleteCount())
	}
	if f.blobs.Len() != 1 {
		t.Fatalf("got %d blobs left, want 1", f.blobs.Len())
	}
}

func TestRemovePhotosValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")
	ctx := context.Background()

	created, err := f.svc.Add(ctx, validInput("jmoran@ceiamerica.com"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := f.svc.RemovePhotos(ctx, created.ID, nil); appCode(err) != "PHOTOS_REQUIRED" {
		t.Fatalf("empty list: %v", err)
	}
	_, err = f.svc.RemovePhotos(ctx, created.ID, []trips.RemovePhotoInput{
		{ID: "11111111-1111-1111-1111-111111111111", TripID: created.ID + 1},
	})
	if appCode(err) != "ID_MISMATCH" {
		t.Fatalf("trip id mismatch: %v", err)
	}
	_, err = f.svc.RemovePhotos(ctx, 404, []trips.RemovePhotoInput{
		{ID: "11111111-1111-1111-1111-111111111111", TripID: 404},
	})
	if appCode(err) != "TRIP_NOT_FOUND" {
		t.Fatalf("missing trip: %v", err)
	}
}

func TestListTripsOrdered(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "jmoran@ceiamerica.com")
	ctx := context.Background()

	var ids []domain.TripID
	for i := 0; i < 3; i++ {
		created, err := f.svc.Add(ctx, validInput("jmoran@ceiamerica.com"))
		if err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
		ids = append(ids, created.ID)
	}
	got, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d trips, want 3", len(got))
	}
	for i := range got {
		if got[i].ID != ids[i] {
			t.Fatalf("position %d: got trip %d, want %d", i, got[i].ID, ids[i])
		}
	}
}

func TestDirectoryMembersHydration(t *testing.T) {
	t.Parallel()
	dir := memdirectory.New(
		domain.DirectoryUser{ID: "u-1", Username: "ada@corp.example", DisplayName: "Ada Lovelace", FirstName: "Ada", LastName: "Lovelace"},
	)
	repo := memtriprepo.NewRepo()
	blobs := memblob.NewStore("https://blobs.test/photos")
	svc := trips.NewService(repo, trips.DirectoryMembers(dir), blobs)
	ctx := context.Background()

	created, err := svc.Add(ctx, validInput("ada@corp.example"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if created.Members[0].DisplayName != "Ada Lovelace" {
		t.Fatalf("directory profile not hydrated: %+v", created.Members[0])
	}

	in := validInput("nobody@corp.example")
	if _, err := svc.Add(ctx, in); appCode(err) != "MEMBER_NOT_FOUND" {
		t.Fatalf("unknown directory member: %v", err)
	}
}

func TestHydrationDegradesForMissingUser(t *testing.T) {
	t.Parallel()
	usersRepo := memuserrepo.NewRepo()
	err := usersRepo.Create(context.Background(), userrepo.User{Username: "gone@example.com", FirstName: "Going", LastName: "Gone"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	repo := memtriprepo.NewRepo()
	svc := trips.NewService(repo, trips.LocalMembers(usersRepo), memblob.NewStore("https://blobs.test/photos"))
	ctx := context.Background()

	created, err := svc.Add(ctx, validInput("gone@example.com"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Deleting the user leaves the membership row behind; reads keep the
	// username with an empty profile.
	if err := usersRepo.Delete(ctx, "gone@example.com"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	m := got.Members[0]
	if m.Username != "gone@example.com" || m.DisplayName != "" || m.FirstName != "" {
		t.Fatalf("expected bare-username member, got %+v", m)
	}
}

func appCode(err error) string {
	var appErr *trips.Error
	if !errors.As(err, &appErr) {
		return ""
	}
	return appErr.Code
}
