package triprepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/wayfare-app/wayfare-api/internal/adapters/postgres"
	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/ports/out/triprepo"
)

// Repo is a Postgres implementation of triprepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, t triprepo.Trip) (triprepo.Trip, error) {
	if r.pool == nil {
		return triprepo.Trip{}, errors.New("nil postgres pool")
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO trips (title, details, start_date, end_date, cover_image_url, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING id
		`,
			t.Title,
			t.Details,
			t.StartDate.UTC(),
			t.EndDate.UTC(),
			t.CoverImageURL,
			t.CreatedAt.UTC(),
			t.UpdatedAt.UTC(),
		).Scan(&t.ID)
		if err != nil {
			return err
		}
		return insertChildren(ctx, tx, &t)
	})
	if err != nil {
		return triprepo.Trip{}, err
	}
	return t, nil
}

func (r *Repo) Replace(ctx context.Context, t triprepo.Trip) (triprepo.Trip, error) {
	if r.pool == nil {
		return triprepo.Trip{}, errors.New("nil postgres pool")
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var createdAt time.Time
		err := tx.QueryRow(ctx, `
			UPDATE trips
			SET title = $2,
			    details = $3,
			    start_date = $4,
			    end_date = $5,
			    cover_image_url = $6,
			    updated_at = $7
			WHERE id = $1
			RETURNING created_at
		`,
			int64(t.ID),
			t.Title,
			t.Details,
			t.StartDate.UTC(),
			t.EndDate.UTC(),
			t.CoverImageURL,
			t.UpdatedAt.UTC(),
		).Scan(&createdAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return triprepo.ErrNotFound
			}
			return err
		}
		t.CreatedAt = createdAt.UTC()

		// Full replacement: drop every child row, then re-insert the new set.
		for _, q := range []string{
			`DELETE FROM trip_destinations WHERE trip_id = $1`,
			`DELETE FROM trip_members WHERE trip_id = $1`,
			`DELETE FROM trip_todos WHERE trip_id = $1`,
			`DELETE FROM trip_photos WHERE trip_id = $1`,
		} {
			if _, err := tx.Exec(ctx, q, int64(t.ID)); err != nil {
				return err
			}
		}
		return insertChildren(ctx, tx, &t)
	})
	if err != nil {
		return triprepo.Trip{}, err
	}
	return t, nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.TripID) (triprepo.Trip, error) {
	if r.pool == nil {
		return triprepo.Trip{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, details, start_date, end_date, cover_image_url, created_at, updated_at
		FROM trips
		WHERE id = $1
	`, int64(id))
	t, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return triprepo.Trip{}, triprepo.ErrNotFound
		}
		return triprepo.Trip{}, err
	}
	if err := r.loadChildren(ctx, &t); err != nil {
		return triprepo.Trip{}, err
	}
	return t, nil
}

func (r *Repo) List(ctx context.Context) ([]triprepo.Trip, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, details, start_date, end_date, cover_image_url, created_at, updated_at
		FROM trips
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]triprepo.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Child loads run after the list cursor is closed; the row counts here
	// are small (no pagination by design).
	for i := range out {
		if err := r.loadChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.TripID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	// Join rows, to-dos and photos are removed by ON DELETE CASCADE;
	// destination reference rows stay.
	tag, err := r.pool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, int64(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return triprepo.ErrNotFound
	}
	return nil
}

func (r *Repo) AddPhoto(ctx context.Context, id domain.TripID, p domain.Photo) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	photoUUID, err := uuid.Parse(string(p.ID))
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO trip_photos (id, trip_id, file_name, content_type, url, uploaded_by, alt_text, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, photoUUID, int64(id), p.FileName, p.ContentType, p.URL, p.UploadedBy, p.AltText, p.CreatedAt.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			if pe.ConstraintName == "trip_photos_trip_filename_unique" {
				return triprepo.ErrDuplicateFilename
			}
		}
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == "23503" {
			// FK violation on trip_id
			return triprepo.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *Repo) RemovePhotos(ctx context.Context, id domain.TripID, photoIDs []domain.PhotoID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	ids := make([]uuid.UUID, 0, len(photoIDs))
	for _, pid := range photoIDs {
		u, err := uuid.Parse(string(pid))
		if err != nil {
			continue
		}
		ids = append(ids, u)
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		DELETE FROM trip_photos
		WHERE trip_id = $1 AND id = ANY($2)
	`, int64(id), ids)
	return err
}

func (r *Repo) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, city, region, country
		FROM destinations
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Destination, 0)
	for rows.Next() {
		var d domain.Destination
		if err := rows.Scan(&d.ID, &d.City, &d.Region, &d.Country); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// --- helpers ---

func insertChildren(ctx context.Context, tx pgx.Tx, t *triprepo.Trip) error {
	seen := make(map[domain.DestinationID]struct{}, len(t.Destinations))
	dests := make([]domain.Destination, 0, len(t.Destinations))
	for _, d := range t.Destinations {
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}

		// Destination rows are shared reference data: reuse, never duplicate.
		// On conflict the stored row wins, so read the canonical fields back.
		if _, err := tx.Exec(ctx, `
			INSERT INTO destinations (id, city, region, country)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (id) DO NOTHING
		`, string(d.ID), d.City, d.Region, d.Country); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `
			SELECT city, region, country FROM destinations WHERE id = $1
		`, string(d.ID)).Scan(&d.City, &d.Region, &d.Country); err != nil {
			return err
		}
		dests = append(dests, d)
		if _, err := tx.Exec(ctx, `
			INSERT INTO trip_destinations (trip_id, destination_id)
			VALUES ($1,$2)
			ON CONFLICT DO NOTHING
		`, int64(t.ID), string(d.ID)); err != nil {
			return err
		}
	}
	t.Destinations = dests

	for _, username := range t.MemberUsernames {
		if _, err := tx.Exec(ctx, `
			INSERT INTO trip_members (trip_id, username)
			VALUES ($1,$2)
			ON CONFLICT DO NOTHING
		`, int64(t.ID), username); err != nil {
			return err
		}
	}

	for i := range t.Todos {
		err := tx.QueryRow(ctx, `
			INSERT INTO trip_todos (trip_id, task, complete)
			VALUES ($1,$2,$3)
			RETURNING id
		`, int64(t.ID), t.Todos[i].Task, t.Todos[i].Complete).Scan(&t.Todos[i].ID)
		if err != nil {
			return err
		}
	}

	for i := range t.Photos {
		p := &t.Photos[i]
		p.TripID = t.ID
		photoUUID, err := uuid.Parse(string(p.ID))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO trip_photos (id, trip_id, file_name, content_type, url, uploaded_by, alt_text, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, photoUUID, int64(t.ID), p.FileName, p.ContentType, p.URL, p.UploadedBy, p.AltText, p.CreatedAt.UTC()); err != nil {
			return err
		}
	}
	return nil
}

func scanTrip(row pgx.Row) (triprepo.Trip, error) {
	var (
		t         triprepo.Trip
		tripID    int64
		startDate time.Time
		endDate   time.Time
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&tripID, &t.Title, &t.Details, &startDate, &endDate, &t.CoverImageURL, &createdAt, &updatedAt); err != nil {
		return triprepo.Trip{}, err
	}
	t.ID = domain.TripID(tripID)
	t.StartDate = startDate.UTC()
	t.EndDate = endDate.UTC()
	t.CreatedAt = createdAt.UTC()
	t.UpdatedAt = updatedAt.UTC()
	return t, nil
}

func (r *Repo) loadChildren(ctx context.Context, t *triprepo.Trip) error {
	dests, err := loadDestinations(ctx, r.pool, t.ID)
	if err != nil {
		return err
	}
	members, err := loadMembers(ctx, r.pool, t.ID)
	if err != nil {
		return err
	}
	todos, err := loadTodos(ctx, r.pool, t.ID)
	if err != nil {
		return err
	}
	photos, err := loadPhotos(ctx, r.pool, t.ID)
	if err != nil {
		return err
	}
	t.Destinations = dests
	t.MemberUsernames = members
	t.Todos = todos
	t.Photos = photos
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadDestinations(ctx context.Context, q querier, id domain.TripID) ([]domain.Destination, error) {
	rows, err := q.Query(ctx, `
		SELECT d.id, d.city, d.region, d.country
		FROM trip_destinations td
		JOIN destinations d ON d.id = td.destination_id
		WHERE td.trip_id = $1
		ORDER BY d.id ASC
	`, int64(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Destination, 0)
	for rows.Next() {
		var d domain.Destination
		if err := rows.Scan(&d.ID, &d.City, &d.Region, &d.Country); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func loadMembers(ctx context.Context, q querier, id domain.TripID) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT username
		FROM trip_members
		WHERE trip_id = $1
		ORDER BY username ASC
	`, int64(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func loadTodos(ctx context.Context, q querier, id domain.TripID) ([]domain.TodoItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, task, complete
		FROM trip_todos
		WHERE trip_id = $1
		ORDER BY id ASC
	`, int64(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.TodoItem, 0)
	for rows.Next() {
		var td domain.TodoItem
		if err := rows.Scan(&td.ID, &td.Task, &td.Complete); err != nil {
			return nil, err
		}
		out = append(out, td)
	}
	return out, rows.Err()
}

func loadPhotos(ctx context.Context, q querier, id domain.TripID) ([]domain.Photo, error) {
	rows, err := q.Query(ctx, `
		SELECT id, file_name, content_type, url, uploaded_by, alt_text, created_at
		FROM trip_photos
		WHERE trip_id = $1
		ORDER BY created_at ASC, id ASC
	`, int64(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Photo, 0)
	for rows.Next() {
		var (
			p         domain.Photo
			photoUUID uuid.UUID
			createdAt time.Time
		)
		if err := rows.Scan(&photoUUID, &p.FileName, &p.ContentType, &p.URL, &p.UploadedBy, &p.AltText, &createdAt); err != nil {
			return nil, err
		}
		p.ID = domain.PhotoID(photoUUID.String())
		p.TripID = id
		p.CreatedAt = createdAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}
