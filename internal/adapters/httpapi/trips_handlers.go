package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wayfare-app/wayfare-api/internal/app/trips"
	"github.com/wayfare-app/wayfare-api/internal/domain"
)

type tripHandlers struct {
	svc *trips.Service
}

type destinationDTO struct {
	ID      string `json:"id"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

type memberDTO struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
}

type todoDTO struct {
	ID       int64  `json:"id"`
	Task     string `json:"task"`
	Complete bool   `json:"complete"`
}

type photoDTO struct {
	ID          string    `json:"id"`
	TripID      int64     `json:"tripId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	URL         string    `json:"url"`
	UploadedBy  string    `json:"uploadedBy,omitempty"`
	AltText     string    `json:"altText,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type tripDTO struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Details       *string          `json:"details,omitempty"`
	StartDate     time.Time        `json:"startDate"`
	EndDate       time.Time        `json:"endDate"`
	CoverImageURL *string          `json:"coverImageUrl,omitempty"`
	Destinations  []destinationDTO `json:"destinations"`
	Members       []memberDTO      `json:"members"`
	Todos         []todoDTO        `json:"todos"`
	Photos        []photoDTO       `json:"photos"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// tripWriteDTO is the request shape for create and update. Members are bare
// usernames; the response carries the hydrated profiles.
type tripWriteDTO struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Details       *string          `json:"details"`
	StartDate     time.Time        `json:"startDate"`
	EndDate       time.Time        `json:"endDate"`
	CoverImageURL *string          `json:"coverImageUrl"`
	Destinations  []destinationDTO `json:"destinations"`
	Members       []string         `json:"members"`
	Todos         []todoDTO        `json:"todos"`
	Photos        []photoDTO       `json:"photos"`
}

type removePhotoDTO struct {
	ID       string `json:"id"`
	TripID   int64  `json:"tripId"`
	FileName string `json:"fileName"`
}

func (h *tripHandlers) list(w http.ResponseWriter, r *http.Request) {
	ts, err := h.svc.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]tripDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTripDTO(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *tripHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripDTO(t))
}

func (h *tripHandlers) add(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeTripWrite(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Add(r.Context(), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTripDTO(t))
}

func (h *tripHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	in, ok := decodeTripWrite(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripDTO(t))
}

func (h *tripHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addPhoto handles a multipart upload: a "photo" part carrying the JSON
// metadata and a "file" part carrying the image bytes. The content type comes
// from the file part's own header. Part order does not matter; a file part
// that arrives before the metadata is buffered.
func (h *tripHandlers) addPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "expected multipart form data", nil)
		return
	}

	var meta *photoMetaDTO
	var file io.Reader
	var contentType string
parts:
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed multipart body", nil)
			return
		}
		switch part.FormName() {
		case "photo":
			var m photoMetaDTO
			if err := json.NewDecoder(part).Decode(&m); err != nil {
				writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid photo metadata", nil)
				return
			}
			meta = &m
			if file != nil {
				break parts
			}
		case "file":
			contentType = part.Header.Get("Content-Type")
			if meta != nil {
				// Metadata already seen: stream the bytes straight through.
				file = part
				break parts
			}
			// The metadata part has not arrived yet. Reading the next part
			// would drain this one, so buffer the bytes.
			b, err := io.ReadAll(part)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed multipart body", nil)
				return
			}
			file = bytes.NewReader(b)
		}
	}

	var in *trips.PhotoInput
	if meta != nil {
		in = &trips.PhotoInput{
			TripID:      domain.TripID(meta.TripID),
			FileName:    meta.FileName,
			ContentType: contentType,
			UploadedBy:  meta.UploadedBy,
			AltText:     meta.AltText,
		}
	}
	if file == nil {
		writeError(w, r, http.StatusBadRequest, "FILE_REQUIRED", "file part is required", nil)
		return
	}

	t, err := h.svc.AddPhoto(r.Context(), id, in, file)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTripDTO(t))
}

type photoMetaDTO struct {
	TripID     int64  `json:"tripId"`
	FileName   string `json:"fileName"`
	UploadedBy string `json:"uploadedBy"`
	AltText    string `json:"altText"`
}

func (h *tripHandlers) removePhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var body []removePhotoDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		return
	}
	in := make([]trips.RemovePhotoInput, 0, len(body))
	for _, p := range body {
		in = append(in, trips.RemovePhotoInput{
			ID:       domain.PhotoID(p.ID),
			TripID:   domain.TripID(p.TripID),
			FileName: p.FileName,
		})
	}
	t, err := h.svc.RemovePhotos(r.Context(), id, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripDTO(t))
}

func tripIDParam(w http.ResponseWriter, r *http.Request) (domain.TripID, bool) {
	raw := chi.URLParam(r, "tripId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "INVALID_TRIP_ID", "trip id must be a positive integer", map[string]any{"tripId": raw})
		return 0, false
	}
	return domain.TripID(id), true
}

func decodeTripWrite(w http.ResponseWriter, r *http.Request) (*trips.TripInput, bool) {
	var body tripWriteDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		return nil, false
	}
	in := &trips.TripInput{
		ID:            domain.TripID(body.ID),
		Title:         body.Title,
		Details:       body.Details,
		StartDate:     body.StartDate,
		EndDate:       body.EndDate,
		CoverImageURL: body.CoverImageURL,
		Members:       body.Members,
	}
	for _, d := range body.Destinations {
		in.Destinations = append(in.Destinations, domain.Destination{
			ID:      domain.DestinationID(d.ID),
			City:    d.City,
			Region:  d.Region,
			Country: d.Country,
		})
	}
	for _, td := range body.Todos {
		in.Todos = append(in.Todos, domain.TodoItem{
			ID:       domain.TodoID(td.ID),
			Task:     td.Task,
			Complete: td.Complete,
		})
	}
	// Updates are a full replacement of every owned collection, photos
	// included: rows absent from the body are dropped.
	for _, p := range body.Photos {
		in.Photos = append(in.Photos, domain.Photo{
			ID:          domain.PhotoID(p.ID),
			TripID:      domain.TripID(p.TripID),
			FileName:    p.FileName,
			ContentType: p.ContentType,
			URL:         p.URL,
			UploadedBy:  p.UploadedBy,
			AltText:     p.AltText,
			CreatedAt:   p.CreatedAt,
		})
	}
	return in, true
}

func toTripDTO(t domain.Trip) tripDTO {
	out := tripDTO{
		ID:            int64(t.ID),
		Title:         t.Title,
		Details:       t.Details,
		StartDate:     t.StartDate,
		EndDate:       t.EndDate,
		CoverImageURL: t.CoverImageURL,
		Destinations:  make([]destinationDTO, 0, len(t.Destinations)),
		Members:       make([]memberDTO, 0, len(t.Members)),
		Todos:         make([]todoDTO, 0, len(t.Todos)),
		Photos:        make([]photoDTO, 0, len(t.Photos)),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	for _, d := range t.Destinations {
		out.Destinations = append(out.Destinations, destinationDTO{
			ID:      string(d.ID),
			City:    d.City,
			Region:  d.Region,
			Country: d.Country,
		})
	}
	for _, m := range t.Members {
		out.Members = append(out.Members, memberDTO{
			Username:    m.Username,
			DisplayName: m.DisplayName,
			FirstName:   m.FirstName,
			LastName:    m.LastName,
		})
	}
	for _, td := range t.Todos {
		out.Todos = append(out.Todos, todoDTO{ID: int64(td.ID), Task: td.Task, Complete: td.Complete})
	}
	for _, p := range t.Photos {
		out.Photos = append(out.Photos, photoDTO{
			ID:          string(p.ID),
			TripID:      int64(p.TripID),
			FileName:    p.FileName,
			ContentType: p.ContentType,
			URL:         p.URL,
			UploadedBy:  p.UploadedBy,
			AltText:     p.AltText,
			CreatedAt:   p.CreatedAt,
		})
	}
	return out
}
