package trips

import (
	"time"

	"github.com/wayfare-app/wayfare-api/internal/domain"
)

// TripInput is the write shape for Add and Update. Member references are bare
// usernames; profile data is resolved server-side.
type TripInput struct {
	// ID is the body's trip id. It is ignored on Add and must match the path
	// id on Update.
	ID domain.TripID

	Title         string
	Details       *string
	StartDate     time.Time
	EndDate       time.Time
	CoverImageURL *string

	Destinations []domain.Destination
	Members      []string
	Todos        []domain.TodoItem
	Photos       []domain.Photo
}

// PhotoInput is the metadata part of a photo upload.
type PhotoInput struct {
	// TripID is the body's trip id; it must match the path id.
	TripID domain.TripID

	FileName    string
	ContentType string
	UploadedBy  string
	AltText     string
}

// RemovePhotoInput identifies one photo to remove from a trip.
type RemovePhotoInput struct {
	ID       domain.PhotoID
	TripID   domain.TripID
	FileName string
}
