package domain

import "time"

// Destination is a shared reference entity. Rows are created implicitly the
// first time a trip links them and are never deleted by this system.
type Destination struct {
	ID      DestinationID
	City    string
	Region  string
	Country string
}

// TodoItem is owned outright by its trip.
type TodoItem struct {
	ID       TodoID
	Task     string
	Complete bool
}

// Photo is the metadata row for a trip photo. The binary content lives in the
// blob store, keyed by FileName.
type Photo struct {
	ID          PhotoID
	TripID      TripID
	FileName    string
	ContentType string
	URL         string
	UploadedBy  string
	AltText     string

	CreatedAt time.Time
}

// TripMember is the hydrated view of a trip membership. Only Username is
// persisted on the join row; the remaining fields are filled in from the user
// store or the identity directory when the trip is read.
type TripMember struct {
	Username    string
	DisplayName string
	FirstName   string
	LastName    string
}

// Trip is the aggregate read model: a trip row plus its owned and linked
// collections, treated as one consistency unit for update and delete.
type Trip struct {
	ID    TripID
	Title string

	Details       *string
	StartDate     time.Time
	EndDate       time.Time
	CoverImageURL *string

	Destinations []Destination
	Members      []TripMember
	Todos        []TodoItem
	Photos       []Photo

	CreatedAt time.Time
	UpdatedAt time.Time
}
