package domain

// TripID is the server-generated identifier for a trip record.
type TripID int64

// TodoID is the server-generated identifier for a trip to-do item.
type TodoID int64

// PhotoID is the generated identifier for a trip photo (a UUID string).
type PhotoID string

// DestinationID is the external place identifier for a destination.
// Its format is controlled by the upstream places provider; we treat it as opaque.
type DestinationID string
