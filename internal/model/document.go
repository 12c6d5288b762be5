package model

// MimeTypePDF is the content type of every document in the library.
const MimeTypePDF = "application/pdf"

// Document represents one stored PDF in the library.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, library, store) without coupling to persistence.
//
// Data is immutable once stored: the store exposes no partial update, only
// full replacement by id. The byte slice handed to the store is treated as
// transferred ownership; callers must not keep mutating it.
type Document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Size        int64  `json:"size"`
	MimeType    string `json:"mime_type"`
	Data        []byte `json:"-"`
	CoverImage  string `json:"cover_image,omitempty"`
	AddedAt     int64  `json:"added_at"` // epoch milliseconds, sort key for the library view
}
