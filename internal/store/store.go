package store

import (
	"context"
	"errors"

	"pdfshelf/internal/model"
)

// DocumentStore is the single source of truth for persisted documents.
// Implementations live in subpackages (e.g., sqlite) inside this directory.
// No business logic here — strictly persistence operations.
type DocumentStore interface {
	// List returns every record currently persisted, in store (insertion)
	// order. Display ordering is the library's concern, not the store's.
	// A record that fails to decode is skipped and logged, never fatal:
	// one corrupt entry must not prevent the rest of the library from
	// loading.
	List(ctx context.Context) ([]model.Document, error)

	// Get returns a document by its id. Absent ids yield ErrNotFound.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Put inserts a new record or fully replaces an existing one with the
	// same id (last-write-wins). It is the only write entry point; there is
	// no partial-field update. Size is recomputed from the buffer, never
	// taken from the caller.
	Put(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Delete removes the record if present. Deleting an absent id is a
	// no-op success, not an error.
	Delete(ctx context.Context, id string) error
}

var (
	// ErrNotFound signals an absent id on Get.
	ErrNotFound = errors.New("document not found")

	// ErrUnavailable signals that the underlying engine cannot be opened
	// or used at all. Surfaced to the user as "cannot access library".
	ErrUnavailable = errors.New("document store unavailable")

	// ErrQuotaExceeded signals a write rejected because the engine ran out
	// of space. The record is not partially persisted.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)
