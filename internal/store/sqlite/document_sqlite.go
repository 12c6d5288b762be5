package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"pdfshelf/internal/model"
	"pdfshelf/internal/store"
)

// DocumentSQLite is the SQLite implementation of store.DocumentStore.
// All documents live in a single `documents` table, one row per record,
// with the PDF bytes in a BLOB column — no cross-record foreign keys.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentSQLite struct {
	db  *sql.DB
	log *slog.Logger
}

// NewDocumentSQLite creates a new DocumentSQLite store.
// The logger is used only to report skipped corrupt rows during List.
func NewDocumentSQLite(db *sql.DB, log *slog.Logger) *DocumentSQLite {
	if log == nil {
		log = slog.Default()
	}
	return &DocumentSQLite{db: db, log: log}
}

var _ store.DocumentStore = (*DocumentSQLite)(nil)

// Put upserts a document row (last-write-wins by id) and returns the stored
// record. Size is always recomputed from the buffer; the caller-supplied
// value is never trusted.
func (s *DocumentSQLite) Put(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if doc == nil || doc.ID == "" {
		return nil, fmt.Errorf("put document: %w", store.ErrNotFound)
	}
	const q = `
		INSERT INTO documents (id, name, description, size, mime_type, data, cover_image, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			size = excluded.size,
			mime_type = excluded.mime_type,
			data = excluded.data,
			cover_image = excluded.cover_image,
			added_at = excluded.added_at
		RETURNING id, name, description, size, mime_type, cover_image, added_at
	`
	size := int64(len(doc.Data))
	row := s.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Name,
		doc.Description,
		size,
		doc.MimeType,
		doc.Data,
		nullString(doc.CoverImage),
		doc.AddedAt,
	)
	var (
		out   model.Document
		cover sql.NullString
	)
	if err := row.Scan(
		&out.ID,
		&out.Name,
		&out.Description,
		&out.Size,
		&out.MimeType,
		&cover,
		&out.AddedAt,
	); err != nil {
		return nil, fmt.Errorf("put document: %w", mapEngineError(err))
	}
	// The blob is not round-tripped through RETURNING; it is immutable and
	// the store owns the submitted buffer from here on.
	out.Data = doc.Data
	out.CoverImage = cover.String
	return &out, nil
}

// Get fetches a single document, including its bytes, by id.
func (s *DocumentSQLite) Get(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT id, name, description, size, mime_type, data, cover_image, added_at
		FROM documents
		WHERE id = ?
	`
	var (
		d     model.Document
		cover sql.NullString
	)
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID,
		&d.Name,
		&d.Description,
		&d.Size,
		&d.MimeType,
		&d.Data,
		&cover,
		&d.AddedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", mapEngineError(err))
	}
	d.CoverImage = cover.String
	return &d, nil
}

// List returns every stored record in insertion order. A row that fails to
// scan or violates record invariants is logged and excluded rather than
// aborting the whole listing.
func (s *DocumentSQLite) List(ctx context.Context) ([]model.Document, error) {
	const q = `
		SELECT id, name, description, size, mime_type, data, cover_image, added_at
		FROM documents
		ORDER BY rowid
	`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", mapEngineError(err))
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var (
			d     model.Document
			cover sql.NullString
		)
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.Description,
			&d.Size,
			&d.MimeType,
			&d.Data,
			&cover,
			&d.AddedAt,
		); err != nil {
			s.log.Warn("skipping undecodable document row", "error", err)
			continue
		}
		d.CoverImage = cover.String
		if reason := recordDefect(&d); reason != "" {
			s.log.Warn("skipping corrupt document row", "id", d.ID, "reason", reason)
			continue
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", mapEngineError(err))
	}
	return items, nil
}

// Delete removes a document by id. Deleting an absent id succeeds.
func (s *DocumentSQLite) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", mapEngineError(err))
	}
	// Rows affected is deliberately ignored: delete is idempotent.
	_, _ = res.RowsAffected()
	return nil
}

// recordDefect reports why a decoded row is unusable, or "" if it is fine.
func recordDefect(d *model.Document) string {
	switch {
	case d.ID == "":
		return "blank id"
	case d.MimeType == "":
		return "blank mime type"
	case d.Size != int64(len(d.Data)):
		return fmt.Sprintf("size %d does not match payload length %d", d.Size, len(d.Data))
	}
	return ""
}

// mapEngineError translates engine failures into the store taxonomy.
// Extended SQLite result codes share their low byte with the primary code.
func mapEngineError(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_FULL:
			return fmt.Errorf("%w: %v", store.ErrQuotaExceeded, err)
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_IOERR:
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
