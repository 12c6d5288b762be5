package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	_ "modernc.org/sqlite"

	"pdfshelf/internal/config"
	"pdfshelf/internal/store"
)

var sqlOpen = sql.Open

// BuildSQLiteDSN constructs a file DSN for the embedded SQLite engine.
// Example: file:data/library.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)
func BuildSQLiteDSN(c config.StoreConfig) (string, error) {
	if c.Path == "" {
		return "", fmt.Errorf("invalid store config: path is required")
	}

	var pragmas []string
	if c.BusyTimeoutMS > 0 {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", c.BusyTimeoutMS))
	}
	// WAL keeps readers unblocked while a put is committing.
	pragmas = append(pragmas, "_pragma=journal_mode(WAL)")

	return "file:" + c.Path + "?" + strings.Join(pragmas, "&"), nil
}

// NewSQLite opens the embedded database using the modernc driver wrapped
// with otelsql, applies pool settings, and verifies it is usable. Any
// failure here means the library cannot be accessed at all, so errors wrap
// store.ErrUnavailable.
func NewSQLite(c config.StoreConfig) (*sql.DB, error) {
	dsn, err := BuildSQLiteDSN(c)
	if err != nil {
		return nil, err
	}

	// Register the otelsql driver wrapper
	driverName, err := otelsql.Register("sqlite",
		otelsql.WithAttributes(semconv.DBSystemSqlite),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql: %w", err)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", store.ErrUnavailable)
	}

	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}

	// Verify the file can actually be opened with a short timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %v: %w", err, store.ErrUnavailable)
	}

	return db, nil
}
