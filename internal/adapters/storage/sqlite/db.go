// Package sqlite guarda owners y pets como documentos JSON en un archivo
// SQLite (driver pure go, sin cgo). Pensado para una sola instancia.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pet-vaccination-tracker/internal/domain/clinic"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection  TEXT NOT NULL,
	id          TEXT NOT NULL,
	owner_id    TEXT NOT NULL DEFAULT '',
	payload     BLOB NOT NULL,
	created_at  INTEGER NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_owner_idx ON documents (collection, owner_id);

CREATE TABLE IF NOT EXISTS reminder_attempts (
	id              TEXT PRIMARY KEY,
	scan_id         TEXT NOT NULL,
	pet_id          TEXT NOT NULL,
	vaccination_id  TEXT NOT NULL,
	owner_id        TEXT NOT NULL DEFAULT '',
	channel         TEXT NOT NULL,
	outcome         TEXT NOT NULL,
	reason          TEXT NOT NULL DEFAULT '',
	attempted_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS reminder_attempts_pet_idx ON reminder_attempts (pet_id, attempted_at DESC);
`

// Open abre (o crea) la base en path y aplica el schema. ":memory:" sirve
// para tests.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = "vaccinations.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite serializa escrituras; con :memory: cada conexión es otra base
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", clinic.ErrUnavailable, op, err)
}
