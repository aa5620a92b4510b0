// Package sqlite es el store local del refugio (un archivo en disco), con el
// driver pure-go de modernc.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"cat-shelter/internal/domain/cats"
)

var (
	ErrNotFound = cats.ErrNotFound
)

// Open abre (o crea) el archivo de la base. ":memory:" sirve para tests.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "data/cats.db"
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
	// una sola conexión: sqlite serializa escrituras y ":memory:" es por conexión
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA foreign_keys = ON`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if path != ":memory:" {
		if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}
	return db, nil
}

// Las fechas se guardan como milisegundos unix; BETWEEN compara enteros.
const schema = `
CREATE TABLE cats (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	gender      TEXT NOT NULL,
	breed       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	dob         INTEGER NOT NULL,
	admitted_at INTEGER NOT NULL,
	image_path  TEXT NOT NULL
);
CREATE INDEX cats_dob_idx ON cats (dob);
CREATE INDEX cats_admitted_at_idx ON cats (admitted_at);
`

// EnsureSchema crea la tabla si falta. created=true solo la primera vez.
func EnsureSchema(ctx context.Context, db *sql.DB) (created bool, err error) {
	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'cats'`,
	).Scan(&n); err != nil {
		return false, fmt.Errorf("check schema: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return false, fmt.Errorf("create schema: %w", err)
	}
	return true, nil
}

// OpenCatStore asegura el esquema y, si recién se creó, corre seed una vez.
func OpenCatStore(ctx context.Context, db *sql.DB, seed cats.SeedFunc) (*CatsRepo, error) {
	created, err := EnsureSchema(ctx, db)
	if err != nil {
		return nil, err
	}
	repo := NewCatsRepo(db)
	if created && seed != nil {
		if err := seed(ctx, repo); err != nil {
			return nil, fmt.Errorf("seed cats: %w", err)
		}
	}
	return repo, nil
}
