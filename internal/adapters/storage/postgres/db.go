package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"cat-shelter/internal/domain/cats"
)

var (
	ErrNotFound = cats.ErrNotFound
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS cats (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	gender      TEXT NOT NULL,
	breed       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	dob         TIMESTAMPTZ NOT NULL,
	admitted_at TIMESTAMPTZ NOT NULL,
	image_path  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS cats_dob_idx ON cats (dob);
CREATE INDEX IF NOT EXISTS cats_admitted_at_idx ON cats (admitted_at);
`

// EnsureSchema crea la tabla si falta. created=true solo la primera vez.
func EnsureSchema(ctx context.Context, db *sql.DB) (created bool, err error) {
	var existing sql.NullString
	if err := db.QueryRowContext(ctx, `SELECT to_regclass('public.cats')::text`).Scan(&existing); err != nil {
		return false, fmt.Errorf("check schema: %w", err)
	}
	if existing.Valid {
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
