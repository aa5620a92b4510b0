package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cat-shelter/internal/domain/cats"
)

type CatsRepo struct {
	db *sql.DB
}

func NewCatsRepo(db *sql.DB) *CatsRepo {
	return &CatsRepo{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const selectCats = `
	SELECT
		id, name, gender, breed, description,
		dob, admitted_at, image_path
	FROM cats
`

func (r *CatsRepo) Insert(ctx context.Context, c cats.Cat) (cats.Cat, error) {
	return insertCat(ctx, r.db, c)
}

// InsertMany inserta todo o nada.
func (r *CatsRepo) InsertMany(ctx context.Context, cs []cats.Cat) ([]cats.Cat, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out := make([]cats.Cat, 0, len(cs))
	for _, c := range cs {
		saved, err := insertCat(ctx, tx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func insertCat(ctx context.Context, ex execer, c cats.Cat) (cats.Cat, error) {
	if c.ID != 0 {
		return cats.Cat{}, errors.New("cat id must be unset")
	}
	res, err := ex.ExecContext(ctx, `
		INSERT INTO cats (
			name, gender, breed, description,
			dob, admitted_at, image_path
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		c.Name,
		string(c.Gender),
		c.Breed,
		c.Description,
		toMillis(c.DOB),
		toMillis(c.AdmittedAt),
		c.ImagePath,
	)
	if err != nil {
		return cats.Cat{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return cats.Cat{}, err
	}
	c.ID = id
	return c, nil
}

func (r *CatsRepo) Update(ctx context.Context, c cats.Cat) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cats
		SET
			name = ?,
			gender = ?,
			breed = ?,
			description = ?,
			dob = ?,
			admitted_at = ?,
			image_path = ?
		WHERE id = ?
	`,
		c.Name,
		string(c.Gender),
		c.Breed,
		c.Description,
		toMillis(c.DOB),
		toMillis(c.AdmittedAt),
		c.ImagePath,
		c.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CatsRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cats WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CatsRepo) GetByID(ctx context.Context, id int64) (cats.Cat, error) {
	if id <= 0 {
		return cats.Cat{}, ErrNotFound
	}
	c, err := scanCat(r.db.QueryRowContext(ctx, selectCats+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cats.Cat{}, ErrNotFound
		}
		return cats.Cat{}, err
	}
	return c, nil
}

func (r *CatsRepo) ListAll(ctx context.Context) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` ORDER BY id`)
}

func (r *CatsRepo) ListByBreed(ctx context.Context, breed string) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE breed = ? ORDER BY id`, breed)
}

func (r *CatsRepo) ListByGender(ctx context.Context, gender cats.Gender) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE gender = ? ORDER BY id`, string(gender))
}

func (r *CatsRepo) ListBornBetween(ctx context.Context, from, to time.Time) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE dob BETWEEN ? AND ? ORDER BY id`, toMillis(from), toMillis(to))
}

func (r *CatsRepo) ListByBreedAndGender(ctx context.Context, breed string, gender cats.Gender) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE breed = ? AND gender = ? ORDER BY id`, breed, string(gender))
}

func (r *CatsRepo) ListByBreedBornBetween(ctx context.Context, breed string, from, to time.Time) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE breed = ? AND dob BETWEEN ? AND ? ORDER BY id`,
		breed, toMillis(from), toMillis(to))
}

func (r *CatsRepo) ListByGenderBornBetween(ctx context.Context, gender cats.Gender, from, to time.Time) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE gender = ? AND dob BETWEEN ? AND ? ORDER BY id`,
		string(gender), toMillis(from), toMillis(to))
}

func (r *CatsRepo) ListByBreedGenderBornBetween(ctx context.Context, breed string, gender cats.Gender, from, to time.Time) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE breed = ? AND gender = ? AND dob BETWEEN ? AND ? ORDER BY id`,
		breed, string(gender), toMillis(from), toMillis(to))
}

func (r *CatsRepo) ListAdmittedBetween(ctx context.Context, from, to time.Time) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE admitted_at BETWEEN ? AND ? ORDER BY admitted_at DESC, id`,
		toMillis(from), toMillis(to))
}

func (r *CatsRepo) list(ctx context.Context, query string, args ...any) ([]cats.Cat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]cats.Cat, 0)
	for rows.Next() {
		c, err := scanCat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCat(s scanner) (cats.Cat, error) {
	var c cats.Cat
	var gender string
	var dob, admitted int64
	if err := s.Scan(
		&c.ID,
		&c.Name,
		&gender,
		&c.Breed,
		&c.Description,
		&dob,
		&admitted,
		&c.ImagePath,
	); err != nil {
		return cats.Cat{}, err
	}
	c.Gender = cats.Gender(gender)
	c.DOB = fromMillis(dob)
	c.AdmittedAt = fromMillis(admitted)
	return c, nil
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

var _ cats.Repository = (*CatsRepo)(nil)
