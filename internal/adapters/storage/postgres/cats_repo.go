package postgres

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

// sirve tanto *sql.DB como *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
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

func insertCat(ctx context.Context, q queryer, c cats.Cat) (cats.Cat, error) {
	if c.ID != 0 {
		return cats.Cat{}, errors.New("cat id must be unset")
	}
	err := q.QueryRowContext(ctx, `
		INSERT INTO cats (
			name, gender, breed, description,
			dob, admitted_at, image_path
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`,
		c.Name,
		string(c.Gender),
		c.Breed,
		c.Description,
		c.DOB,
		c.AdmittedAt,
		c.ImagePath,
	).Scan(&c.ID)
	if err != nil {
		return cats.Cat{}, err
	}
	return c, nil
}

func (r *CatsRepo) Update(ctx context.Context, c cats.Cat) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cats
		SET
			name = $2,
			gender = $3,
			breed = $4,
			description = $5,
			dob = $6,
			admitted_at = $7,
			image_path = $8
		WHERE id = $1
	`,
		c.ID,
		c.Name,
		string(c.Gender),
		c.Breed,
		c.Description,
		c.DOB,
		c.AdmittedAt,
		c.ImagePath,
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM cats WHERE id = $1`, id)
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

	row := r.db.QueryRowContext(ctx, selectCats+` WHERE id = $1`, id)

	c, err := scanCat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cats.Cat{}, ErrNotFound
		}
		return cats.Cat{}, err
	}
	return c, nil
}

func (r *CatsRepo) ListAll(ctx context.Context) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` ORDER BY id ASC`)
}

func (r *CatsRepo) ListByBreed(ctx context.Context, breed string) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE breed = $1 ORDER BY id ASC`, breed)
}

func (r *CatsRepo) ListByGender(ctx context.Context, gender cats.Gender) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE gender = $1 ORDER BY id ASC`, string(gender))
}

func (r *CatsRepo) ListBornBetween(ctx context.Context, from, to time.Time) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE dob BETWEEN $1 AND $2 ORDER BY id ASC`, from, to)
}

func (r *CatsRepo) ListByBreedAndGender(ctx context.Context, breed string, gender cats.Gender) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE breed = $1 AND gender = $2 ORDER BY id ASC`, breed, string(gender))
}

func (r *CatsRepo) ListByBreedBornBetween(ctx context.Context, breed string, from, to time.Time) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE breed = $1 AND dob BETWEEN $2 AND $3 ORDER BY id ASC`, breed, from, to)
}

func (r *CatsRepo) ListByGenderBornBetween(ctx context.Context, gender cats.Gender, from, to time.Time) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE gender = $1 AND dob BETWEEN $2 AND $3 ORDER BY id ASC`, string(gender), from, to)
}

func (r *CatsRepo) ListByBreedGenderBornBetween(ctx context.Context, breed string, gender cats.Gender, from, to time.Time) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+`
		WHERE breed = $1 AND gender = $2 AND dob BETWEEN $3 AND $4
		ORDER BY id ASC
	`, breed, string(gender), from, to)
}

func (r *CatsRepo) ListAdmittedBetween(ctx context.Context, from, to time.Time) ([]cats.Cat, error) {
	return r.list(ctx, selectCats+` WHERE admitted_at BETWEEN $1 AND $2 ORDER BY admitted_at DESC, id ASC`, from, to)
}

func (r *CatsRepo) list(ctx context.Context, query string, args ...any) ([]cats.Cat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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
	if err := s.Scan(
		&c.ID,
		&c.Name,
		&gender,
		&c.Breed,
		&c.Description,
		&c.DOB,
		&c.AdmittedAt,
		&c.ImagePath,
	); err != nil {
		return cats.Cat{}, err
	}
	c.Gender = cats.Gender(gender)
	return c, nil
}

var _ cats.Repository = (*CatsRepo)(nil)
