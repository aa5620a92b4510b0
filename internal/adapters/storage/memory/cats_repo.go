package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"cat-shelter/internal/domain/cats"
)

var (
	ErrNotFound = cats.ErrNotFound
)

type catRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]cats.Cat
}

// NewCatRepo crea el store en memoria. Si seed no es nil se ejecuta una sola
// vez, al crearlo (equivale al "primer arranque" de los stores persistentes).
func NewCatRepo(ctx context.Context, seed cats.SeedFunc) (cats.Repository, error) {
	r := &catRepo{
		byID: make(map[int64]cats.Cat),
	}
	if seed != nil {
		if err := seed(ctx, r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *catRepo) Insert(ctx context.Context, c cats.Cat) (cats.Cat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insertLocked(c)
}

func (r *catRepo) InsertMany(ctx context.Context, cs []cats.Cat) ([]cats.Cat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range cs {
		if c.ID != 0 {
			return nil, errors.New("cat id must be unset")
		}
	}

	out := make([]cats.Cat, 0, len(cs))
	for _, c := range cs {
		saved, err := r.insertLocked(c)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, nil
}

func (r *catRepo) insertLocked(c cats.Cat) (cats.Cat, error) {
	if c.ID != 0 {
		return cats.Cat{}, errors.New("cat id must be unset")
	}
	r.nextID++
	c.ID = r.nextID
	r.byID[c.ID] = c
	return c, nil
}

func (r *catRepo) Update(ctx context.Context, c cats.Cat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *catRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *catRepo) GetByID(ctx context.Context, id int64) (cats.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return cats.Cat{}, ErrNotFound
	}
	return c, nil
}

func (r *catRepo) ListAll(ctx context.Context) ([]cats.Cat, error) {
	return r.list(func(cats.Cat) bool { return true }), nil
}

func (r *catRepo) ListByBreed(ctx context.Context, breed string) ([]cats.Cat, error) {
	return r.list(func(c cats.Cat) bool { return c.Breed == breed }), nil
}

func (r *catRepo) ListByGender(ctx context.Context, gender cats.Gender) ([]cats.Cat, error) {
	return r.list(func(c cats.Cat) bool { return c.Gender == gender }), nil
}

func (r *catRepo) ListBornBetween(ctx context.Context, from, to time.Time) ([]cats.Cat, error) {
	return r.list(func(c cats.Cat) bool { return between(c.DOB, from, to) }), nil
}

func (r *catRepo) ListByBreedAndGender(ctx context.Context, breed string, gender cats.Gender) ([]cats.Cat, error) {
	return r.list(func(c cats.Cat) bool { return c.Breed == breed && c.Gender == gender }), nil
}

func (r *catRepo) ListByBreedBornBetween(ctx context.Context, breed string, from, to time.Time) ([]cats.Cat, error) {
	return r.list(func(c cats.Cat) bool { return c.Breed == breed && between(c.DOB, from, to) }), nil
}

func (r *catRepo) ListByGenderBornBetween(ctx context.Context, gender cats.Gender, from, to time.Time) ([]cats.Cat, error) {
	return r.list(func(c cats.Cat) bool { return c.Gender == gender && between(c.DOB, from, to) }), nil
}

func (r *catRepo) ListByBreedGenderBornBetween(ctx context.Context, breed string, gender cats.Gender, from, to time.Time) ([]cats.Cat, error) {
	return r.list(func(c cats.Cat) bool {
		return c.Breed == breed && c.Gender == gender && between(c.DOB, from, to)
	}), nil
}

// El feed de recientes sale con los ingresos más nuevos primero.
func (r *catRepo) ListAdmittedBetween(ctx context.Context, from, to time.Time) ([]cats.Cat, error) {
	out := r.list(func(c cats.Cat) bool { return between(c.AdmittedAt, from, to) })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AdmittedAt.After(out[j].AdmittedAt)
	})
	return out, nil
}

func (r *catRepo) list(keep func(cats.Cat) bool) []cats.Cat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cats.Cat, 0)
	for _, c := range r.byID {
		if keep(c) {
			out = append(out, c)
		}
	}

	// Orden estable por id (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// BETWEEN inclusivo, igual que en SQL
func between(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
