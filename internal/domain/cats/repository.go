package cats

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("cat not found")
)

// Repository es el store relacional de gatos. Una lectura por forma de consulta.
// Insert devuelve el gato con el ID asignado por el store.
type Repository interface {
	Insert(ctx context.Context, c Cat) (Cat, error)
	InsertMany(ctx context.Context, cs []Cat) ([]Cat, error)
	Update(ctx context.Context, c Cat) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (Cat, error)

	ListAll(ctx context.Context) ([]Cat, error)
	ListByBreed(ctx context.Context, breed string) ([]Cat, error)
	ListByGender(ctx context.Context, gender Gender) ([]Cat, error)
	ListBornBetween(ctx context.Context, from, to time.Time) ([]Cat, error)
	ListByBreedAndGender(ctx context.Context, breed string, gender Gender) ([]Cat, error)
	ListByBreedBornBetween(ctx context.Context, breed string, from, to time.Time) ([]Cat, error)
	ListByGenderBornBetween(ctx context.Context, gender Gender, from, to time.Time) ([]Cat, error)
	ListByBreedGenderBornBetween(ctx context.Context, breed string, gender Gender, from, to time.Time) ([]Cat, error)
	ListAdmittedBetween(ctx context.Context, from, to time.Time) ([]Cat, error)
}
