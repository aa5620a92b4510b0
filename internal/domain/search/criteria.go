// Package search decide qué lectura del store corresponde a un filtro de
// búsqueda. No tiene estado ni hace I/O.
package search

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"cat-shelter/internal/domain/cats"
)

// Any es el centinela "sin restricción" de breed, gender y age range.
const Any = "Any"

// DefaultDistance en millas. Se acepta pero no filtra.
const DefaultDistance = 10

var (
	ErrUnknownGender   = errors.New("unknown gender")
	ErrUnknownAgeRange = errors.New("unknown age range")
	ErrInvalidDistance = errors.New("invalid distance")
)

// Criteria es el filtro que arma el usuario. Cada campo vale Any o un único
// valor concreto.
type Criteria struct {
	Breed    string `json:"breed"`
	Gender   string `json:"gender"`
	AgeRange string `json:"age_range"`
	Distance int    `json:"distance"`
}

// Default: todo sin restringir y la distancia por defecto.
func Default() Criteria {
	return Criteria{
		Breed:    Any,
		Gender:   Any,
		AgeRange: Any,
		Distance: DefaultDistance,
	}
}

// Normalize completa campos vacíos con el centinela y acepta el sexo
// en cualquier capitalización.
func (c Criteria) Normalize() Criteria {
	if c.Breed == "" {
		c.Breed = Any
	}
	if c.Gender == "" {
		c.Gender = Any
	}
	if c.AgeRange == "" {
		c.AgeRange = Any
	}
	if c.Gender != Any {
		if g, ok := cats.ParseGender(c.Gender); ok {
			c.Gender = string(g)
		}
	}
	return c
}

// Validate deja a Select total: después de esto todo valor es conocido.
func (c Criteria) Validate() error {
	if c.Gender != Any {
		if _, ok := cats.ParseGender(c.Gender); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownGender, c.Gender)
		}
	}
	if c.AgeRange != Any {
		if _, ok := LookupAgeRange(c.AgeRange); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAgeRange, c.AgeRange)
		}
	}
	if c.Distance < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDistance, c.Distance)
	}
	return nil
}

func (c Criteria) breedSet() bool  { return c.Breed != Any }
func (c Criteria) genderSet() bool { return c.Gender != Any }
func (c Criteria) ageSet() bool    { return c.AgeRange != Any }

const day = 24 * time.Hour

// AgeRange es un bucket de edad y su ventana de fecha de nacimiento,
// expresada en días hacia atrás desde "ahora" (negativo = hacia adelante).
type AgeRange struct {
	Label        string
	OldestDays   int // inicio de la ventana: now - OldestDays
	YoungestDays int // fin de la ventana: now - YoungestDays
}

// Window resuelve el bucket contra now. Ambos extremos son inclusivos.
func (a AgeRange) Window(now time.Time) cats.Window {
	return cats.Window{
		From: now.Add(-time.Duration(a.OldestDays) * day),
		To:   now.Add(-time.Duration(a.YoungestDays) * day),
	}
}

// AgeRanges en el orden del pick-list. Las costuras se solapan un día; el
// primer bucket se extiende un año hacia adelante para que un gato nacido
// después de emitida la consulta siga entrando.
var AgeRanges = []AgeRange{
	{Label: "0-1 year", OldestDays: 365, YoungestDays: -365},
	{Label: "1-2 years", OldestDays: 365 * 2, YoungestDays: 364},
	{Label: "2-5 years", OldestDays: 365 * 5, YoungestDays: 365*2 - 1},
	{Label: "Over 5 years", OldestDays: 365 * 40, YoungestDays: 365*5 - 1},
}

func LookupAgeRange(label string) (AgeRange, bool) {
	i := slices.IndexFunc(AgeRanges, func(a AgeRange) bool { return a.Label == label })
	if i < 0 {
		return AgeRange{}, false
	}
	return AgeRanges[i], true
}

// AgeRangeLabels con Any primero, como lo muestra el formulario.
func AgeRangeLabels() []string {
	out := []string{Any}
	for _, a := range AgeRanges {
		out = append(out, a.Label)
	}
	return out
}
