package search

import (
	"time"

	"cat-shelter/internal/domain/cats"
)

// Descriptor es la consulta elegida para un filtro. Guarda el bucket de edad
// por etiqueta: la ventana de fechas recién se calcula en Resolve.
type Descriptor struct {
	Kind     cats.QueryKind `json:"kind"`
	Breed    string         `json:"breed,omitempty"`
	Gender   cats.Gender    `json:"gender,omitempty"`
	AgeRange string         `json:"age_range,omitempty"`
}

// Resolve arma la consulta concreta contra now. Implementa cats.QuerySource.
func (d Descriptor) Resolve(now time.Time) cats.Query {
	q := cats.Query{
		Kind:   d.Kind,
		Breed:  d.Breed,
		Gender: d.Gender,
	}
	if a, ok := LookupAgeRange(d.AgeRange); ok {
		q.Born = a.Window(now)
	}
	return q
}

const (
	maskAge = 1 << iota
	maskGender
	maskBreed
)

// queryByMask: una entrada por combinación de campos restringidos.
var queryByMask = [8]cats.QueryKind{
	0:                                cats.QueryAll,
	maskBreed:                        cats.QueryByBreed,
	maskGender:                       cats.QueryByGender,
	maskAge:                          cats.QueryByAgeRange,
	maskBreed | maskGender:           cats.QueryByBreedAndGender,
	maskBreed | maskAge:              cats.QueryByBreedAndAgeRange,
	maskGender | maskAge:             cats.QueryByGenderAndAgeRange,
	maskBreed | maskGender | maskAge: cats.QueryByBreedGenderAgeRange,
}

// Changed compara los cuatro campos, distancia incluida.
func Changed(previous, proposed Criteria) bool {
	return proposed.Breed != previous.Breed ||
		proposed.Gender != previous.Gender ||
		proposed.AgeRange != previous.AgeRange ||
		proposed.Distance != previous.Distance
}

// Select devuelve ok=false si el filtro no cambió (no hay consulta nueva).
// Si cambió, la consulta sale solo de qué campos de proposed están
// restringidos; la distancia cuenta como cambio pero no elige consulta.
func Select(previous, proposed Criteria) (Descriptor, bool) {
	if !Changed(previous, proposed) {
		return Descriptor{}, false
	}
	return Describe(proposed), true
}

// Describe clasifica un filtro sin compararlo con el anterior.
func Describe(c Criteria) Descriptor {
	mask := 0
	d := Descriptor{}
	if c.breedSet() {
		mask |= maskBreed
		d.Breed = c.Breed
	}
	if c.genderSet() {
		mask |= maskGender
		d.Gender = cats.Gender(c.Gender)
	}
	if c.ageSet() {
		mask |= maskAge
		d.AgeRange = c.AgeRange
	}
	d.Kind = queryByMask[mask]
	return d
}
