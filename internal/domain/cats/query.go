package cats

import "time"

// QueryKind identifica una de las lecturas del store.
type QueryKind string

const (
	QueryAll                   QueryKind = "ALL"
	QueryByBreed               QueryKind = "BY_BREED"
	QueryByGender              QueryKind = "BY_GENDER"
	QueryByAgeRange            QueryKind = "BY_AGE_RANGE"
	QueryByBreedAndGender      QueryKind = "BY_BREED_AND_GENDER"
	QueryByBreedAndAgeRange    QueryKind = "BY_BREED_AND_AGE_RANGE"
	QueryByGenderAndAgeRange   QueryKind = "BY_GENDER_AND_AGE_RANGE"
	QueryByBreedGenderAgeRange QueryKind = "BY_BREED_AND_GENDER_AND_AGE_RANGE"

	// QueryAdmittedBetween alimenta el feed de ingresos recientes.
	QueryAdmittedBetween QueryKind = "ADMITTED_BETWEEN"
)

// Window es un rango de fechas inclusivo en ambos extremos.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// Query es una lectura ya resuelta: las ventanas de fecha son absolutas.
// Solo se usan los campos que el Kind necesita.
type Query struct {
	Kind     QueryKind
	Breed    string
	Gender   Gender
	Born     Window
	Admitted Window
}

// Matches evalúa el mismo predicado que ejecuta el repositorio.
// Se usa para decidir qué lecturas vivas hay que reevaluar tras una mutación.
func (q Query) Matches(c Cat) bool {
	switch q.Kind {
	case QueryAll:
		return true
	case QueryByBreed:
		return c.Breed == q.Breed
	case QueryByGender:
		return c.Gender == q.Gender
	case QueryByAgeRange:
		return q.Born.Contains(c.DOB)
	case QueryByBreedAndGender:
		return c.Breed == q.Breed && c.Gender == q.Gender
	case QueryByBreedAndAgeRange:
		return c.Breed == q.Breed && q.Born.Contains(c.DOB)
	case QueryByGenderAndAgeRange:
		return c.Gender == q.Gender && q.Born.Contains(c.DOB)
	case QueryByBreedGenderAgeRange:
		return c.Breed == q.Breed && c.Gender == q.Gender && q.Born.Contains(c.DOB)
	case QueryAdmittedBetween:
		return q.Admitted.Contains(c.AdmittedAt)
	default:
		return false
	}
}
