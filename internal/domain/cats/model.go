package cats

import (
	"strings"
	"time"
)

// Gender define el sexo registrado de un gato.
// @Enum MALE, FEMALE
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Genders en el orden en que se muestran en los formularios.
var Genders = []Gender{GenderMale, GenderFemale}

// ParseGender acepta "male", "Male", "MALE"...
func ParseGender(s string) (Gender, bool) {
	switch Gender(strings.ToUpper(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	default:
		return "", false
	}
}

// Label es la forma "Male"/"Female" que usan los pick-lists.
func (g Gender) Label() string {
	s := strings.ToLower(string(g))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Breeds es el pick-list de razas. Breed es texto libre en el modelo,
// pero los formularios ofrecen solo estas.
var Breeds = []string{
	"Moggie",
	"Bengal",
	"British Shorthair",
	"Maine Coon",
	"Persian",
	"Ragdoll",
	"Siamese",
	"Sphynx",
}

const kittenDays = 365

// Cat representa un gato registrado en el refugio.
type Cat struct {
	ID int64 // lo asigna el store al insertar

	Name        string
	Gender      Gender
	Breed       string
	Description string

	DOB        time.Time
	AdmittedAt time.Time

	ImagePath string
}

// IsKitten: menos de un año de vida respecto de now.
func (c Cat) IsKitten(now time.Time) bool {
	return now.Sub(c.DOB) < kittenDays*24*time.Hour
}
