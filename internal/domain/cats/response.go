package cats

import (
	"strconv"
	"time"

	"cat-shelter/internal/ports/photos"
)

// Response es la forma JSON de un gato en la API. La comparten los handlers
// de búsqueda y de sesiones.
type Response struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Gender      Gender    `json:"gender"`
	Breed       string    `json:"breed"`
	Description string    `json:"description"`
	DOB         time.Time `json:"dob"`
	AdmittedAt  time.Time `json:"admitted_at"`
	ImagePath   string    `json:"image_path"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Kitten      bool      `json:"kitten"`
}

func NewResponse(c Cat, now time.Time) Response {
	r := Response{
		ID:          c.ID,
		Name:        c.Name,
		Gender:      c.Gender,
		Breed:       c.Breed,
		Description: c.Description,
		DOB:         c.DOB,
		AdmittedAt:  c.AdmittedAt,
		ImagePath:   c.ImagePath,
		Kitten:      c.IsKitten(now),
	}
	// solo las fotos subidas se sirven por la API
	if _, ok := photos.KeyFromRef(c.ImagePath); ok {
		r.PhotoURL = "/cats/" + strconv.FormatInt(c.ID, 10) + "/photo"
	}
	return r
}

func NewResponses(items []Cat, now time.Time) []Response {
	out := make([]Response, 0, len(items))
	for _, c := range items {
		out = append(out, NewResponse(c, now))
	}
	return out
}
