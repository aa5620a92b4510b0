package search

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cat-shelter/internal/domain/cats"
	"cat-shelter/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func RegisterRoutes(r chi.Router, svc *cats.Service) {
	r.Get("/options", optionsHandler())
	r.Get("/cats", searchCatsHandler(svc))
}

type OptionsResponse struct {
	Breeds          []string `json:"breeds"`
	Genders         []string `json:"genders"`
	AgeRanges       []string `json:"age_ranges"`
	DefaultDistance int      `json:"default_distance"`
}

// Options arma los pick-lists del formulario de búsqueda, con Any primero.
func Options() OptionsResponse {
	genders := []string{Any}
	for _, g := range cats.Genders {
		genders = append(genders, string(g))
	}
	return OptionsResponse{
		Breeds:          append([]string{Any}, cats.Breeds...),
		Genders:         genders,
		AgeRanges:       AgeRangeLabels(),
		DefaultDistance: DefaultDistance,
	}
}

// optionsHandler godoc
// @Summary Valores posibles de los filtros
// @Tags search
// @Produce json
// @Success 200 {object} OptionsResponse
// @Router /options [get]
func optionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Options())
	}
}

type searchResponse struct {
	Query Descriptor      `json:"query"`
	Cats  []cats.Response `json:"cats"`
}

// CriteriaFromQuery lee breed, gender, age_range y distance de la URL.
// Los que faltan quedan en Any / distancia por defecto.
func CriteriaFromQuery(r *http.Request) (Criteria, error) {
	q := r.URL.Query()
	c := Criteria{
		Breed:    strings.TrimSpace(q.Get("breed")),
		Gender:   strings.TrimSpace(q.Get("gender")),
		AgeRange: strings.TrimSpace(q.Get("age_range")),
		Distance: DefaultDistance,
	}
	if s := strings.TrimSpace(q.Get("distance")); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil {
			return Criteria{}, ErrInvalidDistance
		}
		c.Distance = d
	}
	c = c.Normalize()
	return c, c.Validate()
}

// searchCatsHandler godoc
// @Summary Buscar gatos
// @Description Búsqueda puntual: el filtro se clasifica y se ejecuta la lectura que corresponde.
// @Description distance se acepta pero no filtra.
// @Tags search
// @Produce json
// @Param breed query string false "Raza o Any"
// @Param gender query string false "MALE, FEMALE o Any"
// @Param age_range query string false "0-1 year, 1-2 years, 2-5 years, Over 5 years o Any"
// @Param distance query int false "Millas (default 10)"
// @Success 200 {object} searchResponse
// @Failure 400 {string} string "filtro inválido"
// @Router /cats [get]
func searchCatsHandler(svc *cats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := CriteriaFromQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		d := Describe(c)
		items, err := svc.Find(r.Context(), d)
		if err != nil {
			middleware.Logger(r.Context()).Error("search failed", zap.String("kind", string(d.Kind)), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, searchResponse{
			Query: d,
			Cats:  cats.NewResponses(items, time.Now()),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
