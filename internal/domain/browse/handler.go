package browse

import (
	"encoding/json"
	"errors"
	"net/http"

	"cat-shelter/internal/domain/cats"
	"cat-shelter/internal/domain/search"
	"cat-shelter/internal/middleware"
	"cat-shelter/internal/platform/sse"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", openSessionHandler(svc))
		r.Get("/{sessionID}", getSessionHandler(svc))
		r.Put("/{sessionID}/criteria", updateCriteriaHandler(svc))
		r.Get("/{sessionID}/stream", streamSessionHandler(svc))
		r.Delete("/{sessionID}", closeSessionHandler(svc))
	})
}

// openSessionHandler godoc
// @Summary Abrir sesión de navegación
// @Description Arranca con todos los filtros en Any y una lectura viva de todos los gatos.
// @Tags browse
// @Produce json
// @Success 201 {object} View
// @Router /sessions [post]
func openSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, svc.Open(r.Context()))
	}
}

// getSessionHandler godoc
// @Summary Estado de una sesión
// @Tags browse
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Success 200 {object} View
// @Failure 404 {string} string "not found"
// @Router /sessions/{sessionID} [get]
func getSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

type updateResponse struct {
	Changed bool `json:"changed"`
	Session View `json:"session"`
}

// updateCriteriaHandler godoc
// @Summary Cambiar el filtro de una sesión
// @Description Si el filtro no cambió no se emite consulta nueva (changed=false).
// @Tags browse
// @Accept json
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Param payload body search.Criteria true "Filtro propuesto"
// @Success 200 {object} updateResponse
// @Failure 400 {string} string "invalid json / filtro inválido"
// @Failure 404 {string} string "not found"
// @Router /sessions/{sessionID}/criteria [put]
func updateCriteriaHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// campos ausentes: Normalize completa los textos con Any y distance
		// queda en el default, igual que en GET /cats
		c := search.Criteria{Distance: search.DefaultDistance}
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		v, changed, err := svc.Update(r.Context(), chi.URLParam(r, "sessionID"), c)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updateResponse{Changed: changed, Session: v})
	}
}

// streamSessionHandler godoc
// @Summary Resultados de la sesión (SSE)
// @Description Evento "cats" con la lista completa al conectar y cada vez que cambia, también al cambiar el filtro.
// @Description Si la sesión se cierra (DELETE o inactividad) llega un evento "closed" y el stream termina.
// @Tags browse
// @Produce text/event-stream
// @Param sessionID path string true "ID de la sesión"
// @Success 200 {array} cats.Response
// @Failure 404 {string} string "not found"
// @Router /sessions/{sessionID}/stream [get]
func streamSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed, err := svc.Results(chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer feed.Detach()

		stream, err := sse.NewWriter(w)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		cats.StreamResults(r, stream, feed.Latest, feed.Done)
	}
}

// closeSessionHandler godoc
// @Summary Cerrar sesión
// @Tags browse
// @Param sessionID path string true "ID de la sesión"
// @Success 204
// @Failure 404 {string} string "not found"
// @Router /sessions/{sessionID} [delete]
func closeSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Close(chi.URLParam(r, "sessionID")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		middleware.Logger(r.Context()).Error("browse request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
