package cats

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cat-shelter/internal/ports/photos"
	"cat-shelter/internal/middleware"
	"cat-shelter/internal/platform/livequery"
	"cat-shelter/internal/platform/sse"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxPhotoBytes = 10 << 20
	pingInterval  = 15 * time.Second
)

// RegisterRoutes monta las rutas de alta, detalle, foto y recientes.
// GET /cats (búsqueda) lo monta el paquete search.
func RegisterRoutes(r chi.Router, svc *Service, store photos.Store) {
	r.Post("/cats", admitCatHandler(svc, store))

	r.Get("/cats/recent", recentCatsHandler(svc))
	r.Get("/cats/recent/stream", recentStreamHandler(svc))
	r.Get("/cats/featured", featuredCatHandler(svc))

	r.Get("/cats/{catID}", getCatHandler(svc))
	r.Get("/cats/{catID}/photo", catPhotoHandler(svc, store))
}

type admitCatRequest struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"` // MALE|FEMALE
	Breed       string `json:"breed"`
	Description string `json:"description"`
	DOB         string `json:"dob"` // YYYY-MM-DD opcional (default hoy)
	ImagePath   string `json:"image_path"`
}

func (req admitCatRequest) input() (AdmitInput, error) {
	g, ok := ParseGender(req.Gender)
	if !ok {
		// Admit decide: sin nombre/foto es no-op, si no ErrInvalidInput
		g = Gender(strings.TrimSpace(req.Gender))
	}

	var dob time.Time
	if s := strings.TrimSpace(req.DOB); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return AdmitInput{}, errors.New("dob must be YYYY-MM-DD")
		}
		dob = t
	}

	return AdmitInput{
		Name:        req.Name,
		Gender:      g,
		Breed:       req.Breed,
		Description: req.Description,
		DOB:         dob,
		ImagePath:   req.ImagePath,
	}, nil
}

// admitCatHandler godoc
// @Summary Registrar un gato
// @Description Acepta JSON (con image_path) o multipart/form-data con la foto en el campo "photo".
// @Description Sin nombre o sin foto no se crea nada y responde 204.
// @Tags cats
// @Accept json
// @Accept mpfd
// @Produce json
// @Param payload body admitCatRequest false "Datos del gato (JSON)"
// @Param photo formData file false "Foto (multipart)"
// @Success 201 {object} Response
// @Success 204 "sin nombre o sin foto: no se creó nada"
// @Failure 400 {string} string "invalid json / dob inválido / gender inválido"
// @Failure 502 {string} string "photo store unavailable"
// @Router /cats [post]
func admitCatHandler(svc *Service, store photos.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.Logger(r.Context())

		var (
			req      admitCatRequest
			photoKey string
		)

		ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if ct == "multipart/form-data" {
			r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+1<<20)
			if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
				http.Error(w, "invalid multipart form", http.StatusBadRequest)
				return
			}
			req = admitCatRequest{
				Name:        r.FormValue("name"),
				Gender:      r.FormValue("gender"),
				Breed:       r.FormValue("breed"),
				Description: r.FormValue("description"),
				DOB:         r.FormValue("dob"),
				ImagePath:   r.FormValue("image_path"),
			}

			// sin nombre no tiene sentido subir la foto
			if strings.TrimSpace(req.Name) != "" {
				key, err := storePhoto(r, store)
				switch {
				case errors.Is(err, http.ErrMissingFile):
				case err != nil:
					log.Error("photo upload failed", zap.Error(err))
					http.Error(w, "photo store unavailable", http.StatusBadGateway)
					return
				default:
					photoKey = key
					req.ImagePath = photos.Ref(key)
				}
			}
		} else {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		in, err := req.input()
		if err != nil {
			discardPhoto(r, store, photoKey)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		c, created, err := svc.Admit(r.Context(), in)
		if err != nil {
			discardPhoto(r, store, photoKey)
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "gender must be MALE or FEMALE", http.StatusBadRequest)
				return
			}
			log.Error("admit cat failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !created {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		writeJSON(w, http.StatusCreated, NewResponse(c, time.Now()))
	}
}

func storePhoto(r *http.Request, store photos.Store) (string, error) {
	f, hdr, err := r.FormFile("photo")
	if err != nil {
		return "", err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	key := "photos/" + uuid.NewString() + ext

	contentType := hdr.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if _, err := store.Put(r.Context(), key, f, contentType); err != nil {
		return "", err
	}
	return key, nil
}

func discardPhoto(r *http.Request, store photos.Store, key string) {
	if key == "" {
		return
	}
	if err := store.Delete(r.Context(), key); err != nil {
		middleware.Logger(r.Context()).Warn("orphan photo left behind", zap.String("key", key), zap.Error(err))
	}
}

// getCatHandler godoc
// @Summary Detalle de un gato
// @Tags cats
// @Produce json
// @Param catID path int true "ID del gato"
// @Success 200 {object} Response
// @Failure 400 {string} string "invalid id"
// @Failure 404 {string} string "not found"
// @Router /cats/{catID} [get]
func getCatHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := catID(w, r)
		if !ok {
			return
		}

		c, err := svc.Get(r.Context(), id)
		if err != nil {
			writeLookupError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, NewResponse(c, time.Now()))
	}
}

// catPhotoHandler godoc
// @Summary Foto de un gato
// @Description Solo para fotos subidas por la API (image_path "blob:...").
// @Tags cats
// @Produce octet-stream
// @Param catID path int true "ID del gato"
// @Success 200 {file} file
// @Failure 404 {string} string "not found"
// @Router /cats/{catID}/photo [get]
func catPhotoHandler(svc *Service, store photos.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := catID(w, r)
		if !ok {
			return
		}

		c, err := svc.Get(r.Context(), id)
		if err != nil {
			writeLookupError(w, r, err)
			return
		}

		key, ok := photos.KeyFromRef(c.ImagePath)
		if !ok {
			http.Error(w, "photo not stored by this service", http.StatusNotFound)
			return
		}

		info, rc, err := store.Get(r.Context(), key)
		if err != nil {
			if errors.Is(err, photos.ErrNotFound) {
				http.Error(w, "photo not found", http.StatusNotFound)
				return
			}
			middleware.Logger(r.Context()).Error("photo read failed", zap.String("key", key), zap.Error(err))
			http.Error(w, "photo store unavailable", http.StatusBadGateway)
			return
		}
		defer rc.Close()

		if info.ContentType != "" {
			w.Header().Set("Content-Type", info.ContentType)
		}
		if info.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, rc)
	}
}

// recentCatsHandler godoc
// @Summary Ingresos recientes
// @Description Gatos ingresados en los últimos 30 días, los más nuevos primero.
// @Tags cats
// @Produce json
// @Success 200 {array} Response
// @Router /cats/recent [get]
func recentCatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.RecentSnapshot(r.Context())
		if err != nil {
			middleware.Logger(r.Context()).Error("recent cats failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, NewResponses(items, time.Now()))
	}
}

// recentStreamHandler godoc
// @Summary Stream de ingresos recientes (SSE)
// @Description Envía un evento "cats" con la lista completa al conectar y cada vez que cambia.
// @Tags cats
// @Produce text/event-stream
// @Success 200 {array} Response
// @Router /cats/recent/stream [get]
func recentStreamHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stream, err := sse.NewWriter(w)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		latest := livequery.NewLatest[Cat]()
		sub := svc.Recent(r.Context(), latest.Push)
		defer sub.Cancel()

		StreamResults(r, stream, latest, nil)
	}
}

// StreamResults reenvía cada resultado de latest como evento "cats" hasta
// que el cliente corta. Los errores de lectura van como evento "error".
// Si done se cierra, manda un evento "closed" y termina; nil no cierra nunca.
func StreamResults(r *http.Request, stream *sse.Writer, latest *livequery.Latest[Cat], done <-chan struct{}) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			_ = stream.Send("closed", map[string]string{"reason": "source closed"})
			return
		case <-ping.C:
			if err := stream.Ping(); err != nil {
				return
			}
		case res := <-latest.C():
			var err error
			if res.Err != nil {
				err = stream.Send("error", map[string]string{"error": "store unavailable"})
			} else {
				err = stream.Send("cats", NewResponses(res.Items, time.Now()))
			}
			if err != nil {
				return
			}
		}
	}
}

type featuredResponse struct {
	Cat Response `json:"cat"`
}

// featuredCatHandler godoc
// @Summary Gato destacado
// @Description Uno al azar entre los ingresos recientes.
// @Tags cats
// @Produce json
// @Success 200 {object} featuredResponse
// @Failure 404 {string} string "no recent cats"
// @Router /cats/featured [get]
func featuredCatHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok, err := svc.Featured(r.Context())
		if err != nil {
			middleware.Logger(r.Context()).Error("featured cat failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "no recent cats", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, featuredResponse{Cat: NewResponse(c, time.Now())})
	}
}

func catID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "catID"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	middleware.Logger(r.Context()).Error("cat lookup failed", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
