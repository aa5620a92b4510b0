package router

import (
	"net/http"

	_ "cat-shelter/docs"
	"cat-shelter/internal/domain/browse"
	"cat-shelter/internal/domain/cats"
	"cat-shelter/internal/domain/search"
	"cat-shelter/internal/middleware"
	"cat-shelter/internal/platform/metrics"
	"cat-shelter/internal/ports/photos"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Options struct {
	Cats   *cats.Service
	Browse *browse.Service
	Photos photos.Store

	// Opcionales: sin Metrics no se expone /metrics; sin Logger se usa uno nop.
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	if opts.Metrics != nil {
		r.Use(middleware.AccessLog(opts.Metrics))
	} else {
		r.Use(middleware.AccessLog(nil))
	}
	r.Use(middleware.Recover)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	search.RegisterRoutes(r, opts.Cats)
	cats.RegisterRoutes(r, opts.Cats, opts.Photos)
	browse.RegisterRoutes(r, opts.Browse)

	return r
}
