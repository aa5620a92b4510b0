package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cat-shelter/internal/adapters/blob"
	"cat-shelter/internal/adapters/storage/memory"
	pg "cat-shelter/internal/adapters/storage/postgres"
	"cat-shelter/internal/adapters/storage/sqlite"
	"cat-shelter/internal/config"
	"cat-shelter/internal/domain/browse"
	"cat-shelter/internal/domain/cats"
	"cat-shelter/internal/platform/logger"
	"cat-shelter/internal/platform/metrics"
	"cat-shelter/internal/router"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cat-shelter:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"), os.Getenv)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	photos, err := blob.Open(ctx, cfg.Blob.BlobStore())
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	m := metrics.New()
	catsSvc := cats.NewService(repo,
		cats.WithLogger(log.Named("cats")),
		cats.WithRecorder(m),
		cats.WithLiveGauge(m.LiveReads()),
	)
	browseSvc := browse.NewService(catsSvc, browse.WithLogger(log.Named("browse")))

	// los streams SSE cuelgan de este ctx: se corta al empezar el shutdown
	baseCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
		Handler: router.NewRouter(router.Options{
			Cats:    catsSvc,
			Browse:  browseSvc,
			Photos:  photos,
			Metrics: m,
			Logger:  log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		// sin WriteTimeout: los streams SSE quedan abiertos
	}
	srv.RegisterOnShutdown(cancelStreams)

	log.Info("starting server",
		zap.String("addr", srv.Addr),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("blob", string(photos.Driver())),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return browseSvc.RunSweeper(gctx, cfg.Browse.SweepInterval, cfg.Browse.IdleTimeout)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		browseSvc.CloseAll()
		return err
	})

	return g.Wait()
}

// openStore abre el store elegido. Con seed activo, un store recién creado
// arranca con los gatos de ejemplo.
func openStore(ctx context.Context, cfg config.StorageConfig) (cats.Repository, func(), error) {
	var seed cats.SeedFunc
	if cfg.SeedOrDefault() {
		seed = cats.DefaultSeed(time.Now)
	}

	switch cfg.Driver {
	case config.StorageMemory:
		repo, err := memory.NewCatRepo(ctx, seed)
		return repo, func() {}, err

	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		repo, err := sqlite.OpenCatStore(ctx, db, seed)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, closer(db), nil

	case config.StoragePostgres:
		db, err := pg.Open(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		repo, err := pg.OpenCatStore(ctx, db, seed)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, closer(db), nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func closer(db *sql.DB) func() {
	return func() { _ = db.Close() }
}
