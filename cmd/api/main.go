package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/wayfare-app/wayfare-api/internal/adapters/fsblob"
	"github.com/wayfare-app/wayfare-api/internal/adapters/graphdir"
	"github.com/wayfare-app/wayfare-api/internal/adapters/httpapi"
	memblob "github.com/wayfare-app/wayfare-api/internal/adapters/memory/blobstore"
	memtriprepo "github.com/wayfare-app/wayfare-api/internal/adapters/memory/triprepo"
	memuserrepo "github.com/wayfare-app/wayfare-api/internal/adapters/memory/userrepo"
	postgres "github.com/wayfare-app/wayfare-api/internal/adapters/postgres"
	pgtriprepo "github.com/wayfare-app/wayfare-api/internal/adapters/postgres/triprepo"
	pguserrepo "github.com/wayfare-app/wayfare-api/internal/adapters/postgres/userrepo"
	"github.com/wayfare-app/wayfare-api/internal/app/trips"
	"github.com/wayfare-app/wayfare-api/internal/app/users"
	"github.com/wayfare-app/wayfare-api/internal/platform/config"
	"github.com/wayfare-app/wayfare-api/internal/platform/logger"
	blobstoreport "github.com/wayfare-app/wayfare-api/internal/ports/out/blobstore"
	triprepoport "github.com/wayfare-app/wayfare-api/internal/ports/out/triprepo"
	userrepoport "github.com/wayfare-app/wayfare-api/internal/ports/out/userrepo"
)

func main() {
	// Best effort; environment variables win over .env entries.
	_ = godotenv.Load()

	log := logger.New("wayfare-api")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := buildHandler(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	if cleanup != nil {
		defer cleanup()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Str("storage", cfg.StorageBackend).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func buildHandler(ctx context.Context, cfg config.Config, log zerolog.Logger) (http.Handler, func(), error) {
	var (
		tripRepo triprepoport.Repository
		userRepo userrepoport.Repository
		cleanup  func()
	)
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres pool: %w", err)
		}
		cleanup = pool.Close
		tripRepo = pgtriprepo.NewRepo(pool)
		userRepo = pguserrepo.NewRepo(pool)
	default:
		tripRepo = memtriprepo.NewRepo()
		userRepo = memuserrepo.NewRepo()
	}

	var blobs blobstoreport.Store
	switch cfg.BlobBackend {
	case config.BlobFilesystem:
		store, err := fsblob.New(cfg.BlobDir, cfg.BlobBaseURL)
		if err != nil {
			if cleanup != nil {
				cleanup()
			}
			return nil, nil, err
		}
		blobs = store
	default:
		blobs = memblob.NewStore(cfg.BlobBaseURL)
	}

	var (
		memberSource trips.MemberSource
		userService  httpapi.UserService
	)
	switch cfg.MembershipMode {
	case config.MembershipFederated:
		dir := graphdir.New(cfg.DirectoryBaseURL, cfg.DirectoryToken)
		memberSource = trips.DirectoryMembers(dir)
		userService = users.NewDirectoryService(dir)
	default:
		memberSource = trips.LocalMembers(userRepo)
		userService = users.NewService(userRepo)
	}

	tripSvc := trips.NewService(tripRepo, memberSource, blobs)

	if cfg.Seed {
		if err := seed(ctx, userRepo, tripSvc); err != nil {
			if cleanup != nil {
				cleanup()
			}
			return nil, nil, fmt.Errorf("seed: %w", err)
		}
		log.Info().Msg("seed data loaded")
	}

	handler := httpapi.NewRouter(httpapi.RouterOptions{
		Trips:  tripSvc,
		Users:  userService,
		APIKey: cfg.APIKey,
		Logger: log,
	})
	return handler, cleanup, nil
}
