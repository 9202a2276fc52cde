package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/brackets"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/cache"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/config"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/db"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/handlers"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/live"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/repositories"
	api "github.com/nkhatu/SwissRoundRobinApp-sub000/routes"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/services"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/storage"
)

const (
	shutdownTimeout = 15 * time.Second
	snapshotTimeout = 2 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.Migrate(ctx, dbConn); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info("database ready")

	standingsCache := cache.NewNoopCache()
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()
		standingsCache = cache.NewRedisStandingsCache(client, cfg.CacheTTL, logger)
		logger.Info("standings cache enabled", slog.Duration("ttl", cfg.CacheTTL))
	}

	r2 := storage.CloudflareR2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
		Endpoint:        cfg.R2Endpoint,
	}
	var objectStore storage.ObjectStore
	if r2.Enabled() {
		store, err := storage.NewCloudflareR2Store(ctx, r2, logger)
		if err != nil {
			return fmt.Errorf("initialize R2 store: %w", err)
		}
		objectStore = storage.NewBreakerStore(store, storage.DefaultBreakerSettings(), logger)
		logger.Info("snapshot export to R2 enabled", slog.String("bucket", r2.BucketName))
	} else {
		objectStore = storage.NewMemoryStore(cfg.R2PublicBaseURL, logger)
		logger.Warn("R2 is not configured, snapshots are kept in memory")
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := live.NewHub(logger)
	go wsHub.Run(hubCtx)

	tables := brackets.NewRandomTableAssigner()
	if cfg.TableRNGSeed != 0 {
		tables = brackets.NewTableAssigner(cfg.TableRNGSeed)
	}
	generator := brackets.NewSwissRoundRobinGenerator(tables)

	tx := repositories.NewTransactor(dbConn, logger)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	seedRepo := repositories.NewPostgresSeedRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)

	authService := services.NewAuthService(userRepo, cfg.AdminEmails, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, logger)
	seedService := services.NewSeedService(tx, tournamentRepo, seedRepo, groupRepo, logger)
	groupService := services.NewGroupService(tx, tournamentRepo, seedRepo, groupRepo, roundRepo, standingsCache, wsHub, logger)
	roundService := services.NewRoundService(tx, tournamentRepo, groupRepo, roundRepo, matchRepo, generator, standingsCache, wsHub, logger)
	matchService := services.NewMatchService(tx, tournamentRepo, roundRepo, matchRepo, standingsCache, wsHub, logger)
	standingsService := services.NewStandingsService(tournamentRepo, groupRepo, roundRepo, matchRepo, standingsCache, logger)
	snapshotService := services.NewSnapshotService(tournamentRepo, standingsService, objectStore, wsHub, logger)

	if cfg.SnapshotCron != "" {
		scheduler, err := services.NewSnapshotScheduler(cfg.SnapshotCron, snapshotService, snapshotTimeout, logger)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		logger.Info("snapshot scheduler started", slog.String("schedule", cfg.SnapshotCron))
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:        handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.TokenTTL),
		Tournaments: handlers.NewTournamentHandler(tournamentService, seedService),
		Groups:      handlers.NewGroupHandler(groupService, roundService),
		Matches:     handlers.NewMatchHandler(matchService),
		Standings:   handlers.NewStandingsHandler(standingsService, snapshotService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, standingsService, cfg.CORSAllowedOrigins, logger),
	}, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: 30 * time.Second,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped")
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
	stopHub()
	if err := server.Shutdown(shutdownCtx); err != nil {
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}
