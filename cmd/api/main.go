package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-accountability-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/config"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/classifier"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/progress"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/workers"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/logger"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is configured from cfg, so this is the one place that
		// cannot use it.
		os.Stderr.WriteString("Critical: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		os.Stderr.WriteString("Critical: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	startTime := time.Now()
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Register(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("connecting to database", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))

	db, err := sqlx.Connect("pgx", cfg.DatabaseDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("database connected and migrated")

	var rdb *redis.Client
	if cfg.RedisHost != "" {
		rdb, err = cache.NewRedisClient(ctx, cache.Options{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn("redis unavailable, running without cache and rate limiting", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	app := buildApp(cfg, log, db, rdb)
	app.worker.Start(ctx)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		MessageHandler:  app.messageHandler,
		UserHandler:     app.userHandler,
		HabitHandler:    app.habitHandler,
		ProofHandler:    app.proofHandler,
		ProgressHandler: app.progressHandler,
		TokenService:    app.tokens,
		DB:              db,
		Redis:           rdb,
		Logger:          log,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
		StartTime:       startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("accountability engine listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("stop signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	select {
	case <-app.worker.Done():
	case <-shutdownCtx.Done():
		log.Warn("progress worker did not stop in time")
	}

	log.Info("server stopped gracefully")
	return nil
}

type app struct {
	worker *workers.ProgressWorker
	tokens *services.TokenService

	messageHandler  *adapterHTTP.MessageHandler
	userHandler     *adapterHTTP.UserHandler
	habitHandler    *adapterHTTP.HabitHandler
	proofHandler    *adapterHTTP.ProofHandler
	progressHandler *adapterHTTP.ProgressHandler
}

// buildApp wires repositories, the classifier, the progress engine and the
// services. Redis is optional: without it habits are read straight from
// Postgres and streak snapshots stay in process memory.
func buildApp(cfg *config.Config, log *zap.Logger, db *sqlx.DB, rdb *redis.Client) *app {
	userRepo := repository.NewPostgresUserRepository(db)
	proofRepo := repository.NewPostgresProofRepository(db)

	var habitRepo domain.HabitRepository = repository.NewPostgresHabitRepository(db)
	var tracker workers.StreakTracker = workers.NewMemoryStreakTracker()
	if rdb != nil {
		habitRepo = repository.NewCachedHabitRepository(habitRepo, rdb, log)
		tracker = cache.NewRedisStreakTracker(rdb)
	}

	engine := progress.NewEngine(progress.Policy{
		CountCheatDays:   cfg.CheatDaysCount,
		CheatDaysPerWeek: cfg.CheatDaysPerWeek,
	})
	cls := classifier.New(classifier.WithMinConfidence(cfg.ClassifierMinConfidence))

	worker := workers.NewProgressWorker(userRepo, habitRepo, proofRepo, engine, tracker, log)

	userSvc := services.NewUserService(userRepo)
	habitSvc := services.NewHabitService(habitRepo, userRepo)
	proofSvc := services.NewProofService(userRepo, habitRepo, proofRepo, cls, worker, log)
	progressSvc := services.NewProgressService(userRepo, habitRepo, proofRepo, engine)

	return &app{
		worker: worker,
		tokens: services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTDuration),

		messageHandler:  adapterHTTP.NewMessageHandler(proofSvc, log),
		userHandler:     adapterHTTP.NewUserHandler(userSvc, log),
		habitHandler:    adapterHTTP.NewHabitHandler(habitSvc, log),
		proofHandler:    adapterHTTP.NewProofHandler(proofSvc, log),
		progressHandler: adapterHTTP.NewProgressHandler(progressSvc, log),
	}
}
