package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dsa-tracker/internal/config"
	"dsa-tracker/internal/httpapi"
	"dsa-tracker/internal/problems"
	"dsa-tracker/pkg/logger"
	"dsa-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := openStore(rootCtx, cfg, log)
	if err != nil {
		log.Error("store init failed", "backend", cfg.Store.Backend, "err", err)
		os.Exit(1)
	}
	defer st.closer.Close()

	h := httpapi.Handlers{
		Problems: problems.NewService(st.repo, log),
		Health:   st.health,
	}
	r := newRouter(log, httpapi.CORSConfig{AllowedOrigins: cfg.CORS.AllowedOrigins}, h)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening",
			"addr", srv.Addr,
			"env", cfg.App.Env,
			"backend", cfg.Store.Backend,
			"title", httpapi.APITitle,
			"version", httpapi.APIVersion,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

type store struct {
	repo   problems.Repository
	health func(ctx context.Context) error
	closer io.Closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore builds the configured problem repository.
// Persistent backends are seeded once; the memory backend is seeded on every start.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := utils.OpenPostgres(ctx, cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			return store{}, err
		}
		repo := problems.NewPostgresRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return store{}, fmt.Errorf("postgres schema: %w", err)
		}
		return store{
			repo:   repo,
			health: func(ctx context.Context) error { return utils.PingPostgres(ctx, db, 2*time.Second) },
			closer: db,
		}, nil

	case config.BackendRedis:
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			return store{}, err
		}
		repo := problems.NewRedisRepo(rdb, cfg.Redis.KeyPrefix)
		seeded, err := repo.EnsureSeeded(ctx)
		if err != nil {
			_ = rdb.Close()
			return store{}, fmt.Errorf("redis seed: %w", err)
		}
		log.Info("redis store ready", "prefix", cfg.Redis.KeyPrefix, "seeded", seeded)
		return store{
			repo:   repo,
			health: func(ctx context.Context) error { return utils.PingRedis(ctx, rdb, 2*time.Second) },
			closer: rdb,
		}, nil

	default:
		return store{repo: problems.NewMemoryRepo(), closer: nopCloser{}}, nil
	}
}
