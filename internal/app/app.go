package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"example.com/wordle-server/internal/auth"
	"example.com/wordle-server/internal/config"
	"example.com/wordle-server/internal/corpus"
	"example.com/wordle-server/internal/game"
	"example.com/wordle-server/internal/httpapi"
	"example.com/wordle-server/internal/migrate"
	"example.com/wordle-server/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	db  *pgxpool.Pool
	rdb *redis.Client

	srv *http.Server
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{cfg: cfg, log: log}

	table, err := a.openTable(ctx)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	words, err := loadCorpus(ctx, cfg)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	log.Info("corpus loaded",
		"source", cfg.Corpus.Source,
		"valid", words.ValidCount(),
		"answers", words.AnswerCount(),
	)

	// --- Auth service ---
	authSvc := auth.NewService([]byte(cfg.Auth.Secret))

	// --- Game ---
	manager := game.NewManager(table, words, log)
	gameH := &httpapi.GameHandler{Game: manager, Log: log}
	authH := &httpapi.AuthHandler{
		Auth:           authSvc,
		IdentityTTL:    cfg.Auth.IdentityTTL,
		GoogleClientID: cfg.Auth.GoogleClientID,
		Log:            log,
		Secure:         cfg.Env != "dev",
	}
	limiter := httpapi.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	gameH.RegisterRoutes(mux, limiter.Middleware)
	authH.RegisterRoutes(mux)

	handler := httpapi.RequestLogger(log)(httpapi.IdentityMiddleware(authSvc)(mux))

	a.srv = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	return a, nil
}

func (a *App) openTable(ctx context.Context) (store.Table, error) {
	cfg := a.cfg

	switch cfg.Storage.Backend {
	case "postgres":
		if cfg.Postgres.RunMigrations {
			if err := migrate.Up(ctx, cfg.Postgres.URL, a.log); err != nil {
				return nil, err
			}
		}

		dbpool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("pgxpool: %w", err)
		}
		a.db = dbpool

		// Quick connectivity check (fail fast).
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := dbpool.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		a.log.Info("storage ready", "backend", "postgres")
		return store.NewPostgresTable(dbpool), nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		a.rdb = rdb

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
		}
		a.log.Info("storage ready", "backend", "redis", "prefix", cfg.Redis.Prefix)
		return store.NewRedisTable(rdb, cfg.Redis.Prefix), nil

	case "memory":
		a.log.Warn("storage is in-memory; sessions and scores are lost on restart")
		return store.NewMemoryTable(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func loadCorpus(ctx context.Context, cfg config.Config) (*corpus.Corpus, error) {
	var src corpus.Source
	switch cfg.Corpus.Source {
	case "s3":
		s3src, err := corpus.NewS3Source(ctx, corpus.S3Config{
			Bucket:     cfg.S3.Bucket,
			Region:     cfg.S3.Region,
			Endpoint:   cfg.S3.Endpoint,
			AccessKey:  cfg.S3.AccessKey,
			SecretKey:  cfg.S3.SecretKey,
			ValidKey:   cfg.S3.ValidKey,
			AnswersKey: cfg.S3.AnswersKey,
		})
		if err != nil {
			return nil, err
		}
		src = s3src
	default:
		src = corpus.FileSource{
			ValidPath:   cfg.Corpus.ValidPath,
			AnswersPath: cfg.Corpus.AnswersPath,
		}
	}
	return corpus.Load(ctx, src)
}

// Handler is the full HTTP handler, middlewares included.
func (a *App) Handler() http.Handler {
	return a.srv.Handler
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr)

	g.Go(func() error {
		err := a.srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info("http server shutting down")
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	err := g.Wait()
	_ = a.Close(context.Background())
	return err
}

func (a *App) Close(ctx context.Context) error {
	// best-effort
	if a.db != nil {
		a.db.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	return nil
}
