// Package main is the entry point for the fleet ledger API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/fleet-ledger/internal/config"
	"github.com/pkordes/fleet-ledger/internal/handler"
	"github.com/pkordes/fleet-ledger/internal/ledger"
	"github.com/pkordes/fleet-ledger/internal/middleware"
	"github.com/pkordes/fleet-ledger/internal/repo"
	"github.com/pkordes/fleet-ledger/internal/service"
	"github.com/pkordes/fleet-ledger/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Default text logger; the JSON one is not configured yet.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		slog.Error("catalog error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Storage ----------------------------------------------------------
	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	slog.Info("storage ready", "backend", cfg.Backend)

	// --- Services ---------------------------------------------------------
	engine := ledger.NewEngine(catalog, ledger.WithContinuousOdometer(cfg.RequireContinuousOdometer))
	ledgerSvc := service.NewLedgerService(store, engine, service.WithLogger(logger))
	ledgerSvc.Load(ctx)

	reportSvc := service.NewReportService(ledgerSvc)

	authSvc := service.NewAuthService(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTTTL)
	if !authSvc.Enabled() {
		slog.Warn("admin login disabled; set ADMIN_USERNAME, ADMIN_PASSWORD_HASH and JWT_SECRET to enable plate changes")
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	server := handler.NewServer(ledgerSvc, reportSvc, authSvc, logger)
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore connects the configured backend and returns it with a function
// that releases its connections.
func openStore(ctx context.Context, cfg config.Config) (repo.SheetRepo, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		// New() does not open connections immediately; Ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping: %w", err)
		}

		// goose needs database/sql; borrow connections from the same pool.
		db := stdlib.OpenDBFromPool(pool)
		closeAll := func() {
			_ = db.Close()
			pool.Close()
		}
		applied, err := migrations.Up(ctx, db)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		slog.Info("migrations applied", "count", applied)
		return repo.NewPostgresRepo(pool), closeAll, nil

	case config.BackendWorkbook:
		return repo.NewWorkbookRepo(cfg.WorkbookPath), func() {}, nil

	case config.BackendMongo:
		client, err := repo.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		return repo.NewMongoRepo(client.Database(cfg.MongoDatabase)), disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
