// Package server initializes and runs the DeckVault application server.
// It opens the database pool, runs migrations, wires repositories, services
// and the HTTP surface, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelmore/deckvault/internal/logging"
	"github.com/avelmore/deckvault/internal/server/config"
	"github.com/avelmore/deckvault/internal/server/httpapi"
	"github.com/avelmore/deckvault/internal/server/pricecache"
	"github.com/avelmore/deckvault/internal/server/repositories/repomanager"
	"github.com/avelmore/deckvault/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	prices := pricecache.New(cfg.PriceCacheSize, cfg.PriceCacheTTL)

	userService := services.NewUserService(db, rm, cfg)
	decklistService := services.NewDecklistService(db, rm)
	inventoryService := services.NewInventoryService(db, rm, prices)
	deckService := services.NewDeckService(db, rm, prices)
	detailService := services.NewDetailService(db, rm, prices)

	handlers := httpapi.NewHandlers(userService, decklistService, inventoryService, deckService, detailService, logger)
	router := httpapi.NewRouter(handlers)

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	})

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		handler: corsWrapper.Handler(router),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until the context is cancelled or a termination signal
// arrives, then shuts down gracefully and closes the database pool.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	server := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddrHTTP)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		app.logger.Error(ctx, "http server error", "error", err)
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close error", "error", err)
	}

	return nil
}
