package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/focusweek/internal/config"
	"github.com/klokku/focusweek/internal/database"
	"github.com/klokku/focusweek/internal/utils"
	"github.com/klokku/focusweek/pkg/rollover"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	db     *database.DB
	deps   *Dependencies
	router *mux.Router
	srv    *http.Server
	ticker *rollover.Ticker

	closeOnce sync.Once
}

// NewApplication opens and migrates the database and builds the HTTP application, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application, clock utils.Clock) (*Application, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	deps, err := BuildDependencies(ctx, db, cfg, clock)
	if err != nil {
		db.Close()
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{
		cfg:    cfg,
		db:     db,
		deps:   deps,
		router: r,
		srv:    srv,
		ticker: rollover.NewTicker(deps.Reconciler, cfg.Scheduler.Interval),
	}, nil
}

// Handler exposes the router, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.router
}

func (a *Application) Dependencies() *Dependencies {
	return a.deps
}

// Run starts the reconciliation ticker and, after its activation pass, the HTTP server.
// It blocks until ctx is cancelled or the server fails, then shuts everything down.
func (a *Application) Run(ctx context.Context) error {
	defer a.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.ticker.Run(ctx)
	})
	g.Go(func() error {
		select {
		case <-a.ticker.Activated():
		case <-ctx.Done():
			return nil
		}
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close flushes the notifier and closes the database.
func (a *Application) Close() {
	a.closeOnce.Do(func() {
		a.deps.Close()
		if err := a.db.Close(); err != nil {
			log.Errorf("failed to close database: %v", err)
		}
	})
}
