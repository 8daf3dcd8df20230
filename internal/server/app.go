// Package server wires configuration, storage, the auth service and the
// network endpoints together and runs them until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/sethvargo/go-retry"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	metrics *metrics.Metrics
	auth    *services.AuthService
}

// NewApp opens storage, applies migrations and builds the auth service.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	rm, err := repomanager.New(c.StoreDriver)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if driver := repomanager.SQLDriverName(c.StoreDriver); driver != "" {
		db, err = openDB(ctx, driver, c.DatabaseDSN, c.DBConnectTimeout, logger)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	hasher, err := cryptox.NewPasswordHasher(c.PasswordHashAlgorithm, c.BcryptCost)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	m := metrics.New()
	auth := services.NewAuthService(
		rm.Users(db),
		hasher,
		cryptox.NewTokenGenerator(c.TokenBytes),
		logger,
		services.Options{
			ConcealUnknownResetEmail: c.ConcealUnknownResetEmail,
			RevokeSessionOnReset:     c.RevokeSessionOnReset,
			Events:                   m,
		},
	)

	return &App{config: c, logger: logger.With("module", "app"), db: db, metrics: m, auth: auth}, nil
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// openDB opens the pool and pings it with exponential backoff until timeout.
func openDB(ctx context.Context, driver, dsn string, timeout time.Duration, logger logging.Logger) (*sql.DB, error) {
	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// one writer; also keeps a :memory: database alive across calls
		db.SetMaxOpenConns(1)
	}

	backoff := retry.WithCappedDuration(2*time.Second, retry.NewExponential(100*time.Millisecond))
	backoff = retry.WithMaxDuration(timeout, backoff)

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			logger.Warn(ctx, "database not ready", "driver", driver, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves gRPC and, when configured, metrics until ctx is canceled, a
// termination signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreDriver)
	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		cancelFunc()
	}

	if app.config.MetricsAddr != "" {
		ms, err := metrics.NewServer(app.config.MetricsAddr, app.metrics, app.logger)
		if err != nil {
			return errors.Join(fmt.Errorf("metrics server: %w", err), app.closeDB())
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ms.Run(ctx); err != nil {
				app.logger.Error(ctx, "metrics server failed", "error", err)
				fail(err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.auth, app.metrics)
		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, "grpc server failed", "error", err)
			fail(err)
		}
	}()

	wg.Wait()

	if err := app.closeDB(); err != nil {
		errs = append(errs, err)
	}

	app.logger.Info(context.Background(), "App stopped")
	return errors.Join(errs...)
}

func (app *App) closeDB() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}
