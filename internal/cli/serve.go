package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/eleven-am/eventhub/internal/auth"
	"github.com/eleven-am/eventhub/internal/config"
	"github.com/eleven-am/eventhub/internal/logger"
	"github.com/eleven-am/eventhub/internal/metrics"
	"github.com/eleven-am/eventhub/internal/orm"
	"github.com/eleven-am/eventhub/internal/repository"
	"github.com/eleven-am/eventhub/internal/service"
	"github.com/eleven-am/eventhub/internal/store"
	"github.com/eleven-am/eventhub/internal/transport/http/handlers"
	"github.com/eleven-am/eventhub/internal/transport/http/middleware"
	"github.com/eleven-am/eventhub/internal/transport/http/router"
)

func newServeCommand() *cobra.Command {
	var migrateOnStart bool

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Open the database pool, wire repositories and services, and serve the
JSON API until SIGINT or SIGTERM, then drain in-flight requests.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, migrateOnStart)
		},
	}
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Apply pending migrations before serving")

	return serveCmd
}

func runServe(ctx context.Context, cfg *config.Config, migrateOnStart bool) error {
	log := logger.CLI()

	dbCfg := store.NewDBConfig(cfg.Database.URL)
	dbCfg.MaxOpenConns = cfg.Database.MaxOpenConns
	dbCfg.MaxIdleConns = cfg.Database.MaxIdleConns
	dbCfg.ConnMaxLifetime = cfg.Database.ConnMaxLifetime

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	db, err := dbCfg.Connect(connectCtx)
	cancel()
	if err != nil {
		return err
	}
	defer db.Close()

	if migrateOnStart {
		m, err := store.NewMigrator(db.DB)
		if err != nil {
			return err
		}
		if _, err := m.Up(ctx); err != nil {
			return err
		}
	}

	m := metrics.New()
	handler, err := buildHandler(cfg, db, m)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", cfg.HTTP.ShutdownTimeout).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// buildHandler wires storage, services and transport over an open pool
func buildHandler(cfg *config.Config, db *sqlx.DB, m *metrics.Metrics) (http.Handler, error) {
	st := orm.NewStore(db,
		orm.WithMiddleware(
			orm.LoggingMiddleware(logger.ORM()),
			orm.MetricsMiddleware(m),
		),
		orm.WithDefaults(orm.Defaults{
			PageSize: orm.PageSizeOf(uint64(cfg.Query.DefaultPageSize)),
			Ordering: cfg.Query.DefaultOrdering,
		}),
	)

	repos := repository.New(st,
		repository.WithMissingCategoryPolicy(cfg.Categories.MissingPolicy),
		repository.WithLogger(logger.DB()),
	)

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	signer := auth.NewJWTSigner(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	google := auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)

	maxPage := cfg.Query.MaxPageSize

	return router.New(router.Deps{
		Health:         handlers.NewHealthHandler(db),
		Auth:           handlers.NewAuthHandler(service.NewAuthService(repos.Users, hasher, signer, google), m),
		Events:         handlers.NewEventsHandler(service.NewEventService(repos.Events), maxPage),
		Categories:     handlers.NewCategoriesHandler(service.NewCategoryService(repos.Categories), maxPage),
		Users:          handlers.NewUsersHandler(service.NewUserService(repos.Users, hasher), maxPage),
		AuthMW:         middleware.NewAuth(signer),
		Metrics:        m.Middleware,
		MetricsHandler: m.Handler(),
		RateLimit: router.RateLimit{
			Enabled:  cfg.HTTP.RateLimit.Enabled,
			Requests: cfg.HTTP.RateLimit.Requests,
			Window:   cfg.HTTP.RateLimit.Window,
		},
	})
}
