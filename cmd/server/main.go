package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lalith-99/clientdesk/internal/aggregate"
	"github.com/lalith-99/clientdesk/internal/api"
	"github.com/lalith-99/clientdesk/internal/config"
	"github.com/lalith-99/clientdesk/internal/dashboard"
	"github.com/lalith-99/clientdesk/internal/db"
	"github.com/lalith-99/clientdesk/internal/guard"
	"github.com/lalith-99/clientdesk/internal/live"
	"github.com/lalith-99/clientdesk/internal/observ"
	"github.com/lalith-99/clientdesk/internal/repository"
	"github.com/lalith-99/clientdesk/internal/repository/memory"
	"github.com/lalith-99/clientdesk/internal/repository/postgres"
	"github.com/lalith-99/clientdesk/internal/service"
	"github.com/lalith-99/clientdesk/internal/validation"
	"github.com/lalith-99/clientdesk/internal/webhook"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cobra.Command{
		Use:           "clientdesk",
		Short:         "Client management backend for small service businesses",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE:  serve,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the Postgres schema if it does not exist",
			RunE:  migrate,
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert demo tags and clients into an empty database",
			RunE:  seed,
		},
	)
	return root.ExecuteContext(context.Background())
}

// backend is the store selected by config plus whatever must be closed
// with it.
type backend struct {
	store  repository.Store
	pinger api.Pinger
	close  func()
}

// setup loads config, builds the logger and opens the store. An empty
// DATABASE_URL selects the in-memory store.
func setup(ctx context.Context) (*config.Config, *zap.Logger, *backend, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create logger: %w", err)
	}

	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		return cfg, logger, &backend{store: memory.NewDB().Store(), close: func() {}}, nil
	}

	database, err := db.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return cfg, logger, &backend{
		store:  postgres.NewStore(database.Pool()),
		pinger: database,
		close:  database.Close,
	}, nil
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, be, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer be.close()

	if cfg.SeedOnStart {
		if _, err := service.NewSeeder(be.store, logger).Seed(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	locker, closeLocker, err := newLocker(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	hub := live.NewHub(logger)
	v := validation.New()
	loader := aggregate.NewLoader(be.store, logger)
	sender := webhook.NewSender(cfg.WebhookTimeoutDuration(), cfg.WebhookRPS, logger)

	router := api.NewRouter(api.Deps{
		Clients:   service.NewClientService(be.store, loader, v, hub, logger),
		Tags:      service.NewTagService(be.store.Tags, v, hub, logger),
		Marketing: service.NewMarketingService(be.store.Marketing, loader, sender, v, hub, logger),
		Dashboard: service.NewDashboardService(loader, dashboard.NewSummarizer(cfg.Location())),
		Locker:    locker,
		LockTTL:   cfg.MutationLockTTLDuration(),
		Pinger:    be.pinger,
		Live:      hub,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting clientdesk",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("timezone", cfg.Timezone),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Websocket connections are hijacked and not tracked by Shutdown.
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLocker returns the Redis locker when REDIS_URL is set and an
// in-process one otherwise.
func newLocker(cfg *config.Config, logger *zap.Logger) (guard.Locker, func(), error) {
	if cfg.RedisURL == "" {
		return guard.NewMemoryLocker(), func() {}, nil
	}
	rdb, err := guard.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("mutation guard using redis")
	return guard.NewRedisLocker(rdb), func() { _ = rdb.Close() }, nil
}

func migrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, be, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer be.close()

	if cfg.DatabaseURL == "" {
		return errors.New("migrate needs DATABASE_URL")
	}
	logger.Info("schema is up to date")
	return nil
}

func seed(cmd *cobra.Command, _ []string) error {
	_, logger, be, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer be.close()

	inserted, err := service.NewSeeder(be.store, logger).Seed(cmd.Context())
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if !inserted {
		logger.Info("clients table not empty, nothing seeded")
	}
	return nil
}
