package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	storegrpc "github.com/fjod/go_cart/storefront/internal/grpc"
	storehttp "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/fjod/go_cart/storefront/internal/poller"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "shopping cart and checkout service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP and gRPC servers",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply catalog and order schema migrations and exit",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("storefront failed")
	}
}

// orderStore is what the order backends provide: the repository for the order service and
// the outbox for the publisher.
type orderStore interface {
	order.Repository
	order.OutboxStore
}

// cleanups run in reverse order of registration.
type cleanups []func()

func (c *cleanups) add(f func()) {
	*c = append(*c, f)
}

func (c cleanups) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	l := logger.New(cfg.LogLevel, cfg.LogFormat)
	l.Info().Msg("storefront starting...")

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers cleanups
	defer func() { closers.run() }()

	products, err := openCatalog(cfg, l, &closers)
	if err != nil {
		return err
	}
	snapshots, err := openSnapshotStore(ctx, cfg, l, &closers)
	if err != nil {
		return err
	}
	repo, err := openOrderStore(cfg, &closers)
	if err != nil {
		return err
	}

	orders := order.NewService(repo, l)
	sessions := session.NewRegistry(products, snapshots, cfg.CartExpiry, orders, cfg.SessionIdleTTL, l)
	closers.add(sessions.Close)

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: storehttp.NewRouter(storehttp.RouterConfig{
			Catalog:        products,
			Sessions:       sessions,
			Orders:         orders,
			Log:            l,
			RequestTimeout: cfg.RequestTimeout,
			Limiter:        limiter,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	grpcServer := storegrpc.NewServer(storegrpc.NewCartServer(sessions), l)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Info().Str("port", cfg.HTTPPort).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		l.Info().Str("port", cfg.GRPCPort).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server error: %w", err)
		}
		return nil
	})

	if cfg.KafkaEnabled() {
		publisher := order.NewOutboxPublisher(repo, order.NewKafkaWriter(cfg.KafkaBrokers...), l)
		closers.add(func() {
			if err := publisher.Close(); err != nil {
				l.Error().Err(err).Msg("failed to close outbox writer")
			}
		})
		g.Go(func() error {
			publisher.Run(gctx)
			return nil
		})

		consumer := poller.NewPoller(sessions, l, cfg.KafkaGroupID, cfg.KafkaBrokers...)
		closers.add(consumer.Close)
		g.Go(func() error {
			consumer.Run(gctx)
			return nil
		})
		l.Info().Strs("brokers", cfg.KafkaBrokers).Msg("order events enabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		l.Info().Msg("shutting down storefront...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error().Err(err).Msg("server forced to shutdown")
		}

		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			l.Warn().Msg("gRPC server didn't stop in time")
			grpcServer.Stop()
		}
		return nil
	})

	err = g.Wait()
	l.Info().Msg("storefront stopped")
	return err
}

func migrate(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	l := logger.New(cfg.LogLevel, cfg.LogFormat)

	var closers cleanups
	defer func() { closers.run() }()

	migrated := false
	if cfg.CatalogBackend == config.BackendSQLite {
		if _, err := openCatalog(cfg, l, &closers); err != nil {
			return err
		}
		migrated = true
	}
	if cfg.OrderBackend == config.BackendPostgres {
		if _, err := openOrderStore(cfg, &closers); err != nil {
			return err
		}
		migrated = true
	}

	if !migrated {
		l.Info().Msg("no database backends configured, nothing to migrate")
		return nil
	}
	l.Info().Msg("database migrations completed")
	return nil
}

// openCatalog opens the configured catalog and runs its migrations. The catalog is wrapped in
// a circuit breaker.
func openCatalog(cfg *config.Config, l zerolog.Logger, closers *cleanups) (catalog.Catalog, error) {
	var products catalog.Catalog

	switch cfg.CatalogBackend {
	case config.BackendSQLite:
		db, err := catalog.NewSQLiteCatalog(cfg.CatalogDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		closers.add(func() { _ = db.Close() })

		if err := db.RunMigrations(); err != nil {
			return nil, fmt.Errorf("failed to run catalog migrations: %w", err)
		}
		l.Info().Str("path", cfg.CatalogDBPath).Msg("catalog database ready")
		products = db
	default:
		products = catalog.NewDemoCatalog()
	}

	return catalog.NewBreakerCatalog(products, catalog.BreakerSettings{}, l), nil
}

func openSnapshotStore(ctx context.Context, cfg *config.Config, l zerolog.Logger, closers *cleanups) (storage.SnapshotStore, error) {
	connectRedis := func() (*storage.RedisStorage, error) {
		client, err := storage.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		closers.add(func() { _ = client.Close() })
		l.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")
		return storage.NewRedisStorage(client, cfg.CartExpiry), nil
	}

	connectMongo := func() (*storage.MongoStorage, error) {
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		closers.add(func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Client().Disconnect(disconnectCtx)
		})

		store := storage.NewMongoStorage(db, cfg.CartExpiry)
		if err := store.CreateIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		l.Info().Str("uri", cfg.MongoURI).Msg("connected to MongoDB")
		return store, nil
	}

	switch cfg.StorageBackend {
	case config.BackendRedis:
		return connectRedis()
	case config.BackendMongo:
		return connectMongo()
	case config.BackendTiered:
		cache, err := connectRedis()
		if err != nil {
			return nil, err
		}
		primary, err := connectMongo()
		if err != nil {
			return nil, err
		}
		tiered := storage.NewTieredStorage(cache, primary, l)
		closers.add(tiered.Close)
		return tiered, nil
	default:
		return storage.NewMemoryStorage(), nil
	}
}

func openOrderStore(cfg *config.Config, closers *cleanups) (orderStore, error) {
	if cfg.OrderBackend != config.BackendPostgres {
		if !cfg.KafkaEnabled() {
			return order.NewMemoryRepository(order.WithoutOutbox()), nil
		}
		return order.NewMemoryRepository(), nil
	}

	repo, err := order.NewPostgresRepository(&order.Credentials{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closers.add(func() { _ = repo.Close() })

	if err := repo.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return repo, nil
}
