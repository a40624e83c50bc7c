package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/fitness/internal/api"
	"example.com/fitness/internal/auth"
	"example.com/fitness/internal/config"
	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/identity"
	"example.com/fitness/internal/logging"
	"example.com/fitness/internal/persistence/memory"
	"example.com/fitness/internal/persistence/postgres"
	"example.com/fitness/internal/persistence/sqlite"
	httptransport "example.com/fitness/internal/transport/http"
)

type store interface {
	domain.ActivityStore
	identity.CredentialStore
}

func main() {
	if err := config.LoadDotEnv(".env", "config.env"); err != nil {
		fmt.Fprintf(os.Stderr, "load env file: %v\n", err)
	}
	cfg := config.Load()
	logger := logging.New("fitness-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closer, err := openStore(ctx, cfg)
	if err != nil {
		logger.WithError(err).WithField("driver", cfg.StoreDriver).Fatal("failed to open store")
	}
	defer closer.Close()

	authCfg := auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience}
	handler := api.NewHandler(
		domain.NewService(st),
		identity.NewService(st, auth.NewIssuer(authCfg, cfg.TokenTTL)),
		logger,
	)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	authMiddleware := auth.NewMiddleware(authCfg, auth.PublicPaths)
	root := api.RequestLogger(logger, api.CORS(cfg.CORSAllowedOrigin, authMiddleware.Wrap(mux)))

	logger.WithField("driver", cfg.StoreDriver).Info("fitness api starting")
	if err := httptransport.Run(ctx, httptransport.DefaultServerConfig(cfg.HTTPAddress), root, logger); err != nil {
		logger.WithError(err).Fatal("server error")
	}
	logger.Info("fitness api stopped")
}

func openStore(ctx context.Context, cfg config.Config) (store, io.Closer, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.NewStore(), nopCloser{}, nil
	case config.DriverSQLite:
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return postgres.NewRepository(pool, cfg.OutboxTopic), poolCloser{pool}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type poolCloser struct {
	pool *pgxpool.Pool
}

func (p poolCloser) Close() error {
	p.pool.Close()
	return nil
}
