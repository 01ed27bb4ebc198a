// Package main runs the ledger API and its web page.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/memstore"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/cachepkg"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)
	ctx := logger.WithContext(context.Background())

	db, repos := setupStorage(logger, config)
	if db != nil {
		defer closeDB(logger, db)
	}

	cache := setupCache(ctx, logger, config)
	if rc, ok := cache.(*cachepkg.RedisCache); ok {
		defer func() {
			if err := rc.Close(); err != nil {
				logger.Error().Err(err).Msg("cannot close redis client")
			}
		}()
	}

	server, err := httpserver.New(db, repos, cache, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	srv := &http.Server{
		Addr:    config.ServerAddress,
		Handler: server,
	}

	go func() {
		logger.Info().Str("addr", config.ServerAddress).Str("driver", config.DBDriver).Msg("LEDGER API SERVER HAS STARTED")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("cannot start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
}

func setupStorage(logger zerolog.Logger, config configpkg.Config) (*sql.DB, httpserver.Repos) {
	switch config.DBDriver {
	case configpkg.DriverMemory:
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
		return nil, httpserver.NewMemRepos(memstore.New())
	case configpkg.DriverPostgres:
		db, err := dbpkg.SetupPool(config.DBDriver, config.DBSource, dbpkg.PoolConfig{
			MaxOpenConns:    config.DBMaxOpenConns,
			MaxIdleConns:    config.DBMaxIdleConns,
			ConnMaxLifetime: config.DBConnMaxLifetime,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to database")
		}

		return db, httpserver.NewPGSRepos(db)
	default:
		logger.Fatal().Str("driver", config.DBDriver).Msg("unsupported DB_DRIVER")
		return nil, httpserver.Repos{}
	}
}

func setupCache(ctx context.Context, logger zerolog.Logger, config configpkg.Config) cachepkg.Cache {
	if config.RedisAddr == "" {
		return cachepkg.NopCache{}
	}

	rdb, err := cachepkg.Connect(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", config.RedisAddr).Msg("cannot connect to redis")
	}

	return cachepkg.NewRedisCache(rdb, config.CacheTTL)
}

func closeDB(logger zerolog.Logger, db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("cannot close database")
	}
}
