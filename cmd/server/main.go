// Package main runs the survey HTTP server with WebSocket count updates and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-survey/backend/config"
	"github.com/aura-survey/backend/internal/auth"
	"github.com/aura-survey/backend/internal/realtime"
	"github.com/aura-survey/backend/internal/router"
	"github.com/aura-survey/backend/pkg/database"
	"github.com/aura-survey/backend/pkg/logger"
	"github.com/aura-survey/backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("load config", zap.Error(err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("logger", zap.Error(err))
	}
	defer log.Sync()

	if !cfg.Server.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	stores, closeStore := openStores(ctx, cfg.Database, log)
	defer closeStore()

	authn := newAuthenticator(cfg, log)

	var hub *realtime.Hub
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		pubsub := realtime.NewRedisPubSub(rdb, log)
		hub = realtime.NewHub(log, pubsub, pubsub)
	} else {
		hub = realtime.NewHub(log, nil, nil)
	}
	defer hub.Close()

	engine := router.New(router.Deps{
		Logger:        log,
		Server:        cfg.Server,
		RateLimit:     cfg.RateLimit,
		AuthMode:      cfg.Auth.Mode,
		Stores:        stores,
		Authenticator: authn,
		Hub:           hub,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("auth_mode", cfg.Auth.Mode),
			zap.Bool("redis", cfg.Redis.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// openStores connects to the configured backend and runs its migrations.
func openStores(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (router.Stores, func()) {
	if cfg.Driver == config.DriverSQLite {
		db, err := database.NewSQLite(ctx, cfg.SQLitePath, log)
		if err != nil {
			log.Fatal("database", zap.Error(err))
		}
		if err := database.MigrateSQLite(ctx, db); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
		return router.SQLiteStores(db), func() { _ = db.Close() }
	}

	pool, err := database.NewPostgresPool(ctx, cfg.DSN(), log)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	return router.PostgresStores(pool), pool.Close
}

func newAuthenticator(cfg *config.Config, log *zap.Logger) auth.Authenticator {
	if cfg.Auth.Mode != config.AuthModeExternal {
		return auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	}
	pem, err := cfg.Auth.ExternalPublicKeyPEM()
	if err != nil {
		log.Fatal("external auth key", zap.Error(err))
	}
	verifier, err := auth.NewExternalVerifier(pem, cfg.Auth.ExternalIssuer)
	if err != nil {
		log.Fatal("external auth key", zap.Error(err))
	}
	return verifier
}
