package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/anon-forum/config"
	"github.com/d60-Lab/anon-forum/internal/api/handler"
	"github.com/d60-Lab/anon-forum/internal/api/router"
	"github.com/d60-Lab/anon-forum/internal/repository"
	"github.com/d60-Lab/anon-forum/internal/service"
	"github.com/d60-Lab/anon-forum/pkg/database"
	"github.com/d60-Lab/anon-forum/pkg/logger"
	"github.com/d60-Lab/anon-forum/pkg/session"
	"github.com/d60-Lab/anon-forum/pkg/tracing"
)

// @title Anon Forum API
// @version 1.0
// @description 匿名论坛的 JSON 只读接口
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			return err
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	var revoker session.Revoker = session.NopRevoker{}
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		revoker = session.NewRedisRevoker(client)
	}

	userRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(userRepo, cfg.Password.BcryptCost)
	sessionSvc := service.NewSessionService(session.NewManager(cfg.Session.Secret, cfg.Session.TTL), revoker, userRepo)
	forumSvc := service.NewForumService(repository.NewPostRepository(db), repository.NewReplyRepository(db))

	h := handler.NewHandler(authSvc, sessionSvc, forumSvc, sqlDB, handler.CookieOptions{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.Secure,
	})
	engine, err := router.Setup(cfg, h, sessionSvc)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
