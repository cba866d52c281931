package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/veridian-id/veridian/internal/accounts"
	"github.com/veridian-id/veridian/internal/app"
	"github.com/veridian-id/veridian/internal/audit"
	"github.com/veridian-id/veridian/internal/auth"
	"github.com/veridian-id/veridian/internal/authz"
	"github.com/veridian-id/veridian/internal/observability"
	"github.com/veridian-id/veridian/internal/platform/cache"
	"github.com/veridian-id/veridian/internal/platform/db"
	"github.com/veridian-id/veridian/internal/roles"
	"github.com/veridian-id/veridian/internal/shared"
	"github.com/veridian-id/veridian/internal/token"
	"github.com/veridian-id/veridian/internal/users"
	"github.com/veridian-id/veridian/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	signer, err := token.NewSigner(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		logger.Error("init signer", slog.Any("error", err))
		os.Exit(1)
	}
	denylist := token.NewDenylist(redisClient)
	verifier := token.NewVerifier(signer, denylist, cfg.RevocationFailOpen, logger)
	tokens := token.NewManager(token.NewFactory(signer), verifier, denylist,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, metrics, logger)

	auditLogger := shared.NewAuditLogger(pool)

	accountsSvc := accounts.NewService(accounts.NewRepository(pool))
	authzSvc := authz.NewService(authz.NewRepository(pool))
	emailVerifier := accounts.NewEmailVerifier(redisClient, cfg.VerificationCodeTTL)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()
	mailer := jobs.NewAsynqMailer(asynqClient, cfg.AppBaseURL)

	authSvc := auth.NewService(accountsSvc, authzSvc, tokens, emailVerifier, mailer, auditLogger, logger)
	authMW := auth.Middleware{Tokens: tokens, Accounts: accountsSvc, Authz: authzSvc, Logger: logger}
	authzMW := authz.Middleware{Logger: logger}

	authHandler := auth.NewHandler(logger, authSvc, authMW)
	usersHandler := users.NewHandler(logger, users.NewService(accounts.NewRepository(pool), auditLogger), authzMW)
	rolesHandler := roles.NewHandler(logger, roles.NewService(roles.NewRepository(pool), auditLogger), authzMW)
	auditHandler := audit.NewHandler(logger, audit.NewService(audit.NewRepository(pool)), authzMW)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    authHandler,
		UsersHandler:   usersHandler,
		RolesHandler:   rolesHandler,
		AuditHandler:   auditHandler,
		AuthMiddleware: authMW,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
