package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/loandesk/internal/auth"
	"github.com/segyhp/loandesk/internal/cache"
	"github.com/segyhp/loandesk/internal/config"
	"github.com/segyhp/loandesk/internal/handler"
	"github.com/segyhp/loandesk/internal/logger"
	"github.com/segyhp/loandesk/internal/repository"
	"github.com/segyhp/loandesk/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	ctx := context.Background()

	db, err := repository.Connect(ctx, cfg.Database)
	if err != nil {
		zl.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	repaymentRepo := repository.NewRepaymentRepository(db)
	agentRepo := repository.NewAgentRepository(db)

	redisCache := cache.NewRedisCache(redisClient, cfg.Business.LoanCacheTTL, cfg.Business.StatsCacheTTL)
	sessions := auth.NewRedisSessionStore(redisClient, cfg.Auth.SessionTTL)

	loanService := service.NewLoanService(loanRepo, repaymentRepo, redisCache, redisCache, cfg, zl)
	reportService := service.NewReportService(loanService, redisCache, zl)
	authService := service.NewAuthService(agentRepo, sessions, cfg, zl)

	validate := handler.NewValidator()
	router := handler.NewRouter(handler.Handlers{
		Auth:     handler.NewAuthHandler(authService, validate, zl),
		Loans:    handler.NewLoanHandler(loanService, validate, zl),
		Reports:  handler.NewReportHandler(reportService, loanService, zl),
		Health:   handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout, zl),
		Sessions: sessions,
		Logger:   zl,
	})

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zl.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
		return
	}

	zl.Info("server exited")
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
