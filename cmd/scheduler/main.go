package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/segyhp/loandesk/internal/cache"
	"github.com/segyhp/loandesk/internal/config"
	"github.com/segyhp/loandesk/internal/logger"
	"github.com/segyhp/loandesk/internal/repository"
	"github.com/segyhp/loandesk/internal/scheduler"
	"github.com/segyhp/loandesk/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
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

	zl.Info("starting loan desk scheduler")

	db, err := repository.Connect(context.Background(), cfg.Database)
	if err != nil {
		zl.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Only the stats cache is refreshed here; loans are always read fresh.
	redisCache := cache.NewRedisCache(redisClient, cfg.Business.LoanCacheTTL, cfg.Business.StatsCacheTTL)
	loanService := service.NewLoanService(
		repository.NewLoanRepository(db),
		repository.NewRepaymentRepository(db),
		nil,
		redisCache,
		cfg,
		zl,
	)
	reportService := service.NewReportService(loanService, redisCache, zl)

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.Location()),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	jobs := scheduler.NewJobs(reportService, loanService, cfg, zl)
	if err := jobs.Register(c); err != nil {
		zl.Fatal("failed to schedule jobs", zap.Error(err))
	}

	c.Start()
	zl.Info("scheduler started", zap.Int("jobs", len(c.Entries())))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down scheduler")
	<-c.Stop().Done()
	zl.Info("scheduler stopped")
}
