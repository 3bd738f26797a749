package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segyhp/loandesk/internal/domain"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is not cached
var ErrMiss = errors.New("cache miss")

const statsKey = "stats:dashboard"

// LoanCache keeps fully loaded loans (with repayments) keyed by LAN
type LoanCache interface {
	GetLoan(ctx context.Context, loanID string) (*domain.Loan, error)
	SetLoan(ctx context.Context, loan *domain.Loan) error
	InvalidateLoan(ctx context.Context, loanID string) error
}

// StatsCache keeps the last computed dashboard figures
type StatsCache interface {
	GetStats(ctx context.Context) (*domain.DashboardStats, error)
	SetStats(ctx context.Context, stats *domain.DashboardStats) error
	InvalidateStats(ctx context.Context) error
}

type RedisCache struct {
	client   *redis.Client
	loanTTL  time.Duration
	statsTTL time.Duration
}

func NewRedisCache(client *redis.Client, loanTTL, statsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   client,
		loanTTL:  loanTTL,
		statsTTL: statsTTL,
	}
}

func loanKey(loanID string) string {
	return fmt.Sprintf("loan:%s", loanID)
}

func (c *RedisCache) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	var loan domain.Loan
	if err := c.get(ctx, loanKey(loanID), &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (c *RedisCache) SetLoan(ctx context.Context, loan *domain.Loan) error {
	return c.set(ctx, loanKey(loan.ID), loan, c.loanTTL)
}

func (c *RedisCache) InvalidateLoan(ctx context.Context, loanID string) error {
	return c.client.Del(ctx, loanKey(loanID)).Err()
}

func (c *RedisCache) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.get(ctx, statsKey, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *RedisCache) SetStats(ctx context.Context, stats *domain.DashboardStats) error {
	return c.set(ctx, statsKey, stats, c.statsTTL)
}

func (c *RedisCache) InvalidateStats(ctx context.Context) error {
	return c.client.Del(ctx, statsKey).Err()
}

func (c *RedisCache) get(ctx context.Context, key string, dst interface{}) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func (c *RedisCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}
