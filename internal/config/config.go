package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// CronParser reads the six-field (seconds first) specs the scheduler runs on
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
	Auth      AuthConfig      `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"DATABASE_DRIVER"`
	URL             string        `mapstructure:"DATABASE_URL"`
	Host            string        `mapstructure:"DATABASE_HOST"`
	Port            string        `mapstructure:"DATABASE_PORT"`
	Name            string        `mapstructure:"DATABASE_NAME"`
	User            string        `mapstructure:"DATABASE_USER"`
	Password        string        `mapstructure:"DATABASE_PASSWORD"`
	SSLMode         string        `mapstructure:"DATABASE_SSLMODE"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	OverdueScan        string `mapstructure:"SCHEDULER_OVERDUE_SCAN"`
	DueReminder        string `mapstructure:"SCHEDULER_DUE_REMINDER"`
	ReminderWindowDays int    `mapstructure:"SCHEDULER_REMINDER_WINDOW_DAYS"`
	Timezone           string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	DefaultFrequency string        `mapstructure:"DEFAULT_FREQUENCY"`
	RecentLoansLimit int           `mapstructure:"RECENT_LOANS_LIMIT"`
	LoanCacheTTL     time.Duration `mapstructure:"LOAN_CACHE_TTL"`
	StatsCacheTTL    time.Duration `mapstructure:"STATS_CACHE_TTL"`
}

type AuthConfig struct {
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`
	OfficeID   string        `mapstructure:"OFFICE_ID"`
	OfficeCode string        `mapstructure:"OFFICE_CODE"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "loandesk")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DEFAULT_FREQUENCY", "Monthly")
	v.SetDefault("RECENT_LOANS_LIMIT", 10)
	v.SetDefault("LOAN_CACHE_TTL", "10m")
	v.SetDefault("STATS_CACHE_TTL", "1m")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("OFFICE_ID", "")
	v.SetDefault("OFFICE_CODE", "")
	v.SetDefault("SCHEDULER_OVERDUE_SCAN", "0 30 6 * * *")
	v.SetDefault("SCHEDULER_DUE_REMINDER", "0 0 9 * * *")
	v.SetDefault("SCHEDULER_REMINDER_WINDOW_DAYS", 3)
	v.SetDefault("SCHEDULER_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	v.AutomaticEnv()

	// Try to read from .env file (optional)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" && c.Database.Host == "" {
			return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
		}
	case "sqlite3":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for sqlite3")
		}
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite3, got %q", c.Database.Driver)
	}

	switch c.Business.DefaultFrequency {
	case "Monthly", "Quarterly", "Half-yearly", "Yearly":
	default:
		return fmt.Errorf("DEFAULT_FREQUENCY %q is not a known frequency", c.Business.DefaultFrequency)
	}

	if c.Business.RecentLoansLimit <= 0 {
		return fmt.Errorf("RECENT_LOANS_LIMIT must be greater than 0")
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be a positive duration")
	}

	if (c.Auth.OfficeID == "") != (c.Auth.OfficeCode == "") {
		return fmt.Errorf("OFFICE_ID and OFFICE_CODE must be set together")
	}

	if c.IsProduction() && c.Auth.OfficeID == "" {
		return fmt.Errorf("OFFICE_ID and OFFICE_CODE are required in production")
	}

	if _, err := CronParser.Parse(c.Scheduler.OverdueScan); err != nil {
		return fmt.Errorf("SCHEDULER_OVERDUE_SCAN must be a valid cron spec: %w", err)
	}

	if _, err := CronParser.Parse(c.Scheduler.DueReminder); err != nil {
		return fmt.Errorf("SCHEDULER_DUE_REMINDER must be a valid cron spec: %w", err)
	}

	if c.Scheduler.ReminderWindowDays < 0 {
		return fmt.Errorf("SCHEDULER_REMINDER_WINDOW_DAYS cannot be negative")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	if c.Health.Timeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a positive duration")
	}

	return nil
}

// DSN returns the connection string for the configured driver
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Location returns the business timezone used to decide what "today" is
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
