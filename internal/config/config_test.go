package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "Monthly", cfg.Business.DefaultFrequency)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 10*time.Minute, cfg.Business.LoanCacheTTL)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
	assert.Equal(t, 3, cfg.Scheduler.ReminderWindowDays)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_DRIVER", "sqlite3")
	t.Setenv("DATABASE_URL", "file:loandesk.db")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("OFFICE_ID", "office")
	t.Setenv("OFFICE_CODE", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "file:loandesk.db", cfg.Database.DSN())
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "office", cfg.Auth.OfficeID)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		errMsg string
	}{
		{"unknown driver", "DATABASE_DRIVER", "mysql", "DATABASE_DRIVER"},
		{"bad frequency", "DEFAULT_FREQUENCY", "Weekly", "DEFAULT_FREQUENCY"},
		{"bad cron", "SCHEDULER_OVERDUE_SCAN", "every day", "SCHEDULER_OVERDUE_SCAN"},
		{"bad reminder cron", "SCHEDULER_DUE_REMINDER", "0 9 * *", "SCHEDULER_DUE_REMINDER"},
		{"negative reminder window", "SCHEDULER_REMINDER_WINDOW_DAYS", "-1", "SCHEDULER_REMINDER_WINDOW_DAYS"},
		{"bad timezone", "SCHEDULER_TIMEZONE", "Mars/Olympus", "SCHEDULER_TIMEZONE"},
		{"office id without code", "OFFICE_ID", "office", "OFFICE_CODE"},
		{"production without office login", "ENV", "production", "required in production"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		Name:     "loandesk",
		User:     "desk",
		Password: "p@ss",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://desk:p%40ss@db:5432/loandesk?sslmode=disable", db.DSN())
}
