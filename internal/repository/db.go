package repository

import (
	"context"
	"fmt"

	"github.com/segyhp/loandesk/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS loans (
		id                     TEXT PRIMARY KEY,
		applicant_name         TEXT NOT NULL,
		address                TEXT NOT NULL DEFAULT '',
		city                   TEXT NOT NULL DEFAULT '',
		town_village           TEXT NOT NULL DEFAULT '',
		mobile                 TEXT NOT NULL DEFAULT '',
		aadhar                 TEXT NOT NULL DEFAULT '',
		guarantor_name         TEXT NOT NULL DEFAULT '',
		guarantor_address      TEXT NOT NULL DEFAULT '',
		guarantor_city         TEXT NOT NULL DEFAULT '',
		guarantor_town_village TEXT NOT NULL DEFAULT '',
		guarantor_mobile       TEXT NOT NULL DEFAULT '',
		guarantor_aadhar       TEXT NOT NULL DEFAULT '',
		vehicle_product        TEXT NOT NULL DEFAULT '',
		model                  TEXT NOT NULL DEFAULT '',
		maker_company          TEXT NOT NULL DEFAULT '',
		engine_serial_number   TEXT NOT NULL DEFAULT '',
		vehicle_number         TEXT NOT NULL DEFAULT '',
		vehicle_purchase_date  DATE,
		frequency              TEXT NOT NULL,
		file_date              DATE NOT NULL,
		emi_date               DATE,
		loan_amount            NUMERIC(14,2) NOT NULL,
		no_of_installments     INTEGER NOT NULL,
		interest_rate          NUMERIC(7,3) NOT NULL,
		interest_amount        NUMERIC(14,2) NOT NULL,
		total_amount           NUMERIC(14,2) NOT NULL,
		installment_amount     NUMERIC(14,2) NOT NULL,
		status                 TEXT NOT NULL,
		closed_at              TIMESTAMP,
		created_at             TIMESTAMP NOT NULL,
		updated_at             TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_status ON loans (status)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_file_date ON loans (file_date)`,
	`CREATE TABLE IF NOT EXISTS repayments (
		id             TEXT PRIMARY KEY,
		loan_id        TEXT NOT NULL REFERENCES loans (id),
		payment_date   DATE NOT NULL,
		amount         NUMERIC(14,2) NOT NULL,
		penalty        NUMERIC(14,2) NOT NULL DEFAULT 0,
		discount       NUMERIC(14,2) NOT NULL DEFAULT 0,
		kind           TEXT NOT NULL,
		book_number    TEXT NOT NULL DEFAULT '',
		voucher_number TEXT NOT NULL DEFAULT '',
		remarks        TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_repayments_loan ON repayments (loan_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_repayments_payment_date ON repayments (payment_date)`,
	`CREATE TABLE IF NOT EXISTS agents (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		code_hash  TEXT NOT NULL,
		role       TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
}

// Connect opens the configured database, applies the pool settings and makes sure
// the schema exists.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if cfg.Driver == "sqlite3" {
		// a single writer keeps sqlite free of SQLITE_BUSY and in-memory databases shared
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables and indexes if they do not exist yet
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
