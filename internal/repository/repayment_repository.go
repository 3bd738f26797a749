package repository

import (
	"context"
	"time"

	"github.com/segyhp/loandesk/internal/domain"

	"github.com/jmoiron/sqlx"
)

const repaymentColumns = `id, loan_id, payment_date, amount, penalty, discount, kind,
	book_number, voucher_number, remarks, created_at`

const insertRepaymentQuery = `
	INSERT INTO repayments (` + repaymentColumns + `)
	VALUES (:id, :loan_id, :payment_date, :amount, :penalty, :discount, :kind,
		:book_number, :voucher_number, :remarks, :created_at)
`

type repaymentRepository struct {
	db *sqlx.DB
}

func NewRepaymentRepository(db *sqlx.DB) RepaymentRepository {
	return &repaymentRepository{db: db}
}

func (r *repaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// touching the loan row takes its lock, so a concurrent close cannot slip in
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE loans SET updated_at = ? WHERE id = ? AND status = ?
	`), repayment.CreatedAt, repayment.LoanID, domain.LoanStatusActive)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLoanNotActive
	}

	if _, err = tx.NamedExecContext(ctx, insertRepaymentQuery, repayment); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repaymentRepository) GetByLoanID(ctx context.Context, loanID string) ([]domain.Repayment, error) {
	return r.selectRepayments(ctx, `
		SELECT `+repaymentColumns+`
		FROM repayments
		WHERE loan_id = ?
		ORDER BY created_at, id
	`, loanID)
}

func (r *repaymentRepository) ListAll(ctx context.Context) ([]domain.Repayment, error) {
	return r.selectRepayments(ctx, `
		SELECT `+repaymentColumns+`
		FROM repayments
		ORDER BY created_at, id
	`)
}

func (r *repaymentRepository) ListBetween(ctx context.Context, start, end time.Time) ([]domain.Repayment, error) {
	return r.selectRepayments(ctx, `
		SELECT `+repaymentColumns+`
		FROM repayments
		WHERE payment_date >= ? AND payment_date <= ?
		ORDER BY payment_date, created_at, id
	`, start, end)
}

func (r *repaymentRepository) selectRepayments(ctx context.Context, query string, args ...interface{}) ([]domain.Repayment, error) {
	var repayments []domain.Repayment
	if err := r.db.SelectContext(ctx, &repayments, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return repayments, nil
}
