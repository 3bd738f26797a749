package repository

import (
	"context"
	"strings"
	"time"

	"github.com/segyhp/loandesk/internal/domain"

	"github.com/jmoiron/sqlx"
)

const loanColumns = `id, applicant_name, address, city, town_village, mobile, aadhar,
	guarantor_name, guarantor_address, guarantor_city, guarantor_town_village, guarantor_mobile, guarantor_aadhar,
	vehicle_product, model, maker_company, engine_serial_number, vehicle_number, vehicle_purchase_date,
	frequency, file_date, emi_date, loan_amount, no_of_installments, interest_rate,
	interest_amount, total_amount, installment_amount, status, closed_at, created_at, updated_at`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES (:id, :applicant_name, :address, :city, :town_village, :mobile, :aadhar,
			:guarantor_name, :guarantor_address, :guarantor_city, :guarantor_town_village, :guarantor_mobile, :guarantor_aadhar,
			:vehicle_product, :model, :maker_company, :engine_serial_number, :vehicle_number, :vehicle_purchase_date,
			:frequency, :file_date, :emi_date, :loan_amount, :no_of_installments, :interest_rate,
			:interest_amount, :total_amount, :installment_amount, :status, :closed_at, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, loan)
	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	query := r.db.Rebind(`SELECT ` + loanColumns + ` FROM loans WHERE id = ?`)

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	return r.selectLoans(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY created_at DESC, id`)
}

func (r *loanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	return r.selectLoans(ctx, `SELECT `+loanColumns+` FROM loans WHERE status = ? ORDER BY created_at DESC, id`,
		domain.LoanStatusActive)
}

func (r *loanRepository) Recent(ctx context.Context, limit int) ([]*domain.Loan, error) {
	return r.selectLoans(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY created_at DESC, id LIMIT ?`, limit)
}

func (r *loanRepository) Search(ctx context.Context, query string) ([]*domain.Loan, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"

	return r.selectLoans(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE LOWER(id) LIKE ? ESCAPE '\'
			OR LOWER(applicant_name) LIKE ? ESCAPE '\'
			OR LOWER(vehicle_number) LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, id
	`, pattern, pattern, pattern)
}

func (r *loanRepository) ListFiledBetween(ctx context.Context, start, end time.Time) ([]*domain.Loan, error) {
	return r.selectLoans(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE file_date >= ? AND file_date <= ?
		ORDER BY file_date, created_at
	`, start, end)
}

func (r *loanRepository) Close(ctx context.Context, loanID string, settlement *domain.Repayment, closedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE loans
		SET status = ?, closed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`), domain.LoanStatusClosed, closedAt, closedAt, loanID, domain.LoanStatusActive)
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

	if _, err = tx.NamedExecContext(ctx, insertRepaymentQuery, settlement); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *loanRepository) selectLoans(ctx context.Context, query string, args ...interface{}) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return loans, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
