package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/segyhp/loandesk/internal/config"
	"github.com/segyhp/loandesk/internal/service"
	"github.com/segyhp/loandesk/pkg/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 2 * time.Minute

// Jobs holds the periodic desk tasks
type Jobs struct {
	reports *service.ReportService
	loans   *service.LoanService
	config  *config.Config
	logger  *zap.Logger
}

func NewJobs(reports *service.ReportService, loans *service.LoanService, cfg *config.Config, logger *zap.Logger) *Jobs {
	return &Jobs{
		reports: reports,
		loans:   loans,
		config:  cfg,
		logger:  logger,
	}
}

// Register schedules every job on c
func (j *Jobs) Register(c *cron.Cron) error {
	if _, err := c.AddFunc(j.config.Scheduler.OverdueScan, j.run("overdue_scan", j.OverdueScan)); err != nil {
		return fmt.Errorf("schedule overdue scan: %w", err)
	}
	if _, err := c.AddFunc(j.config.Scheduler.DueReminder, j.run("due_reminder", j.DueReminders)); err != nil {
		return fmt.Errorf("schedule due reminder: %w", err)
	}

	j.logger.Info("cron jobs scheduled",
		zap.String("overdue_scan", j.config.Scheduler.OverdueScan),
		zap.String("due_reminder", j.config.Scheduler.DueReminder),
		zap.String("timezone", j.config.Scheduler.Timezone),
	)
	return nil
}

func (j *Jobs) run(name string, job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			j.logger.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		j.logger.Info("job finished", zap.String("job", name), zap.Duration("duration", time.Since(start)))
	}
}

// OverdueScan logs every active loan past its due date and refreshes the cached
// dashboard figures.
func (j *Jobs) OverdueScan(ctx context.Context) error {
	today := j.loans.Today()

	overdue, err := j.reports.OverdueLoans(ctx, today)
	if err != nil {
		return err
	}
	for _, o := range overdue {
		j.logger.Warn("loan overdue",
			zap.String("loan_id", o.LoanID),
			zap.String("applicant", o.ApplicantName),
			zap.String("next_due", o.NextDue.String()),
			zap.Int("days_overdue", o.DaysOverdue),
			zap.String("arrears", utils.FormatCurrency(o.Arrears)),
			zap.String("suggested_penalty", utils.FormatCurrency(o.SuggestedPenalty)),
		)
	}
	j.logger.Info("overdue scan complete", zap.Int("overdue", len(overdue)), zap.String("as_of", utils.FormatDate(today)))

	if _, err := j.reports.RefreshStats(ctx, today); err != nil {
		j.logger.Warn("stats refresh failed", zap.Error(err))
	}
	return nil
}

// DueReminders logs loans whose next installment falls within the reminder window
func (j *Jobs) DueReminders(ctx context.Context) error {
	today := j.loans.Today()

	due, err := j.reports.UpcomingDues(ctx, today, j.config.Scheduler.ReminderWindowDays)
	if err != nil {
		return err
	}
	for _, d := range due {
		j.logger.Info("installment due soon",
			zap.String("loan_id", d.LoanID),
			zap.String("applicant", d.ApplicantName),
			zap.String("mobile", d.Mobile),
			zap.String("next_due", d.NextDue.String()),
			zap.Int("days_left", d.DaysLeft),
			zap.String("installment", utils.FormatCurrency(d.InstallmentAmount)),
		)
	}
	return nil
}
