// Package export renders reports in the spreadsheet layout the office files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/segyhp/loandesk/internal/domain"
	"github.com/segyhp/loandesk/pkg/utils"
)

var loanStatusHeader = []string{
	"Serial Number",
	"LAN Number",
	"LAN Issue Date",
	"Name",
	"Guarantor Name",
	"Product/Vehicle",
	"Vehicle Number",
	"Loan Amount",
	"Pending From",
	"Installment Amount",
	"Pending Amount (Balance)",
	"How Many Months Paid",
	"Pending Days",
	"Active Status",
}

const (
	sectionActive = "Active Loans"
	sectionClosed = "Closed Loans"
)

// LoanStatusFileName names the export after the filter and report date
func LoanStatusFileName(filter string, asOf time.Time) string {
	return fmt.Sprintf("Loan_Status_Report_%s_%s.csv", filter, asOf.Format(utils.DateLayout))
}

// WriteLoanStatusCSV writes the report rows. For the ALL filter active and closed
// loans go in separate titled sections, each numbered from 1.
func WriteLoanStatusCSV(w io.Writer, report *domain.LoanStatusReport) error {
	cw := csv.NewWriter(w)

	if report.Filter == domain.StatusFilterAll {
		var active, closed []domain.LoanStatusRow
		for _, row := range report.Rows {
			if row.Active {
				active = append(active, row)
			} else {
				closed = append(closed, row)
			}
		}
		if err := writeSection(cw, sectionActive, active); err != nil {
			return err
		}
		if err := cw.Write(nil); err != nil {
			return err
		}
		if err := writeSection(cw, sectionClosed, closed); err != nil {
			return err
		}
	} else if err := writeRows(cw, report.Rows); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func writeSection(cw *csv.Writer, title string, rows []domain.LoanStatusRow) error {
	if err := cw.Write([]string{title}); err != nil {
		return err
	}
	return writeRows(cw, rows)
}

func writeRows(cw *csv.Writer, rows []domain.LoanStatusRow) error {
	if err := cw.Write(loanStatusHeader); err != nil {
		return err
	}
	for i, row := range rows {
		if err := cw.Write(loanStatusRecord(i+1, row)); err != nil {
			return err
		}
	}
	return nil
}

func loanStatusRecord(serial int, row domain.LoanStatusRow) []string {
	status := "Closed"
	if row.Active {
		status = "Active"
	}

	return []string{
		strconv.Itoa(serial),
		cell(row.ID),
		utils.FormatDate(row.FileDate),
		cell(row.ApplicantName),
		cell(row.GuarantorName),
		cell(row.VehicleProduct + " - " + row.Model),
		cell(row.VehicleNumber),
		row.LoanAmount.String(),
		utils.FormatDate(row.PendingFrom),
		row.InstallmentAmount.String(),
		row.Balance.StringFixed(2),
		fmt.Sprintf("%d/%d", row.MonthsPaid, row.NoOfInstallments),
		strconv.Itoa(row.PendingDays),
		status,
	}
}

// cell keeps free text from being read as a formula when the file is opened in a
// spreadsheet.
func cell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
