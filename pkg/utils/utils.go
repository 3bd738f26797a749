package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// DateOnly strips the time of day, keeping the calendar date of t in UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds calendar months. Day overflow rolls into the following month
// (Jan 31 + 1 month = Mar 3 in a common year).
func AddMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

// MonthsBetween counts calendar month boundaries from start to end, ignoring the day
// of month. It is negative when end is before start.
func MonthsBetween(start, end time.Time) int {
	y1, m1, _ := start.Date()
	y2, m2, _ := end.Date()
	return (y2-y1)*12 + int(m2-m1)
}

// ParseDate parses YYYY-MM-DD or RFC3339 into a UTC date
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return DateOnly(t), nil
}

// ParseOptionalDate returns nil for an empty string
func ParseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate renders a date the way the office reads it (d/m/yyyy). Zero dates
// render as "N/A".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	y, m, d := t.Date()
	return fmt.Sprintf("%d/%d/%d", d, int(m), y)
}

// FormatCurrency rounds up to whole rupees and groups digits the Indian way
// (₹ 12,34,567).
func FormatCurrency(amount decimal.Decimal) string {
	n := amount.Ceil()
	sign := ""
	if n.IsNegative() {
		sign = "-"
		n = n.Neg()
	}
	return "₹ " + sign + groupIndian(n.String())
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
