package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{
			name:     "mid month",
			start:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			months:   3,
			expected: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "crosses year boundary",
			start:    time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC),
			months:   3,
			expected: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "end of month rolls over",
			start:    time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "zero months",
			start:    time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC),
			months:   0,
			expected: time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AddMonths(tt.start, tt.months))
		})
	}
}

func TestMonthsBetween(t *testing.T) {
	jan := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, MonthsBetween(jan, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, MonthsBetween(jan, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 14, MonthsBetween(jan, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -2, MonthsBetween(jan, time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-01-15T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("15/01/2024")
	assert.Error(t, err)

	empty, err := ParseOptionalDate("  ")
	assert.NoError(t, err)
	assert.Nil(t, empty)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "5/1/2024", FormatDate(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "N/A", FormatDate(time.Time{}))
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount   decimal.Decimal
		expected string
	}{
		{decimal.Zero, "₹ 0"},
		{decimal.NewFromInt(917), "₹ 917"},
		{decimal.NewFromFloat(916.01), "₹ 917"},
		{decimal.NewFromInt(11000), "₹ 11,000"},
		{decimal.NewFromInt(123456), "₹ 1,23,456"},
		{decimal.NewFromInt(12345678), "₹ 1,23,45,678"},
		{decimal.NewFromInt(-4), "₹ -4"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCurrency(tt.amount))
		})
	}
}
