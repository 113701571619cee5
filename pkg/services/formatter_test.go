package services

import (
	"testing"

	"sales-chat-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrencyIndianGrouping(t *testing.T) {
	f := NewFormatterService("en-IN", "₹")
	assert.Equal(t, "₹12,34,567.50", f.FormatCurrency(1234567.5))
	assert.Equal(t, "₹100.00", f.FormatCurrency(100))
}

func TestFormatCurrencyWesternGrouping(t *testing.T) {
	f := NewFormatterService("en", "$")
	assert.Equal(t, "$1,234,567.50", f.FormatCurrency(1234567.5))
}

func TestFormatterBadLocaleFallsBack(t *testing.T) {
	f := NewFormatterService("not a locale", "₹")
	assert.Equal(t, "₹1,234.00", f.FormatCurrency(1234))
}

func TestFormatQuantityAndCount(t *testing.T) {
	f := NewFormatterService("en", "₹")
	assert.Equal(t, "2,500 units", f.FormatQuantity(2500))
	assert.Equal(t, "42 orders", f.FormatCount(42, "orders"))
	assert.Equal(t, "42", f.FormatCount(42, ""))
}

func TestFormatScalarWithFilters(t *testing.T) {
	f := NewFormatterService("en", "₹")
	rs := &models.ResultSet{
		Kind:    models.ResultScalar,
		Title:   "Total Revenue",
		Scalar:  &models.ScalarResult{Value: 350, Kind: "currency"},
		Filters: []string{"customer: Acme Corp"},
	}
	out := f.Format(rs)
	assert.Contains(t, out, "**Total Revenue**: ₹350.00")
	assert.Contains(t, out, "_Filters: customer: Acme Corp_")
}

func TestFormatScalarHidesAllRecordsFilter(t *testing.T) {
	f := NewFormatterService("en", "₹")
	rs := &models.ResultSet{
		Kind:    models.ResultScalar,
		Title:   "Total Revenue",
		Scalar:  &models.ScalarResult{Value: 350, Kind: "currency"},
		Filters: []string{"all records"},
	}
	assert.NotContains(t, f.Format(rs), "Filters")
}

func TestFormatRowsAsTable(t *testing.T) {
	f := NewFormatterService("en", "₹")
	rs := &models.ResultSet{
		Kind:    models.ResultRows,
		Title:   "Top Customers",
		GroupBy: GroupCustomer,
		Rows: []models.ResultRow{
			{Label: "B", Value: 200, ValueKind: "currency", Revenue: 200, Quantity: 1, Orders: 1},
			{Label: "A", Value: 150, ValueKind: "currency", Revenue: 150, Quantity: 3, Orders: 2},
		},
	}
	out := f.Format(rs)
	assert.Contains(t, out, "### Top Customers")
	assert.Contains(t, out, "| # | Customer | Revenue | Quantity | Orders |")
	assert.Contains(t, out, "| 1 | B | ₹200.00 | 1 units | 1 |")
	assert.Contains(t, out, "| 2 | A | ₹150.00 | 3 units | 2 |")
}

func TestFormatSingleRowEnumerated(t *testing.T) {
	f := NewFormatterService("en", "₹")
	rs := &models.ResultSet{
		Kind:  models.ResultRows,
		Title: "Top Customer",
		Rows: []models.ResultRow{
			{Label: "B", Value: 200, ValueKind: "currency"},
		},
	}
	out := f.Format(rs)
	assert.NotContains(t, out, "|", "single row renders as a list, not a table")
	assert.Contains(t, out, "1. B: ₹200.00")
}

func TestFormatComparison(t *testing.T) {
	f := NewFormatterService("en", "₹")
	rs := &models.ResultSet{
		Kind:  models.ResultComparison,
		Title: "April 2024 vs May 2024",
		Comparison: &models.ComparisonResult{
			PeriodA: "April 2024", PeriodB: "May 2024",
			TotalA: 150, TotalB: 200, Growth: 33.33, GrowthOK: true,
		},
	}
	out := f.Format(rs)
	assert.Contains(t, out, "April 2024: ₹150.00")
	assert.Contains(t, out, "May 2024: ₹200.00")
	assert.Contains(t, out, "33.33% growth")
}

func TestFormatComparisonZeroBase(t *testing.T) {
	f := NewFormatterService("en", "₹")
	rs := &models.ResultSet{
		Kind:  models.ResultComparison,
		Title: "March 2024 vs May 2024",
		Comparison: &models.ComparisonResult{
			PeriodA: "March 2024", PeriodB: "May 2024",
			TotalA: 0, TotalB: 200, GrowthOK: false,
		},
	}
	out := f.Format(rs)
	assert.Contains(t, out, "not computable")
	assert.NotContains(t, out, "%!")
}

func TestFormatNoDataPassesMessageThrough(t *testing.T) {
	f := NewFormatterService("en", "₹")
	rs := models.NoData("No records found for April 2024.")
	assert.Equal(t, "No records found for April 2024.", f.Format(rs))
}
