package services

import (
	"fmt"
	"strings"

	"sales-chat-api/pkg/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatterService renders result sets as Markdown-like text. Digit
// grouping follows the configured locale: "en-IN" gives the Indian 2-3-2
// grouping, "en" the Western 3-digit grouping.
type FormatterService struct {
	printer  *message.Printer
	currency string
}

// NewFormatterService creates a formatter for the given BCP 47 locale tag
// and currency symbol. An unparsable tag falls back to English grouping.
func NewFormatterService(locale, currency string) *FormatterService {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &FormatterService{
		printer:  message.NewPrinter(tag),
		currency: currency,
	}
}

// Currency returns the symbol the formatter prefixes to monetary values.
func (s *FormatterService) Currency() string {
	return s.currency
}

// FormatCurrency renders a monetary value: symbol prefix, locale digit
// grouping, always two decimal places.
func (s *FormatterService) FormatCurrency(v float64) string {
	return s.currency + s.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatQuantity renders a quantity as a grouped integer with a unit suffix.
func (s *FormatterService) FormatQuantity(v float64) string {
	return s.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(0))) + " units"
}

// FormatCount renders a grouped integer with an optional unit.
func (s *FormatterService) FormatCount(v float64, unit string) string {
	out := s.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
	if unit != "" {
		out += " " + unit
	}
	return out
}

func (s *FormatterService) formatValue(v float64, kind, unit string) string {
	switch kind {
	case "quantity":
		return s.FormatQuantity(v)
	case "count":
		return s.FormatCount(v, unit)
	}
	return s.FormatCurrency(v)
}

// Format renders a result set. Multi-row results always render as a table
// or enumerated list, never prose.
func (s *FormatterService) Format(rs *models.ResultSet) string {
	if rs == nil {
		return ""
	}
	switch rs.Kind {
	case models.ResultNoData:
		return rs.Message
	case models.ResultScalar:
		return s.formatScalar(rs)
	case models.ResultRows:
		return s.formatRows(rs)
	case models.ResultComparison:
		return s.formatComparison(rs)
	case models.ResultSummary:
		return s.formatSummary(rs)
	}
	return rs.Message
}

func (s *FormatterService) formatScalar(rs *models.ResultSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**: %s", rs.Title, s.formatValue(rs.Scalar.Value, rs.Scalar.Kind, rs.Scalar.Unit))
	s.appendFilters(&b, rs.Filters)
	return b.String()
}

func (s *FormatterService) formatRows(rs *models.ResultSet) string {
	if len(rs.Rows) == 1 {
		r := rs.Rows[0]
		var b strings.Builder
		fmt.Fprintf(&b, "**%s**\n1. %s: %s", rs.Title, r.Label, s.formatValue(r.Value, r.ValueKind, ""))
		s.appendFilters(&b, rs.Filters)
		return b.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", rs.Title)
	b.WriteString("| # | " + displayDimension(rs.GroupBy) + " | Revenue | Quantity | Orders |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for i, r := range rs.Rows {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %d |\n",
			i+1, r.Label, s.FormatCurrency(r.Revenue), s.FormatQuantity(r.Quantity), r.Orders)
	}
	if c := rs.Comparison; c != nil {
		if c.GrowthOK {
			fmt.Fprintf(&b, "\n%s → %s: %.2f%% change", c.PeriodA, c.PeriodB, c.Growth)
		} else {
			fmt.Fprintf(&b, "\n%s → %s: change not computable (zero base)", c.PeriodA, c.PeriodB)
		}
	}
	s.appendFilters(&b, rs.Filters)
	return b.String()
}

func (s *FormatterService) formatComparison(rs *models.ResultSet) string {
	c := rs.Comparison
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", rs.Title)
	fmt.Fprintf(&b, "- %s: %s\n", c.PeriodA, s.FormatCurrency(c.TotalA))
	fmt.Fprintf(&b, "- %s: %s\n", c.PeriodB, s.FormatCurrency(c.TotalB))
	if c.GrowthOK {
		direction := "growth"
		if c.Growth < 0 {
			direction = "decline"
		}
		fmt.Fprintf(&b, "- Change: %.2f%% %s", c.Growth, direction)
	} else {
		fmt.Fprintf(&b, "- Change: not computable (%s has no revenue)", c.PeriodA)
	}
	return b.String()
}

func (s *FormatterService) formatSummary(rs *models.ResultSet) string {
	sum := rs.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", rs.Title)
	fmt.Fprintf(&b, "- Revenue: %s\n", s.FormatCurrency(sum.Revenue))
	fmt.Fprintf(&b, "- Quantity: %s\n", s.FormatQuantity(sum.Quantity))
	fmt.Fprintf(&b, "- Orders: %s\n", s.FormatCount(float64(sum.Orders), ""))
	fmt.Fprintf(&b, "- Transactions: %s\n", s.FormatCount(float64(sum.Transactions), ""))
	fmt.Fprintf(&b, "- Customers: %s", s.FormatCount(float64(sum.Customers), ""))
	s.appendFilters(&b, rs.Filters)
	return b.String()
}

func (s *FormatterService) appendFilters(b *strings.Builder, filters []string) {
	if len(filters) == 0 {
		return
	}
	if len(filters) == 1 && filters[0] == "all records" {
		return
	}
	fmt.Fprintf(b, "\n\n_Filters: %s_", strings.Join(filters, ", "))
}
