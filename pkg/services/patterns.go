package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"sales-chat-api/pkg/models"
)

// Legacy pattern handlers: narrow keyword-gated passes tried in a fixed
// order after the structured pipeline declines. Each is independent and
// best-effort; the first to produce a result wins.

type patternHandler struct {
	name     string
	matches  func(query string) bool
	handle   func(s *QueryEngineService, query string, records []models.SalesRecord) *models.ResultSet
	dataType string // grouping dimension written to context on success, "" for none
}

var isoDatePattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

var patternHandlers = []patternHandler{
	{
		name:    "masterid",
		matches: containsAny("masterid", "master id", "transaction id"),
		handle: func(s *QueryEngineService, _ string, records []models.SalesRecord) *models.ResultSet {
			return s.executor.Count(records, "", []string{"all records"})
		},
		dataType: "transaction",
	},
	{
		name:    "issales",
		matches: containsAny("issales", "is sale", "sales flag"),
		handle: func(s *QueryEngineService, _ string, records []models.SalesRecord) *models.ResultSet {
			sales := 0
			for _, r := range records {
				if r.IsSale {
					sales++
				}
			}
			return &models.ResultSet{
				Kind:  models.ResultRows,
				Title: "Sale vs non-sale records",
				Rows: []models.ResultRow{
					{Label: "Sales", Value: float64(sales), ValueKind: "count", Transactions: sales},
					{Label: "Other", Value: float64(len(records) - sales), ValueKind: "count", Transactions: len(records) - sales},
				},
			}
		},
	},
	{
		name:    "date-range",
		matches: containsAny("date range", "data range", "from when", "earliest", "latest"),
		handle: func(s *QueryEngineService, _ string, records []models.SalesRecord) *models.ResultSet {
			min, max := dateBounds(records)
			if min.IsZero() {
				return models.NoData("No dated records found.")
			}
			return &models.ResultSet{
				Kind: models.ResultNoData, // plain text answer
				Message: fmt.Sprintf("Data covers **%s** to **%s**.",
					min.Format("02 Jan 2006"), max.Format("02 Jan 2006")),
			}
		},
	},
	{
		name:    "month-wise",
		matches: containsAny("month wise", "monthwise", "monthly", "per month"),
		handle: func(s *QueryEngineService, _ string, records []models.SalesRecord) *models.ResultSet {
			return s.executor.Breakdown(records, GroupMonth, nil)
		},
		dataType: GroupMonth,
	},
	{
		name:    "revenue",
		matches: containsAny("revenue", "turnover", "nett amount"),
		handle: func(s *QueryEngineService, _ string, records []models.SalesRecord) *models.ResultSet {
			return s.executor.Aggregate(records, "amount", nil)
		},
	},
	{
		name:    "orders",
		matches: containsAny("order"),
		handle: func(s *QueryEngineService, _ string, records []models.SalesRecord) *models.ResultSet {
			return s.executor.Aggregate(records, "masterid", nil)
		},
		dataType: "transaction",
	},
	{
		name:    "customer",
		matches: containsAny("customer", "client", "party"),
		handle: func(s *QueryEngineService, query string, records []models.SalesRecord) *models.ResultSet {
			count := s.resolver.ExtractCount(query, DefaultRankingCount)
			return s.executor.Ranking(records, GroupCustomer, "amount", count, true, nil)
		},
		dataType: GroupCustomer,
	},
	{
		name:    "product",
		matches: containsAny("product", "item", "sku"),
		handle: func(s *QueryEngineService, query string, records []models.SalesRecord) *models.ResultSet {
			count := s.resolver.ExtractCount(query, DefaultRankingCount)
			return s.executor.Ranking(records, GroupItem, "amount", count, true, nil)
		},
		dataType: GroupItem,
	},
	{
		name:    "quantity",
		matches: containsAny("quantity", "units", "qty"),
		handle: func(s *QueryEngineService, _ string, records []models.SalesRecord) *models.ResultSet {
			return s.executor.Aggregate(records, "quantity", nil)
		},
	},
	{
		name:    "stockgroup",
		matches: containsAny("stock group", "stockgroup", "category"),
		handle: func(s *QueryEngineService, _ string, records []models.SalesRecord) *models.ResultSet {
			return s.executor.Breakdown(records, GroupCategory, nil)
		},
		dataType: GroupCategory,
	},
	{
		name:    "region",
		matches: containsAny("region", "zone", "territory"),
		handle: func(s *QueryEngineService, _ string, records []models.SalesRecord) *models.ResultSet {
			return s.executor.Breakdown(records, GroupRegion, nil)
		},
		dataType: GroupRegion,
	},
	{
		name:    "date-specific",
		matches: func(q string) bool { return isoDatePattern.MatchString(q) },
		handle: func(s *QueryEngineService, query string, records []models.SalesRecord) *models.ResultSet {
			day, err := time.Parse("2006-01-02", isoDatePattern.FindString(query))
			if err != nil {
				return nil
			}
			subset := filterRecords(records, func(r models.SalesRecord) bool {
				return !r.TransactionDate.IsZero() &&
					r.TransactionDate.Year() == day.Year() &&
					r.TransactionDate.YearDay() == day.YearDay()
			})
			if len(subset) == 0 {
				return models.NoData(fmt.Sprintf("No data found for %s.", day.Format("02 Jan 2006")))
			}
			return s.executor.SmartSummary(subset, []string{day.Format("02 Jan 2006")})
		},
		dataType: "date",
	},
	{
		name:    "trend",
		matches: containsAny("trend", "growth", "growing", "declining"),
		handle: func(s *QueryEngineService, _ string, records []models.SalesRecord) *models.ResultSet {
			return trendResult(s, records)
		},
		dataType: GroupMonth,
	},
	{
		name:    "summary",
		matches: containsAny("summary", "overview", "snapshot"),
		handle: func(s *QueryEngineService, _ string, records []models.SalesRecord) *models.ResultSet {
			return s.executor.SmartSummary(records, nil)
		},
	},
}

// runPatternHandlers is dispatch stage (c).
func (s *QueryEngineService) runPatternHandlers(query string, records []models.SalesRecord, ctx models.ConversationContext) (string, models.ConversationContext, bool) {
	for _, h := range patternHandlers {
		if !h.matches(query) {
			continue
		}
		result := h.handle(s, query, records)
		if result == nil {
			continue
		}
		newCtx := ctx
		if h.dataType != "" {
			newCtx = models.ConversationContext{
				LastTopic:    topicFor(h.dataType),
				LastDataType: h.dataType,
				LastCount:    ctx.LastCount,
			}
		}
		return s.formatter.Format(result), newCtx, true
	}
	return "", ctx, false
}

// trendResult compares the first and last calendar months and labels the
// direction. Growth over a zero base is reported as not computable.
func trendResult(s *QueryEngineService, records []models.SalesRecord) *models.ResultSet {
	breakdown := s.executor.Breakdown(records, GroupMonth, nil)
	if breakdown.Kind != models.ResultRows || len(breakdown.Rows) < 2 {
		return models.NoData("Not enough dated months to compute a trend.")
	}
	first := breakdown.Rows[0]
	last := breakdown.Rows[len(breakdown.Rows)-1]
	growth, ok := safeDiv((last.Revenue-first.Revenue)*100, first.Revenue)

	direction := "stable"
	if ok && growth > 0 {
		direction = "growing"
	} else if ok && growth < 0 {
		direction = "declining"
	}
	title := fmt.Sprintf("Sales trend: %s", direction)
	breakdown.Title = title
	breakdown.Comparison = &models.ComparisonResult{
		PeriodA:  first.Label,
		PeriodB:  last.Label,
		TotalA:   first.Revenue,
		TotalB:   last.Revenue,
		Growth:   growth,
		GrowthOK: ok,
	}
	return breakdown
}

func containsAny(keywords ...string) func(string) bool {
	return func(query string) bool {
		for _, kw := range keywords {
			if strings.Contains(query, kw) {
				return true
			}
		}
		return false
	}
}

func dateBounds(records []models.SalesRecord) (time.Time, time.Time) {
	var min, max time.Time
	for _, r := range records {
		if r.TransactionDate.IsZero() {
			continue
		}
		if min.IsZero() || r.TransactionDate.Before(min) {
			min = r.TransactionDate
		}
		if max.IsZero() || r.TransactionDate.After(max) {
			max = r.TransactionDate
		}
	}
	return min, max
}
