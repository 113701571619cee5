package services

import (
	"regexp"
	"strconv"
	"strings"

	"sales-chat-api/pkg/models"
)

// Default counts differ per call site. Ranking queries default to 5 while a
// generic dimensionless "top N" follow-up defaults to 3; unifying the two
// would change answers to ambiguous queries, so both are kept.
const (
	DefaultRankingCount  = 5
	DefaultFollowUpCount = 3
)

var (
	numberPattern = regexp.MustCompile(`\d+`)
	yearPattern   = regexp.MustCompile(`\b20\d\d\b`)
)

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// stopwords stripped before fuzzy matching a query against entity values.
var stopwords = []string{
	"sales", "sale", "for", "customer", "customers", "product", "products",
	"item", "items", "category", "region", "top", "best", "show", "me",
	"the", "of", "in", "total", "revenue", "what", "is", "give", "tell",
}

// metricRules map metric keywords to a dataset column, checked in priority
// order; "amount" is the default when nothing matches.
var metricRules = []keywordRule{
	{[]string{"revenue", "sales", "amount"}, "amount"},
	{[]string{"orders"}, "masterid"},
	{[]string{"quantity", "units", "qty"}, "quantity"},
	{[]string{"customers"}, "customer"},
	{[]string{"masterid", "master id", "transaction id"}, "masterid"},
	{[]string{"date", "day", "when"}, "transactiondate"},
	{[]string{"item", "product"}, "item"},
	{[]string{"category", "stock group", "stockgroup"}, "category"},
	{[]string{"region", "location"}, "region"},
	{[]string{"issales", "is sale", "issale"}, "issales"},
}

// ResolverService extracts structured entities from query text.
// Every extraction is best-effort: absence leaves the field unset.
type ResolverService struct{}

// NewResolverService creates a new resolver service
func NewResolverService() *ResolverService {
	return &ResolverService{}
}

// Resolve extracts all entities from a lower-cased query against the
// vocabulary derived from the current dataset.
func (s *ResolverService) Resolve(query string, vocab models.Vocabulary) models.Entities {
	return models.Entities{
		Customer:   s.MatchEntity(query, vocab.Customers),
		Product:    s.MatchEntity(query, vocab.Items),
		StockGroup: s.MatchEntity(query, vocab.Categories),
		Region:     s.MatchEntity(query, vocab.Regions),
		Count:      s.ExtractCount(query, 0),
		Metric:     s.DetectMetric(query),
		Periods:    s.ExtractPeriods(query),
	}
}

// MatchEntity finds the first vocabulary value matched by the query.
// Three heuristics are tried per candidate, in order: the query contains
// the value, the value contains the cleaned query, or a cleaned query
// token (longer than 2 chars) overlaps a token of the value. The first
// candidate to satisfy any heuristic wins; candidates are never scored.
func (s *ResolverService) MatchEntity(query string, values []string) string {
	cleaned := s.cleanQuery(query)
	queryWords := tokensOver2(cleaned)

	for _, value := range values {
		lower := strings.ToLower(value)
		if len(lower) <= 2 {
			// Substring checks on short names match almost anything;
			// require an exact word instead.
			for _, w := range strings.Fields(query) {
				if strings.Trim(w, "?.,!") == lower {
					return value
				}
			}
			continue
		}
		if strings.Contains(query, lower) {
			return value
		}
		if cleaned != "" && strings.Contains(lower, cleaned) {
			return value
		}
		for _, vw := range tokensOver2(lower) {
			for _, qw := range queryWords {
				if vw == qw {
					return value
				}
			}
		}
	}
	return ""
}

// ExtractCount returns the first integer literal in the query, or the
// given default when the query carries none.
func (s *ResolverService) ExtractCount(query string, defaultCount int) int {
	// Skip 4-digit years so "top customers 2024" does not become count 2024.
	stripped := yearPattern.ReplaceAllString(query, "")
	if m := numberPattern.FindString(stripped); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			return n
		}
	}
	return defaultCount
}

// ExtractPeriods scans for month names and 4-digit years. Months and years
// are aligned positionally when both repeat; a trailing year with no month
// of its own yields a year-only period.
func (s *ResolverService) ExtractPeriods(query string) []models.Period {
	var months []string
	for _, m := range monthNames {
		if idx := strings.Index(query, m); idx >= 0 {
			months = append(months, m)
		}
	}
	// Preserve the order months appear in the text, not calendar order.
	type pos struct {
		name string
		at   int
	}
	var ordered []pos
	for _, m := range months {
		ordered = append(ordered, pos{m, strings.Index(query, m)})
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].at < ordered[i].at {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	var years []int
	for _, y := range yearPattern.FindAllString(query, -1) {
		if n, err := strconv.Atoi(y); err == nil {
			years = append(years, n)
		}
	}

	var periods []models.Period
	for i, m := range ordered {
		p := models.Period{Month: titleMonth(m.name)}
		switch {
		case i < len(years):
			p.Year = years[i]
		case len(years) > 0:
			p.Year = years[len(years)-1]
		}
		periods = append(periods, p)
	}
	// Year-only query: no month matched but a year is present.
	if len(periods) == 0 {
		for _, y := range years {
			periods = append(periods, models.Period{Year: y})
		}
	}
	return periods
}

// DetectMetric maps metric keywords to a column name, defaulting to "amount".
func (s *ResolverService) DetectMetric(query string) string {
	return matchRules(query, metricRules, "amount")
}

func (s *ResolverService) cleanQuery(query string) string {
	words := strings.Fields(query)
	var kept []string
	for _, w := range words {
		w = strings.Trim(w, "?.,!")
		if w == "" || isStopword(w) {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

func isStopword(word string) bool {
	for _, sw := range stopwords {
		if word == sw {
			return true
		}
	}
	return false
}

func tokensOver2(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if len(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

func titleMonth(m string) string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(m[:1]) + m[1:]
}
