package services

import (
	"testing"

	"sales-chat-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchEntityDirectContains(t *testing.T) {
	r := NewResolverService()
	got := r.MatchEntity("sales for acme corp last month", []string{"Globex", "Acme Corp"})
	assert.Equal(t, "Acme Corp", got)
}

func TestMatchEntityCleanedQuery(t *testing.T) {
	r := NewResolverService()
	// Stopwords stripped, "globex" remains and the value contains it.
	got := r.MatchEntity("show me sales for globex", []string{"Globex Industries"})
	assert.Equal(t, "Globex Industries", got)
}

func TestMatchEntityWordOverlap(t *testing.T) {
	r := NewResolverService()
	got := r.MatchEntity("how did industries perform", []string{"Globex Industries"})
	assert.Equal(t, "Globex Industries", got)
}

func TestMatchEntityFirstMatchWins(t *testing.T) {
	r := NewResolverService()
	// Both values contain "corp"; the first in vocabulary order wins.
	got := r.MatchEntity("corp numbers please", []string{"Acme Corp", "Corp Two"})
	assert.Equal(t, "Acme Corp", got)
}

func TestMatchEntityNoMatch(t *testing.T) {
	r := NewResolverService()
	assert.Equal(t, "", r.MatchEntity("top 5", []string{"Acme Corp"}))
}

func TestExtractCount(t *testing.T) {
	r := NewResolverService()

	assert.Equal(t, 7, r.ExtractCount("top 7 customers", DefaultRankingCount))
	assert.Equal(t, DefaultRankingCount, r.ExtractCount("top customers", DefaultRankingCount))
	assert.Equal(t, DefaultFollowUpCount, r.ExtractCount("show more", DefaultFollowUpCount))
	// A 4-digit year is not a count.
	assert.Equal(t, DefaultRankingCount, r.ExtractCount("top customers 2024", DefaultRankingCount))
	assert.Equal(t, 3, r.ExtractCount("top 3 in 2024", DefaultRankingCount))
}

func TestExtractSinglePeriod(t *testing.T) {
	r := NewResolverService()
	periods := r.ExtractPeriods("sales in april 2024")
	require.Len(t, periods, 1)
	assert.Equal(t, models.Period{Month: "April", Year: 2024}, periods[0])
}

func TestExtractTwoPeriodsForComparison(t *testing.T) {
	r := NewResolverService()
	periods := r.ExtractPeriods("april vs may 2024")
	require.Len(t, periods, 2)
	assert.Equal(t, "April", periods[0].Month)
	assert.Equal(t, "May", periods[1].Month)
	// A single trailing year applies to both months.
	assert.Equal(t, 2024, periods[0].Year)
	assert.Equal(t, 2024, periods[1].Year)
}

func TestExtractPeriodsPositionalYears(t *testing.T) {
	r := NewResolverService()
	periods := r.ExtractPeriods("december 2023 vs january 2024")
	require.Len(t, periods, 2)
	assert.Equal(t, models.Period{Month: "December", Year: 2023}, periods[0])
	assert.Equal(t, models.Period{Month: "January", Year: 2024}, periods[1])
}

func TestExtractYearOnlyPeriod(t *testing.T) {
	r := NewResolverService()
	periods := r.ExtractPeriods("revenue for 2024")
	require.Len(t, periods, 1)
	assert.Equal(t, models.Period{Year: 2024}, periods[0])
}

func TestExtractPeriodsNone(t *testing.T) {
	r := NewResolverService()
	assert.Empty(t, r.ExtractPeriods("top customers"))
}

func TestDetectMetricPriority(t *testing.T) {
	r := NewResolverService()

	cases := map[string]string{
		"total revenue":        "amount",
		"revenue and quantity": "amount", // revenue rule is checked first
		"units sold":           "quantity",
		"how many orders":      "masterid",
		"unique customers":     "customer",
		"by region please":     "region",
		"something else":       "amount", // default
	}
	for query, want := range cases {
		assert.Equal(t, want, r.DetectMetric(query), "query: %q", query)
	}
}

func TestResolveCombined(t *testing.T) {
	r := NewResolverService()
	vocab := models.Vocabulary{
		Customers: []string{"Acme Corp", "Globex"},
		Regions:   []string{"North", "South"},
	}
	e := r.Resolve("top 3 sales for acme corp in april 2024", vocab)

	assert.Equal(t, "Acme Corp", e.Customer)
	assert.Equal(t, 3, e.Count)
	require.Len(t, e.Periods, 1)
	assert.Equal(t, "April", e.Periods[0].Month)
	assert.Equal(t, "amount", e.Metric)
}
