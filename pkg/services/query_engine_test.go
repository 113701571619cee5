package services

import (
	"strings"
	"testing"

	"sales-chat-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *QueryEngineService {
	return NewQueryEngineService(NewFormatterService("en-IN", "₹"))
}

func TestFollowUpInheritsDimension(t *testing.T) {
	engine := newTestEngine()
	records := sampleRecords()

	answer, ctx, matched := engine.Answer("top 3 customers", records, models.ConversationContext{})
	require.True(t, matched)
	assert.Contains(t, answer, "Customer")
	assert.Equal(t, GroupCustomer, ctx.LastDataType)
	assert.Equal(t, 3, ctx.LastCount)

	// A bare "top 5" carries no dimension; the context supplies it.
	answer, ctx, matched = engine.Answer("top 5", records, ctx)
	require.True(t, matched)
	assert.Contains(t, answer, "Top 5 Customers")
	assert.Equal(t, GroupCustomer, ctx.LastDataType)
	assert.Equal(t, 5, ctx.LastCount)
	assert.Contains(t, answer, "| 1 | B |", "B outsells A and ranks first")
}

func TestEmptyDatasetGuard(t *testing.T) {
	engine := newTestEngine()

	answer, _, matched := engine.Answer("total revenue", nil, models.ConversationContext{})
	assert.True(t, matched)
	assert.Contains(t, answer, "No data is loaded yet")
}

func TestPeriodWithNoRecordsAnswersNoData(t *testing.T) {
	engine := newTestEngine()

	// Dataset covers April and May 2024 only.
	answer, _, matched := engine.Answer("sales in december 2023", sampleRecords(), models.ConversationContext{})
	require.True(t, matched, "a recognized period is an answer, not a fallthrough")
	assert.Contains(t, answer, "December 2023")
	assert.NotContains(t, answer, "Try:")
}

func TestUnmatchedQueryFallsBackToHelp(t *testing.T) {
	engine := newTestEngine()

	answer, ctx, matched := engine.Answer("xyzzy", sampleRecords(), models.ConversationContext{})
	assert.False(t, matched)
	assert.Contains(t, answer, "Try:")
	assert.Equal(t, models.ConversationContext{}, ctx, "fallback leaves context untouched")
}

func TestHelpCommandWorksWithoutData(t *testing.T) {
	engine := newTestEngine()

	answer, _, matched := engine.Answer("help", nil, models.ConversationContext{})
	assert.True(t, matched)
	assert.Contains(t, answer, "top 5 customers")
}

func TestDebugCommands(t *testing.T) {
	engine := newTestEngine()
	records := sampleRecords()

	answer, _, matched := engine.Answer("debug context", records, models.ConversationContext{})
	assert.True(t, matched)
	assert.Contains(t, answer, "empty")

	answer, _, _ = engine.Answer("debug context", records, models.ConversationContext{
		LastTopic: "customers", LastDataType: GroupCustomer, LastCount: 3,
	})
	assert.Contains(t, answer, "customer")

	answer, _, _ = engine.Answer("debug columns", records, models.ConversationContext{})
	assert.Contains(t, answer, "Customers: 2")
}

func TestPatternHandlerMasterID(t *testing.T) {
	engine := newTestEngine()

	answer, ctx, matched := engine.Answer("masterid", sampleRecords(), models.ConversationContext{})
	require.True(t, matched)
	assert.Contains(t, answer, "Order count")
	assert.Contains(t, answer, "3 orders")
	assert.Equal(t, "transaction", ctx.LastDataType)
}

func TestMonthWiseBreakdownChronological(t *testing.T) {
	engine := newTestEngine()

	answer, ctx, matched := engine.Answer("month wise breakdown", sampleRecords(), models.ConversationContext{})
	require.True(t, matched)
	assert.Equal(t, GroupMonth, ctx.LastDataType)
	april := strings.Index(answer, "April 2024")
	may := strings.Index(answer, "May 2024")
	require.GreaterOrEqual(t, april, 0)
	require.GreaterOrEqual(t, may, 0)
	assert.Less(t, april, may, "months render in calendar order")
}

func TestComparisonQueryEndToEnd(t *testing.T) {
	engine := newTestEngine()

	answer, _, matched := engine.Answer("april vs may 2024", sampleRecords(), models.ConversationContext{})
	require.True(t, matched)
	assert.Contains(t, answer, "₹150.00")
	assert.Contains(t, answer, "₹200.00")
	assert.Contains(t, answer, "33.33% growth")
}

func TestEntityFilterQuery(t *testing.T) {
	engine := newTestEngine()

	answer, _, matched := engine.Answer("total revenue for north region", sampleRecords(), models.ConversationContext{})
	require.True(t, matched)
	// North holds the two A records, 100 + 50.
	assert.Contains(t, answer, "₹150.00")
	assert.Contains(t, answer, "North")
}

func TestTrendDirection(t *testing.T) {
	engine := newTestEngine()

	result := trendResult(engine, sampleRecords())
	require.Equal(t, models.ResultRows, result.Kind)
	assert.Equal(t, "Sales trend: growing", result.Title)
	require.NotNil(t, result.Comparison)
	assert.True(t, result.Comparison.GrowthOK)
	assert.InDelta(t, 33.33, result.Comparison.Growth, 0.01)
}

func TestTrendNeedsTwoMonths(t *testing.T) {
	engine := newTestEngine()
	records := sampleRecords()[:1]

	result := trendResult(engine, records)
	assert.Equal(t, models.ResultNoData, result.Kind)
}
