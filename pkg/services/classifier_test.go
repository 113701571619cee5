package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntentPriority(t *testing.T) {
	s := NewClassifierService()

	cases := map[string]string{
		"april vs may":                IntentComparison,
		"compare north and south":     IntentComparison,
		"what is the revenue":         IntentInformation,
		"show me the sales":           IntentInformation,
		"top 5 customers":             IntentRanking,
		"best selling item":           IntentRanking,
		"how much did we sell":        IntentCalculation,
		"total quantity":              IntentCalculation,
		"breakdown by region":         IntentTemporal,
		"period analysis":             IntentTemporal,
		"not that, the other one":     IntentClarification,
		"hello there":                 IntentGeneral,
		// Ranking keywords outrank temporal ones by cascade order.
		"top sales this month": IntentRanking,
	}
	for query, want := range cases {
		assert.Equal(t, want, s.ClassifyIntent(query), "query: %q", query)
	}
}

func TestDetectOperation(t *testing.T) {
	s := NewClassifierService()

	cases := map[string]string{
		"average order value":     OpAverage,
		"how many orders":         OpCount,
		"bottom 3 regions":        OpBottom,
		"top 3 regions":           OpTop,
		"month wise split":        OpBreakdown,
		"april versus may growth": OpCompare,
		"total revenue":           OpAggregate,
		"anything else":           OpList,
	}
	for query, want := range cases {
		assert.Equal(t, want, s.DetectOperation(query), "query: %q", query)
	}
}

func TestDetectGrouping(t *testing.T) {
	s := NewClassifierService()

	cases := map[string]string{
		"monthly revenue":          GroupMonth,
		"sales by customer":        GroupCustomer,
		"product performance":      GroupItem,
		"stock group totals":       GroupCategory,
		"revenue by region":        GroupRegion,
		"daily sales":              GroupCPDate,
		"just the overall figures": "",
	}
	for query, want := range cases {
		assert.Equal(t, want, s.DetectGrouping(query), "query: %q", query)
	}
}
