package services

import "strings"

// Query intents, in classification priority order.
const (
	IntentComparison    = "comparison"
	IntentInformation   = "information"
	IntentRanking       = "ranking"
	IntentCalculation   = "calculation"
	IntentTemporal      = "temporal_analysis"
	IntentClarification = "clarification"
	IntentGeneral       = "general"
)

// Operations detected by the coarser universal pipeline.
const (
	OpAggregate = "aggregate"
	OpAverage   = "average"
	OpCount     = "count"
	OpTop       = "top"
	OpBottom    = "bottom"
	OpBreakdown = "breakdown"
	OpCompare   = "compare"
	OpList      = "list"
)

// Grouping dimensions.
const (
	GroupMonth    = "month"
	GroupCustomer = "customer"
	GroupItem     = "item"
	GroupCategory = "category"
	GroupRegion   = "region"
	GroupCPDate   = "cp_date"
)

// keywordRule pairs a keyword set with the result it selects.
// Rules are evaluated in order; the first rule whose keyword appears wins.
type keywordRule struct {
	keywords []string
	result   string
}

// intentRules is the fixed-priority intent cascade. Order is load-bearing:
// "top sales this month" is ranking, not temporal, because ranking is
// checked before the temporal keywords.
var intentRules = []keywordRule{
	{[]string{"vs", "versus", "compare", "comparison"}, IntentComparison},
	{[]string{"what is", "show me", "tell me"}, IntentInformation},
	{[]string{"top", "best", "highest", "nett"}, IntentRanking},
	{[]string{"how much", "total"}, IntentCalculation},
	{[]string{"month", "period", "wise", "breakdown"}, IntentTemporal},
	{[]string{"not", "instead", "but"}, IntentClarification},
}

// operationRules map keywords to the universal-pipeline operation.
var operationRules = []keywordRule{
	{[]string{"average", "avg", "mean"}, OpAverage},
	{[]string{"how many", "count", "number of"}, OpCount},
	{[]string{"bottom", "lowest", "least", "worst"}, OpBottom},
	{[]string{"top", "best", "highest", "most"}, OpTop},
	{[]string{"breakdown", "break down", "wise", "split", "distribution"}, OpBreakdown},
	{[]string{"vs", "versus", "compare", "comparison", "growth"}, OpCompare},
	{[]string{"total", "sum", "overall", "how much"}, OpAggregate},
}

// groupingRules map keywords to a grouping dimension.
var groupingRules = []keywordRule{
	{[]string{"month", "monthly", "month wise", "monthwise"}, GroupMonth},
	{[]string{"customer", "client", "buyer", "party"}, GroupCustomer},
	{[]string{"item", "product", "sku"}, GroupItem},
	{[]string{"category", "stock group", "stockgroup", "group"}, GroupCategory},
	{[]string{"region", "location", "area", "zone", "territory"}, GroupRegion},
	{[]string{"cp date", "cp_date", "date wise", "datewise", "daily", "per day"}, GroupCPDate},
}

// ClassifierService maps free text to an intent and modifiers.
type ClassifierService struct{}

// NewClassifierService creates a new classifier service
func NewClassifierService() *ClassifierService {
	return &ClassifierService{}
}

// ClassifyIntent returns the first matching intent, or "general".
// The query must already be lower-cased by the caller.
func (s *ClassifierService) ClassifyIntent(query string) string {
	return matchRules(query, intentRules, IntentGeneral)
}

// DetectOperation returns the universal-pipeline operation, or "list".
func (s *ClassifierService) DetectOperation(query string) string {
	return matchRules(query, operationRules, OpList)
}

// DetectGrouping returns the grouping dimension, or "" when none matches.
func (s *ClassifierService) DetectGrouping(query string) string {
	return matchRules(query, groupingRules, "")
}

func matchRules(query string, rules []keywordRule, fallback string) string {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(query, kw) {
				return rule.result
			}
		}
	}
	return fallback
}
