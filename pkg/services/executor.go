package services

import (
	"fmt"
	"sort"
	"strings"

	"sales-chat-api/pkg/models"
)

// ExecutorService computes aggregations over a filtered dataset. It is a
// pure function of (analysis, records); the dataset is never mutated.
type ExecutorService struct{}

// NewExecutorService creates a new executor service
func NewExecutorService() *ExecutorService {
	return &ExecutorService{}
}

// Execute runs the operation selected by the analysis over the dataset.
// Filtering precedes execution: entity filters (AND across categories),
// then period filters. An empty subset yields a NoData result so nothing
// downstream divides by zero.
func (s *ExecutorService) Execute(analysis models.QueryAnalysis, records []models.SalesRecord) *models.ResultSet {
	if len(records) == 0 {
		return models.NoData("No data is loaded yet. Upload a dataset to get started.")
	}

	subset, labels := s.FilterByEntities(records, analysis.Entities)
	if len(subset) == 0 {
		return models.NoData(fmt.Sprintf("No data found for %s.", strings.Join(labels, ", ")))
	}

	periods := analysis.Entities.Periods
	comparing := analysis.Intent == IntentComparison || analysis.Operation == OpCompare ||
		analysis.Modifiers.Comparison || len(periods) >= 2
	if comparing && len(periods) >= 2 {
		return s.Comparison(subset, periods[0], periods[1], labels)
	}

	if len(periods) == 1 {
		subset = s.FilterByPeriod(subset, periods[0])
		if len(subset) == 0 {
			return models.NoData(fmt.Sprintf("No data found for %s.", periods[0].Label()))
		}
		labels = append(labels, periods[0].Label())
	}

	switch {
	case analysis.Intent == IntentRanking || analysis.Operation == OpTop || analysis.Operation == OpBottom:
		count := analysis.Entities.Count
		if count <= 0 {
			count = DefaultRankingCount
		}
		desc := analysis.Operation != OpBottom
		return s.Ranking(subset, analysis.GroupBy, analysis.Entities.Metric, count, desc, labels)

	case analysis.Operation == OpBreakdown || analysis.Intent == IntentTemporal || analysis.Modifiers.MonthWise:
		groupBy := analysis.GroupBy
		if groupBy == "" {
			groupBy = GroupMonth
		}
		return s.Breakdown(subset, groupBy, labels)

	case analysis.Operation == OpAverage || analysis.Modifiers.Average:
		return s.Average(subset, analysis.Entities.Metric, labels)

	case analysis.Operation == OpCount:
		return s.Count(subset, analysis.GroupBy, labels)

	case analysis.Intent == IntentCalculation || analysis.Operation == OpAggregate || analysis.Modifiers.Total:
		return s.Aggregate(subset, analysis.Entities.Metric, labels)
	}

	return s.SmartSummary(subset, labels)
}

// FilterByEntities applies entity filters AND-combined across categories
// and returns the subset plus the applied-filter labels.
func (s *ExecutorService) FilterByEntities(records []models.SalesRecord, e models.Entities) ([]models.SalesRecord, []string) {
	var labels []string
	subset := records
	if e.Customer != "" {
		subset = filterRecords(subset, func(r models.SalesRecord) bool { return r.Customer == e.Customer })
		labels = append(labels, "customer "+e.Customer)
	}
	if e.Product != "" {
		subset = filterRecords(subset, func(r models.SalesRecord) bool { return r.Item == e.Product })
		labels = append(labels, "item "+e.Product)
	}
	if e.StockGroup != "" {
		subset = filterRecords(subset, func(r models.SalesRecord) bool { return r.Category == e.StockGroup })
		labels = append(labels, "category "+e.StockGroup)
	}
	if e.Region != "" {
		subset = filterRecords(subset, func(r models.SalesRecord) bool { return r.Region == e.Region })
		labels = append(labels, "region "+e.Region)
	}
	if len(labels) == 0 {
		labels = append(labels, "all records")
	}
	return subset, labels
}

// FilterByPeriod keeps records whose transaction date falls in the period.
// Month "" matches any month; year 0 matches any year.
func (s *ExecutorService) FilterByPeriod(records []models.SalesRecord, p models.Period) []models.SalesRecord {
	return filterRecords(records, func(r models.SalesRecord) bool {
		if r.TransactionDate.IsZero() {
			return false
		}
		if p.Month != "" && !strings.EqualFold(r.TransactionDate.Month().String(), p.Month) {
			return false
		}
		if p.Year != 0 && r.TransactionDate.Year() != p.Year {
			return false
		}
		return true
	})
}

// Breakdown groups records by a dimension and sums per group. Month
// breakdowns sort chronologically; every other dimension sorts by
// descending revenue.
func (s *ExecutorService) Breakdown(records []models.SalesRecord, groupBy string, labels []string) *models.ResultSet {
	type bucket struct {
		label   string
		sortKey int
		revenue float64
		qty     float64
		orders  map[string]bool
		txns    int
	}

	byMonth := groupBy == GroupMonth
	buckets := make(map[string]*bucket)
	var order []string

	for _, r := range records {
		var key string
		var sortKey int
		if byMonth {
			if r.TransactionDate.IsZero() {
				continue
			}
			key = fmt.Sprintf("%s %d", r.TransactionDate.Month().String(), r.TransactionDate.Year())
			sortKey = r.TransactionDate.Year()*100 + int(r.TransactionDate.Month())
		} else {
			key = groupKeyFor(r, groupBy)
			if key == "" {
				continue
			}
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{label: key, sortKey: sortKey, orders: make(map[string]bool)}
			buckets[key] = b
			order = append(order, key)
		}
		b.revenue += r.Amount
		b.qty += r.Quantity
		b.orders[r.MasterID] = true
		b.txns++
	}

	rows := make([]models.ResultRow, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		rows = append(rows, models.ResultRow{
			Label:        b.label,
			Revenue:      b.revenue,
			Quantity:     b.qty,
			Orders:       len(b.orders),
			Transactions: b.txns,
			Value:        b.revenue,
			ValueKind:    "currency",
		})
	}
	if byMonth {
		sortKeys := make(map[string]int, len(order))
		for _, key := range order {
			sortKeys[key] = buckets[key].sortKey
		}
		sort.SliceStable(rows, func(i, j int) bool { return sortKeys[rows[i].Label] < sortKeys[rows[j].Label] })
	} else {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Revenue > rows[j].Revenue })
	}

	if len(rows) == 0 {
		return models.NoData("No data found for the requested breakdown.")
	}
	return &models.ResultSet{
		Kind:    models.ResultRows,
		Title:   fmt.Sprintf("%s-wise breakdown", displayDimension(groupBy)),
		GroupBy: groupBy,
		Metric:  "amount",
		Rows:    rows,
		Filters: labels,
	}
}

// Ranking returns the top/bottom N groups by a metric. Without a grouping
// dimension it ranks individual transactions by amount. Ties keep the
// original iteration order (stable sort).
func (s *ExecutorService) Ranking(records []models.SalesRecord, groupBy, metric string, limit int, desc bool, labels []string) *models.ResultSet {
	if limit <= 0 {
		limit = DefaultRankingCount
	}
	if metric == "" {
		metric = "amount"
	}

	direction := "Top"
	if !desc {
		direction = "Bottom"
	}

	if groupBy == "" {
		// Rank individual transactions by amount.
		rows := make([]models.ResultRow, 0, len(records))
		for _, r := range records {
			label := r.Customer
			if label == "" {
				label = r.MasterID
			}
			rows = append(rows, models.ResultRow{
				Label:     label,
				Revenue:   r.Amount,
				Quantity:  r.Quantity,
				Value:     r.Amount,
				ValueKind: "currency",
			})
		}
		sortRows(rows, desc)
		if len(rows) > limit {
			rows = rows[:limit]
		}
		return &models.ResultSet{
			Kind:    models.ResultRows,
			Title:   fmt.Sprintf("%s %d transactions", direction, limit),
			Metric:  "amount",
			Rows:    rows,
			Filters: labels,
		}
	}

	type bucket struct {
		revenue float64
		qty     float64
		orders  map[string]bool
		txns    int
	}
	buckets := make(map[string]*bucket)
	var order []string
	for _, r := range records {
		key := groupKeyFor(r, groupBy)
		if key == "" {
			continue
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{orders: make(map[string]bool)}
			buckets[key] = b
			order = append(order, key)
		}
		b.revenue += r.Amount
		b.qty += r.Quantity
		b.orders[r.MasterID] = true
		b.txns++
	}

	valueKind := metricValueKind(metric)
	rows := make([]models.ResultRow, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		var value float64
		switch metric {
		case "quantity":
			value = b.qty
		case "masterid":
			value = float64(len(b.orders))
		default:
			value = b.revenue
		}
		rows = append(rows, models.ResultRow{
			Label:        key,
			Revenue:      b.revenue,
			Quantity:     b.qty,
			Orders:       len(b.orders),
			Transactions: b.txns,
			Value:        value,
			ValueKind:    valueKind,
		})
	}
	sortRows(rows, desc)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return &models.ResultSet{
		Kind:    models.ResultRows,
		Title:   fmt.Sprintf("%s %d %ss", direction, limit, displayDimension(groupBy)),
		GroupBy: groupBy,
		Metric:  metric,
		Rows:    rows,
		Filters: labels,
	}
}

// Aggregate returns a single total for the requested metric.
func (s *ExecutorService) Aggregate(records []models.SalesRecord, metric string, labels []string) *models.ResultSet {
	scalar := &models.ScalarResult{}
	title := "Total revenue"
	switch metric {
	case "quantity":
		scalar.Value = sumQuantity(records)
		scalar.Kind = "quantity"
		scalar.Unit = "units"
		title = "Total quantity"
	case "masterid":
		scalar.Value = float64(distinctOrders(records))
		scalar.Kind = "count"
		scalar.Unit = "orders"
		title = "Total orders"
	case "customer":
		scalar.Value = float64(distinctCustomers(records))
		scalar.Kind = "count"
		scalar.Unit = "customers"
		title = "Unique customers"
	default:
		scalar.Value = sumAmount(records)
		scalar.Kind = "currency"
	}
	return &models.ResultSet{Kind: models.ResultScalar, Title: title, Metric: metric, Scalar: scalar, Filters: labels}
}

// Average returns the mean of the metric over the subset. The denominator
// is guarded even though callers already reject empty subsets.
func (s *ExecutorService) Average(records []models.SalesRecord, metric string, labels []string) *models.ResultSet {
	n := float64(len(records))
	var total float64
	kind := "currency"
	title := "Average transaction value"
	switch metric {
	case "quantity":
		total = sumQuantity(records)
		kind = "quantity"
		title = "Average quantity per transaction"
	default:
		total = sumAmount(records)
	}
	value, ok := safeDiv(total, n)
	if !ok {
		return models.NoData("No transactions available to average.")
	}
	return &models.ResultSet{
		Kind:    models.ResultScalar,
		Title:   title,
		Metric:  metric,
		Scalar:  &models.ScalarResult{Value: value, Kind: kind},
		Filters: labels,
	}
}

// Count returns a distinct count: orders by default, or distinct values of
// the grouping dimension when one is given.
func (s *ExecutorService) Count(records []models.SalesRecord, groupBy string, labels []string) *models.ResultSet {
	var value int
	title := "Order count"
	unit := "orders"
	switch groupBy {
	case GroupCustomer:
		value = distinctCustomers(records)
		title = "Customer count"
		unit = "customers"
	case GroupItem:
		value = distinctGroupValues(records, GroupItem)
		title = "Item count"
		unit = "items"
	case GroupCategory:
		value = distinctGroupValues(records, GroupCategory)
		title = "Category count"
		unit = "categories"
	case GroupRegion:
		value = distinctGroupValues(records, GroupRegion)
		title = "Region count"
		unit = "regions"
	default:
		value = distinctOrders(records)
	}
	return &models.ResultSet{
		Kind:    models.ResultScalar,
		Title:   title,
		GroupBy: groupBy,
		Scalar:  &models.ScalarResult{Value: float64(value), Kind: "count", Unit: unit},
		Filters: labels,
	}
}

// Comparison filters the subset to each period independently and reports
// revenue growth. A zero base total reports NoData for the growth branch
// instead of a non-finite percentage.
func (s *ExecutorService) Comparison(records []models.SalesRecord, a, b models.Period, labels []string) *models.ResultSet {
	subsetA := s.FilterByPeriod(records, a)
	subsetB := s.FilterByPeriod(records, b)
	if len(subsetA) == 0 && len(subsetB) == 0 {
		return models.NoData(fmt.Sprintf("No data found for %s or %s.", a.Label(), b.Label()))
	}

	totalA := sumAmount(subsetA)
	totalB := sumAmount(subsetB)
	growth, ok := safeDiv((totalB-totalA)*100, totalA)

	return &models.ResultSet{
		Kind:  models.ResultComparison,
		Title: fmt.Sprintf("%s vs %s", a.Label(), b.Label()),
		Comparison: &models.ComparisonResult{
			PeriodA:  a.Label(),
			PeriodB:  b.Label(),
			TotalA:   totalA,
			TotalB:   totalB,
			Growth:   growth,
			GrowthOK: ok,
		},
		Filters: labels,
	}
}

// SmartSummary is the default fallback shape: revenue, quantity, order and
// transaction counts with the applied filters echoed back.
func (s *ExecutorService) SmartSummary(records []models.SalesRecord, labels []string) *models.ResultSet {
	return &models.ResultSet{
		Kind:  models.ResultSummary,
		Title: "Sales summary",
		Summary: &models.SummaryResult{
			Revenue:      sumAmount(records),
			Quantity:     sumQuantity(records),
			Orders:       distinctOrders(records),
			Transactions: len(records),
			Customers:    distinctCustomers(records),
		},
		Filters: labels,
	}
}

// safeDiv divides with a guarded denominator. ok is false when den == 0.
func safeDiv(num, den float64) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

func filterRecords(records []models.SalesRecord, keep func(models.SalesRecord) bool) []models.SalesRecord {
	var out []models.SalesRecord
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func sortRows(rows []models.ResultRow, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].Value < rows[j].Value
	})
}

func groupKeyFor(r models.SalesRecord, groupBy string) string {
	switch groupBy {
	case GroupCustomer:
		return r.Customer
	case GroupItem:
		return r.Item
	case GroupCategory:
		return r.Category
	case GroupRegion:
		return r.Region
	case GroupCPDate:
		if r.TransactionDate.IsZero() {
			return ""
		}
		return r.TransactionDate.Format("2006-01-02")
	}
	return ""
}

func metricValueKind(metric string) string {
	switch metric {
	case "quantity":
		return "quantity"
	case "masterid":
		return "count"
	}
	return "currency"
}

func displayDimension(groupBy string) string {
	switch groupBy {
	case GroupMonth:
		return "Month"
	case GroupCustomer:
		return "Customer"
	case GroupItem:
		return "Item"
	case GroupCategory:
		return "Category"
	case GroupRegion:
		return "Region"
	case GroupCPDate:
		return "Date"
	}
	return "Value"
}

func sumAmount(records []models.SalesRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.Amount
	}
	return total
}

func sumQuantity(records []models.SalesRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.Quantity
	}
	return total
}

func distinctOrders(records []models.SalesRecord) int {
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r.MasterID != "" {
			seen[r.MasterID] = true
		}
	}
	return len(seen)
}

func distinctCustomers(records []models.SalesRecord) int {
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r.Customer != "" {
			seen[r.Customer] = true
		}
	}
	return len(seen)
}

func distinctGroupValues(records []models.SalesRecord, groupBy string) int {
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if key := groupKeyFor(r, groupBy); key != "" {
			seen[key] = true
		}
	}
	return len(seen)
}
