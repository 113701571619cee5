package models

import "time"

// ChatRequest represents an incoming chat request
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// ChatResponse represents the response from the chat API
type ChatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
	SessionID string `json:"session_id,omitempty"`
	Source    string `json:"source"` // "rules" or "assistant"
	Model     string `json:"model,omitempty"`
}

// ChatHistoryEntry is one turn of a chat session
type ChatHistoryEntry struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Message   string    `json:"message"`
	Timestamp string    `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

// SalesRecord represents a single normalized sales transaction row.
// MasterID groups line items into one order; several records may share it.
type SalesRecord struct {
	Customer        string    `json:"customer"`
	Item            string    `json:"item"`
	Category        string    `json:"category"` // stock group
	Region          string    `json:"region"`
	Country         string    `json:"country,omitempty"`
	Amount          float64   `json:"amount"`
	Quantity        float64   `json:"quantity"`
	MasterID        string    `json:"master_id"`
	TransactionDate time.Time `json:"transaction_date"`
	IsSale          bool      `json:"is_sale"`
}

// Metrics holds dataset-level aggregates, computed once at ingestion.
type Metrics struct {
	TotalRevenue    float64 `json:"total_revenue"`
	TotalOrders     int     `json:"total_orders"` // distinct MasterID values
	TotalQuantity   float64 `json:"total_quantity"`
	UniqueCustomers int     `json:"unique_customers"`
	AvgOrderValue   float64 `json:"avg_order_value"`
}

// Vocabulary is the dynamic entity vocabulary derived from the dataset.
type Vocabulary struct {
	Customers  []string `json:"customers"`
	Items      []string `json:"items"`
	Categories []string `json:"categories"`
	Regions    []string `json:"regions"`

	NumericColumns []string `json:"numeric_columns"`
	TextColumns    []string `json:"text_columns"`
	DateColumns    []string `json:"date_columns"`
}

// IsEmpty reports whether the vocabulary was built from an empty dataset.
func (v Vocabulary) IsEmpty() bool {
	return len(v.Customers) == 0 && len(v.Items) == 0 &&
		len(v.Categories) == 0 && len(v.Regions) == 0
}

// Period is a calendar (month, year) pair used to filter records.
// Year 0 means "any year"; Month "" means "any month".
type Period struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
}

// Label returns a display label like "April 2024", "April" or "2024".
func (p Period) Label() string {
	switch {
	case p.Month != "" && p.Year != 0:
		return p.Month + " " + itoa(p.Year)
	case p.Month != "":
		return p.Month
	case p.Year != 0:
		return itoa(p.Year)
	}
	return ""
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// ConversationContext is the single-slot memory of one chat session.
// Zero values mean "unset". It is overwritten on success, never cleared.
type ConversationContext struct {
	LastTopic    string `json:"last_topic"`
	LastDataType string `json:"last_data_type"`
	LastCount    int    `json:"last_count"`
}

// Entities are the structured values extracted from one query.
type Entities struct {
	Customer   string   `json:"customer,omitempty"`
	Product    string   `json:"product,omitempty"`
	StockGroup string   `json:"stock_group,omitempty"`
	Region     string   `json:"region,omitempty"`
	Count      int      `json:"count,omitempty"`
	Metric     string   `json:"metric,omitempty"`
	Periods    []Period `json:"periods,omitempty"`
}

// Modifiers are boolean query qualifiers detected alongside the intent.
type Modifiers struct {
	MonthWise  bool `json:"month_wise,omitempty"`
	TopN       bool `json:"top_n,omitempty"`
	Bottom     bool `json:"bottom,omitempty"`
	Total      bool `json:"total,omitempty"`
	Average    bool `json:"average,omitempty"`
	Comparison bool `json:"comparison,omitempty"`
}

// QueryAnalysis is the ephemeral result of classifying one query.
type QueryAnalysis struct {
	Intent    string    `json:"intent"`
	Operation string    `json:"operation"`
	GroupBy   string    `json:"group_by,omitempty"`
	Entities  Entities  `json:"entities"`
	Modifiers Modifiers `json:"modifiers"`
}

// ResultRow is one row of a grouped or ranked result.
type ResultRow struct {
	Label        string  `json:"label"`
	Revenue      float64 `json:"revenue"`
	Quantity     float64 `json:"quantity"`
	Orders       int     `json:"orders"`
	Transactions int     `json:"transactions"`
	Value        float64 `json:"value"`      // the ranked/aggregated metric value
	ValueKind    string  `json:"value_kind"` // "currency", "quantity" or "count"
}

// ScalarResult is a single-number answer.
type ScalarResult struct {
	Value float64 `json:"value"`
	Kind  string  `json:"kind"` // "currency", "quantity" or "count"
	Unit  string  `json:"unit,omitempty"`
}

// ComparisonResult compares two period totals.
type ComparisonResult struct {
	PeriodA  string  `json:"period_a"`
	PeriodB  string  `json:"period_b"`
	TotalA   float64 `json:"total_a"`
	TotalB   float64 `json:"total_b"`
	Growth   float64 `json:"growth_percent"`
	GrowthOK bool    `json:"growth_ok"` // false when the base total is zero
}

// SummaryResult is the smart-summary fallback shape.
type SummaryResult struct {
	Revenue      float64 `json:"revenue"`
	Quantity     float64 `json:"quantity"`
	Orders       int     `json:"orders"`
	Transactions int     `json:"transactions"`
	Customers    int     `json:"customers"`
}

// Result set kinds produced by the executor.
const (
	ResultScalar     = "scalar"
	ResultRows       = "rows"
	ResultComparison = "comparison"
	ResultSummary    = "summary"
	ResultNoData     = "nodata"
)

// ResultSet is the executor's output, consumed by the formatter.
// Exactly one of Scalar/Rows/Comparison/Summary is populated per Kind,
// except NoData which carries only Message.
type ResultSet struct {
	Kind       string            `json:"kind"`
	Title      string            `json:"title,omitempty"`
	GroupBy    string            `json:"group_by,omitempty"`
	Metric     string            `json:"metric,omitempty"`
	Scalar     *ScalarResult     `json:"scalar,omitempty"`
	Rows       []ResultRow       `json:"rows,omitempty"`
	Comparison *ComparisonResult `json:"comparison,omitempty"`
	Summary    *SummaryResult    `json:"summary,omitempty"`
	Filters    []string          `json:"filters,omitempty"` // applied-filter labels
	Message    string            `json:"message,omitempty"` // NoData text
}

// NoData builds a NoData result with a user-facing message.
func NoData(message string) *ResultSet {
	return &ResultSet{Kind: ResultNoData, Message: message}
}

// DatasetSummary describes the currently loaded dataset.
type DatasetSummary struct {
	Rows     int        `json:"rows"`
	FileName string     `json:"file_name,omitempty"`
	LoadedAt string     `json:"loaded_at,omitempty"`
	Metrics  Metrics    `json:"metrics"`
	Columns  Vocabulary `json:"columns"`
	Currency string     `json:"currency"`
}
