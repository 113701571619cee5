package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"sales-chat-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

// DatasetService owns the in-memory sales dataset. Records are normalized
// once at ingestion; queries treat the stored slice as read-only.
type DatasetService struct {
	mu               sync.RWMutex
	records          []models.SalesRecord
	metrics          models.Metrics
	fileName         string
	loadedAt         time.Time
	currency         string
	fallbackCurrency string
}

// NewDatasetService creates a dataset service with the configured fallback
// currency symbol.
func NewDatasetService(fallbackCurrency string) *DatasetService {
	return &DatasetService{fallbackCurrency: fallbackCurrency, currency: fallbackCurrency}
}

// Column header synonyms, checked in order.
var (
	customerCols = []string{"customer", "customer name", "party", "party name", "client"}
	itemCols     = []string{"item", "item name", "product", "product name", "stock item"}
	categoryCols = []string{"category", "stock group", "stockgroup", "group"}
	regionCols   = []string{"region", "state", "zone", "area", "location"}
	countryCols  = []string{"country"}
	amountCols   = []string{"amount", "nett amount", "net amount", "sales amount", "value", "total"}
	qtyCols      = []string{"quantity", "qty", "units"}
	masterCols   = []string{"masterid", "master id", "voucher no", "invoice no", "order id", "bill no"}
	dateCols     = []string{"date", "transaction date", "cp_date", "cp date", "invoice date"}
	isSaleCols   = []string{"issales", "is sale", "issale", "voucher type"}
)

var dateLayouts = []string{
	"2006-01-02", "2006/01/02", "02-01-2006", "02/01/2006",
	"2-Jan-2006", "02-Jan-2006", "2-Jan-06", "1/2/06", "01-02-06",
	"2006-01-02 15:04:05",
}

// LoadFile parses a CSV or XLSX upload and replaces the current dataset.
// Returns the number of rows ingested.
func (s *DatasetService) LoadFile(fileName string, r io.Reader) (int, error) {
	var rows [][]string
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		f, err := excelize.OpenReader(r)
		if err != nil {
			return 0, fmt.Errorf("failed to open xlsx file: %w", err)
		}
		defer f.Close()
		rows, err = f.GetRows(f.GetSheetName(0))
		if err != nil {
			return 0, fmt.Errorf("failed to read xlsx rows: %w", err)
		}
	case strings.HasSuffix(lower, ".csv"):
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		var err error
		rows, err = reader.ReadAll()
		if err != nil {
			return 0, fmt.Errorf("failed to parse csv: %w", err)
		}
	default:
		return 0, fmt.Errorf("unsupported file type: %s (use .csv or .xlsx)", fileName)
	}
	return s.LoadRows(fileName, rows)
}

// LoadRows normalizes raw header+data rows into SalesRecords.
func (s *DatasetService) LoadRows(fileName string, rows [][]string) (int, error) {
	if len(rows) < 2 {
		return 0, fmt.Errorf("file needs a header row and at least one data row")
	}
	header := rows[0]

	customerIdx := findColumn(header, customerCols...)
	itemIdx := findColumn(header, itemCols...)
	categoryIdx := findColumn(header, categoryCols...)
	regionIdx := findColumn(header, regionCols...)
	countryIdx := findColumn(header, countryCols...)
	amountIdx := findColumn(header, amountCols...)
	qtyIdx := findColumn(header, qtyCols...)
	masterIdx := findColumn(header, masterCols...)
	dateIdx := findColumn(header, dateCols...)
	isSaleIdx := findColumn(header, isSaleCols...)

	if amountIdx == -1 {
		return 0, fmt.Errorf("required amount column not found; header: %v", header)
	}

	records := make([]models.SalesRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec := models.SalesRecord{
			Customer: cell(row, customerIdx),
			Item:     cell(row, itemIdx),
			Category: cell(row, categoryIdx),
			Region:   cell(row, regionIdx),
			Country:  cell(row, countryIdx),
			MasterID: cell(row, masterIdx),
			IsSale:   true,
		}
		rec.Amount = parseNumber(cell(row, amountIdx))
		rec.Quantity = parseNumber(cell(row, qtyIdx))
		if rec.MasterID == "" {
			// No order identifier: each row is its own order.
			rec.MasterID = strconv.Itoa(i + 1)
		}
		if d := cell(row, dateIdx); d != "" {
			rec.TransactionDate = parseDate(d)
		}
		if v := cell(row, isSaleIdx); v != "" {
			rec.IsSale = parseBoolish(v)
		}
		records = append(records, rec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.fileName = fileName
	s.loadedAt = time.Now()
	s.metrics = computeMetrics(records)
	s.currency = detectCurrency(records, s.fallbackCurrency)
	log.Printf("dataset loaded: %s (%d rows, currency %s)", fileName, len(records), s.currency)
	return len(records), nil
}

// Records returns the current dataset. Callers must not mutate it.
func (s *DatasetService) Records() []models.SalesRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Metrics returns the dataset-level aggregates computed at ingestion.
func (s *DatasetService) Metrics() models.Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// Currency returns the detected currency symbol.
func (s *DatasetService) Currency() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// Summary describes the loaded dataset for the dashboard.
func (s *DatasetService) Summary(vocab models.Vocabulary) models.DatasetSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary := models.DatasetSummary{
		Rows:     len(s.records),
		FileName: s.fileName,
		Metrics:  s.metrics,
		Columns:  vocab,
		Currency: s.currency,
	}
	if !s.loadedAt.IsZero() {
		summary.LoadedAt = s.loadedAt.Format(time.RFC3339)
	}
	return summary
}

// Clear drops the dataset.
func (s *DatasetService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.metrics = models.Metrics{}
	s.fileName = ""
	s.loadedAt = time.Time{}
	s.currency = s.fallbackCurrency
}

// computeMetrics derives the dataset-level aggregates once. AvgOrderValue
// uses a guarded denominator so an orderless dataset yields 0, not NaN.
func computeMetrics(records []models.SalesRecord) models.Metrics {
	m := models.Metrics{
		TotalRevenue:    sumAmount(records),
		TotalOrders:     distinctOrders(records),
		TotalQuantity:   sumQuantity(records),
		UniqueCustomers: distinctCustomers(records),
	}
	if avg, ok := safeDiv(m.TotalRevenue, float64(m.TotalOrders)); ok {
		m.AvgOrderValue = avg
	}
	return m
}

// countryCurrency maps country names to display symbols for the
// majority-vote currency detection.
var countryCurrency = map[string]string{
	"india":          "₹",
	"usa":            "$",
	"us":             "$",
	"united states":  "$",
	"uk":             "£",
	"united kingdom": "£",
	"germany":        "€",
	"france":         "€",
	"spain":          "€",
	"italy":          "€",
	"japan":          "¥",
	"uae":            "د.إ",
}

// detectCurrency majority-votes the country field over a sample of up to
// 50 records, falling back to the configured symbol when undetectable.
func detectCurrency(records []models.SalesRecord, fallback string) string {
	votes := make(map[string]int)
	sample := records
	if len(sample) > 50 {
		sample = sample[:50]
	}
	for _, r := range sample {
		if sym, ok := countryCurrency[strings.ToLower(strings.TrimSpace(r.Country))]; ok {
			votes[sym]++
		}
	}
	best, bestCount := fallback, 0
	for sym, n := range votes {
		if n > bestCount {
			best, bestCount = sym, n
		}
	}
	return best
}

// findColumn finds the index of the first matching candidate header.
func findColumn(header []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), candidate) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNumber(s string) float64 {
	if s == "" {
		return 0
	}
	s = strings.NewReplacer(",", "", "₹", "", "$", "", "£", "", "€", "", "¥", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseBoolish(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "sale", "sales":
		return true
	}
	return false
}
