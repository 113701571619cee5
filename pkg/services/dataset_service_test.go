package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRowsWithSynonymHeaders(t *testing.T) {
	ds := NewDatasetService("₹")

	rows := [][]string{
		{"Party Name", "Stock Item", "Stock Group", "State", "Nett Amount", "Qty", "Voucher No", "Invoice Date"},
		{"Acme Corp", "Widget", "Tools", "Karnataka", "1,200.50", "2", "V-1", "2024-04-01"},
		{"Globex", "Gadget", "Tools", "Kerala", "800", "1", "V-2", "2024-05-01"},
	}
	n, err := ds.LoadRows("sales.csv", rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records := ds.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Acme Corp", records[0].Customer)
	assert.Equal(t, "Widget", records[0].Item)
	assert.Equal(t, "Karnataka", records[0].Region)
	assert.InDelta(t, 1200.50, records[0].Amount, 0.001)
	assert.Equal(t, "V-1", records[0].MasterID)
	assert.Equal(t, 2024, records[0].TransactionDate.Year())
}

func TestLoadRowsRequiresAmountColumn(t *testing.T) {
	ds := NewDatasetService("₹")

	_, err := ds.LoadRows("bad.csv", [][]string{
		{"Customer", "Quantity"},
		{"Acme", "2"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount column")
}

func TestLoadRowsRequiresDataRow(t *testing.T) {
	ds := NewDatasetService("₹")
	_, err := ds.LoadRows("empty.csv", [][]string{{"Amount"}})
	assert.Error(t, err)
}

func TestLoadRowsDefaultsMasterID(t *testing.T) {
	ds := NewDatasetService("₹")

	_, err := ds.LoadRows("noid.csv", [][]string{
		{"Customer", "Amount"},
		{"Acme", "100"},
		{"Globex", "200"},
	})
	require.NoError(t, err)
	records := ds.Records()
	assert.Equal(t, "1", records[0].MasterID, "row number stands in for a missing order id")
	assert.Equal(t, "2", records[1].MasterID)
	assert.Equal(t, 2, ds.Metrics().TotalOrders)
}

func TestLoadFileCSV(t *testing.T) {
	ds := NewDatasetService("₹")

	csvBody := "Customer,Amount,Quantity\nAcme,100,2\nGlobex,200,1\n"
	n, err := ds.LoadFile("upload.csv", strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 300.0, ds.Metrics().TotalRevenue, 0.001)
}

func TestLoadFileRejectsUnknownExtension(t *testing.T) {
	ds := NewDatasetService("₹")
	_, err := ds.LoadFile("upload.pdf", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestMetricsGuardedAverage(t *testing.T) {
	m := computeMetrics(nil)
	assert.Zero(t, m.AvgOrderValue)
	assert.Zero(t, m.TotalOrders)
}

func TestCurrencyMajorityVote(t *testing.T) {
	ds := NewDatasetService("₹")

	_, err := ds.LoadRows("mixed.csv", [][]string{
		{"Customer", "Amount", "Country"},
		{"A", "1", "USA"},
		{"B", "1", "USA"},
		{"C", "1", "India"},
	})
	require.NoError(t, err)
	assert.Equal(t, "$", ds.Currency())
}

func TestCurrencyFallbackWhenUndetectable(t *testing.T) {
	ds := NewDatasetService("₹")

	_, err := ds.LoadRows("nocountry.csv", [][]string{
		{"Customer", "Amount"},
		{"A", "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "₹", ds.Currency())
}

func TestClearResetsState(t *testing.T) {
	ds := NewDatasetService("₹")

	_, err := ds.LoadRows("mixed.csv", [][]string{
		{"Customer", "Amount", "Country"},
		{"A", "1", "USA"},
	})
	require.NoError(t, err)

	ds.Clear()
	assert.Empty(t, ds.Records())
	assert.Zero(t, ds.Metrics().TotalRevenue)
	assert.Equal(t, "₹", ds.Currency())

	summary := ds.Summary(NewVocabularyService().Extract(ds.Records()))
	assert.Zero(t, summary.Rows)
	assert.Empty(t, summary.LoadedAt)
}

func TestParseHelpers(t *testing.T) {
	assert.InDelta(t, 1234567.89, parseNumber("₹12,34,567.89"), 0.001)
	assert.InDelta(t, 0.0, parseNumber("n/a"), 0.001)

	assert.Equal(t, 2024, parseDate("15/04/2024").Year())
	assert.True(t, parseDate("not a date").IsZero())

	assert.True(t, parseBoolish("Sales"))
	assert.False(t, parseBoolish("credit note"))
}
