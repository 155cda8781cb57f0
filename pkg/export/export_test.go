package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsight-io/chainsight/pkg/connector/core"
	"github.com/chainsight-io/chainsight/pkg/kpi"
	"github.com/chainsight-io/chainsight/pkg/models"
	"github.com/chainsight-io/chainsight/pkg/schema"
	"github.com/chainsight-io/chainsight/pkg/testutil"
)

func fixtureOrders() []*models.OrderRecord {
	complete := testutil.Order("O-1", testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 4), "Furniture", 10, 8)
	complete.CustomerID = "C-7"
	complete.SubCategory = "Chairs"
	complete.Sales = decimal.NewNullDecimal(decimal.RequireFromString("120.50"))

	// a record with missing ship date and an unparsable quantity
	damaged := testutil.Order("O-2", testutil.Date(2024, 3, 2), time.Time{}, "Office", 5, 5)
	damaged.QtyDelivered = models.MissingFloat()
	damaged.Anomalies = []models.Anomaly{models.AnomalyMissingShipDate}

	return []*models.OrderRecord{complete, damaged}
}

func TestWriteOrdersCSV(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteOrdersCSV(&buf, fixtureOrders(), ','))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(OrderColumns, ","), lines[0])
	assert.Contains(t, lines[1], "O-1,2024-03-01,2024-03-04,C-7")
	assert.Contains(t, lines[1], "120.5")
	// missing values stay empty, never zero
	assert.Contains(t, lines[2], "O-2,2024-03-02,,")
}

func TestWriteOrdersCSVCustomDelimiter(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteOrdersCSV(&buf, fixtureOrders(), ';'))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, strings.Join(OrderColumns, ";"), header)
}

// An exported snapshot must re-normalize into the same record set,
// including the anomaly flags on damaged rows.
func TestOrdersSnapshotRoundTrip(t *testing.T) {
	orders := fixtureOrders()

	var buf bytes.Buffer
	require.NoError(t, WriteOrdersCSV(&buf, orders, ','))

	again, err := schema.NormalizeOrders(csvToTable(t, buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, again, len(orders))

	for i, want := range orders {
		got := again[i]
		assert.Equal(t, want.OrderID, got.OrderID)
		assert.Equal(t, want.OrderDate, got.OrderDate)
		assert.Equal(t, want.ShipDate, got.ShipDate)
		assert.Equal(t, want.Category, got.Category)
		assert.Equal(t, want.QtyOrdered, got.QtyOrdered)
		assert.Equal(t, want.QtyDelivered, got.QtyDelivered)
		assert.Equal(t, want.Anomalies, got.Anomalies)
		if want.Sales.Valid {
			require.True(t, got.Sales.Valid)
			assert.True(t, want.Sales.Decimal.Equal(got.Sales.Decimal))
		} else {
			assert.False(t, got.Sales.Valid)
		}
	}
}

func TestInventorySnapshotRoundTrip(t *testing.T) {
	snap := testutil.Snapshot("P-1", "Furniture", testutil.Date(2024, 3, 10), 25, 40)
	snap.ProductName = "Desk Lamp"
	snap.DailyDemand = models.FloatOf(3)
	snap.FillRate = models.FloatOf(0.91)
	snap.StockoutRisk = true
	snap.Price = decimal.NewNullDecimal(decimal.RequireFromString("24.99"))

	var buf bytes.Buffer
	require.NoError(t, WriteInventoryCSV(&buf, []*models.InventoryRecord{snap}, ','))

	again, err := schema.NormalizeInventory(csvToTable(t, buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, again, 1)

	got := again[0]
	assert.Equal(t, snap.ProductID, got.ProductID)
	assert.Equal(t, snap.ProductName, got.ProductName)
	assert.Equal(t, snap.ObservedAt, got.ObservedAt)
	assert.Equal(t, snap.StockLevel, got.StockLevel)
	assert.Equal(t, snap.ReorderPoint, got.ReorderPoint)
	assert.Equal(t, snap.FillRate, got.FillRate)
	assert.True(t, got.StockoutRisk)
	require.True(t, got.Price.Valid)
	assert.True(t, snap.Price.Decimal.Equal(got.Price.Decimal))
	assert.True(t, got.AtRisk())
}

func TestWriteSummaryJSON(t *testing.T) {
	var buf bytes.Buffer
	summary := Summary{
		GeneratedAt: testutil.Date(2024, 6, 1),
		RunID:       "run-1",
		Orders:      12,
		Inventory:   4,
		KPIs:        kpi.Set{TotalOrders: 12, FillRatePct: 87.5},
	}

	require.NoError(t, WriteSummaryJSON(&buf, summary))

	var decoded Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, 12, decoded.KPIs.TotalOrders)
	assert.InDelta(t, 87.5, decoded.KPIs.FillRatePct, 1e-9)
}

// csvToTable parses an exported snapshot back into a raw table the way the
// tabular adapter reads delimited files.
func csvToTable(t *testing.T, data []byte) *core.Table {
	t.Helper()

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)

	table := &core.Table{Name: "snapshot", Columns: records[0]}
	for _, cells := range records[1:] {
		row := make(map[string]interface{}, len(table.Columns))
		for i, col := range table.Columns {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
