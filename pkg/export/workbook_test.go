package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/chainsight-io/chainsight/pkg/kpi"
	"github.com/chainsight-io/chainsight/pkg/models"
	"github.com/chainsight-io/chainsight/pkg/testutil"
)

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	summary := Summary{
		GeneratedAt: testutil.Date(2024, 6, 1),
		RunID:       "run-1",
		Orders:      2,
		Inventory:   1,
		KPIs: kpi.Set{
			TotalOrders: 2,
			LeadTime:    kpi.LeadTimeStats{Mean: 3, Median: 3, Samples: 2},
			FillRatePct: 80,
		},
	}
	inventory := []*models.InventoryRecord{
		testutil.Snapshot("P-1", "Furniture", testutil.Date(2024, 3, 10), 25, 40),
	}

	require.NoError(t, WriteWorkbook(path, summary, fixtureOrders(), inventory))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetSummary, SheetOrders, SheetInventory}, f.GetSheetList())

	runID, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)

	rows, err := f.GetRows(SheetOrders)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two orders")
	assert.Equal(t, OrderColumns, rows[0])
	assert.Equal(t, "O-1", rows[1][0])

	invRows, err := f.GetRows(SheetInventory)
	require.NoError(t, err)
	require.Len(t, invRows, 2)
	assert.Equal(t, "P-1", invRows[1][0])
}
