package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsight-io/chainsight/pkg/connector/core"
	"github.com/chainsight-io/chainsight/pkg/models"
	"github.com/chainsight-io/chainsight/pkg/schema"
	"github.com/chainsight-io/chainsight/pkg/testutil"
)

func fixtureProducts() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Desk Lamp", Category: "lighting", Price: decimal.RequireFromString("24.99")},
		{ID: "2", Name: "Monitor Stand", Category: "office", Price: decimal.RequireFromString("35")},
		{ID: "3", Name: "Cable Tray", Category: "office", Price: decimal.RequireFromString("12.50")},
	}
}

func extract(t *testing.T, g *Generator) *core.Table {
	t.Helper()

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	payload, err := g.Extract(ctx)
	require.NoError(t, err)
	table := payload.Tables[TableName]
	require.NotNil(t, table)
	return table
}

func TestExtractOneRowPerProduct(t *testing.T) {
	products := fixtureProducts()
	g := NewGenerator(testutil.TestConfig(), products)

	table := extract(t, g)

	require.Len(t, table.Rows, len(products))
	for i, p := range products {
		assert.Equal(t, p.ID, table.Rows[i]["product_id"])
		assert.Equal(t, p.Name, table.Rows[i]["product_name"])
	}
}

func TestExtractRespectsBounds(t *testing.T) {
	cfg := testutil.TestConfig()
	g := NewGenerator(cfg, fixtureProducts())

	table := extract(t, g)

	for _, row := range table.Rows {
		stock := row["stock_level"].(int)
		assert.GreaterOrEqual(t, stock, cfg.Inventory.StockMin)
		assert.LessOrEqual(t, stock, cfg.Inventory.StockMax)

		reorder := row["reorder_point"].(int)
		assert.GreaterOrEqual(t, reorder, cfg.Inventory.ReorderMin)
		assert.LessOrEqual(t, reorder, cfg.Inventory.ReorderMax)

		demand := row["daily_demand"].(int)
		assert.GreaterOrEqual(t, demand, cfg.Inventory.DemandMin)
		assert.LessOrEqual(t, demand, cfg.Inventory.DemandMax)

		fillRate := row["fill_rate"].(float64)
		assert.GreaterOrEqual(t, fillRate, 0.85)
		assert.LessOrEqual(t, fillRate, 1.0)
	}
}

func TestExtractDeterministicWithSeed(t *testing.T) {
	cfg := testutil.TestConfig()
	first := extract(t, NewGenerator(cfg, fixtureProducts()))
	second := extract(t, NewGenerator(cfg, fixtureProducts()))

	assert.Equal(t, first.Rows, second.Rows)
}

func TestExtractDegenerateRangeCollapsesToMin(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.Inventory.StockMin = 10
	cfg.Inventory.StockMax = 10

	table := extract(t, NewGenerator(cfg, fixtureProducts()))

	for _, row := range table.Rows {
		assert.Equal(t, 10, row["stock_level"])
	}
}

func TestExtractFeedsNormalizer(t *testing.T) {
	table := extract(t, NewGenerator(testutil.TestConfig(), fixtureProducts()))

	records, err := schema.NormalizeInventory(table)
	require.NoError(t, err)
	require.Len(t, records, 3)

	rec := records[0]
	assert.Equal(t, "1", rec.ProductID)
	assert.True(t, rec.StockLevel.Valid)
	assert.True(t, rec.ReorderPoint.Valid)
	assert.False(t, rec.ObservedAt.IsZero())
	require.True(t, rec.Price.Valid)
	assert.True(t, rec.Price.Decimal.Equal(decimal.RequireFromString("24.99")))
}
