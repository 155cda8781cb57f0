package schema

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsight-io/chainsight/pkg/connector/core"
	"github.com/chainsight-io/chainsight/pkg/cserrors"
	"github.com/chainsight-io/chainsight/pkg/models"
)

func ordersTable(columns []string, rows ...map[string]interface{}) *core.Table {
	return &core.Table{
		Name:    "orders",
		Kind:    core.KindOrders,
		Columns: columns,
		Rows:    rows,
	}
}

func TestResolveAliases(t *testing.T) {
	table := ordersTable([]string{
		"Order ID", "Order Date", "Ship Date", "Category",
		"Quantity", "Quantity Delivered", "Sales", "Sub-Category",
	})

	index, err := OrdersMapping.Resolve(table)

	require.NoError(t, err)
	assert.Equal(t, "Order ID", index["order_id"])
	assert.Equal(t, "Quantity", index["qty_ordered"])
	assert.Equal(t, "Sub-Category", index["sub_category"])
	_, ok := index["profit"]
	assert.False(t, ok, "absent optional columns stay unresolved")
}

func TestResolveCanonicalNamesAlwaysMatch(t *testing.T) {
	// re-ingesting this system's own canonical headers must resolve too
	table := ordersTable([]string{"order_id", "order_date", "qty_ordered", "qty_delivered"})

	index, err := OrdersMapping.Resolve(table)

	require.NoError(t, err)
	assert.Len(t, index, 4)
}

func TestResolveFoldsCaseAndSeparators(t *testing.T) {
	table := ordersTable([]string{"ORDER-ID", "order date", "QUANTITY_ORDERED", "quantity delivered"})

	_, err := OrdersMapping.Resolve(table)

	assert.NoError(t, err)
}

func TestResolveReportsAllMissingColumns(t *testing.T) {
	table := ordersTable([]string{"Order ID", "Sales"})

	_, err := OrdersMapping.Resolve(table)

	require.Error(t, err)
	assert.True(t, cserrors.IsType(err, cserrors.ErrorTypeSchemaMismatch))

	var csErr *cserrors.Error
	require.ErrorAs(t, err, &csErr)
	missing, ok := csErr.Details["missing_columns"].([]string)
	require.True(t, ok)
	// one failure names every missing required column, not just the first
	assert.ElementsMatch(t, []string{"order_date", "qty_ordered", "qty_delivered"}, missing)
}

func TestFoldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Order ID", "orderid"},
		{"  Sub-Category ", "subcategory"},
		{"qty_ordered", "qtyordered"},
		{"PRICE", "price"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, foldName(tt.in))
	}
}

func TestCoerceDate(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want time.Time
	}{
		{"iso", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"us slash", "03/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"short slash", "3/5/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"day first dash", "15-03-2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "not a date", time.Time{}},
		{"nil", nil, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceDate(tt.in))
		})
	}
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want models.Float
	}{
		{"plain", "42", models.FloatOf(42)},
		{"decimal point", "3.5", models.FloatOf(3.5)},
		{"thousands separator", "1,234.5", models.FloatOf(1234.5)},
		{"currency prefix", "$19.99", models.FloatOf(19.99)},
		{"typed float", 7.25, models.FloatOf(7.25)},
		{"typed int", 7, models.FloatOf(7)},
		{"empty is missing", "", models.MissingFloat()},
		{"garbage is missing", "n/a", models.MissingFloat()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceFloat(tt.in))
		})
	}
}

func TestCoerceMoneyKeepsExactValue(t *testing.T) {
	got := coerceMoney("19.99")

	require.True(t, got.Valid)
	assert.True(t, got.Decimal.Equal(decimal.RequireFromString("19.99")))

	assert.False(t, coerceMoney("").Valid)
	assert.False(t, coerceMoney("free").Valid)
}

func TestCoerceBool(t *testing.T) {
	for _, s := range []string{"true", "TRUE", "yes", "y", "1", "t"} {
		assert.True(t, coerceBool(s), s)
	}
	for _, s := range []string{"false", "no", "0", "", "maybe"} {
		assert.False(t, coerceBool(s), s)
	}
	assert.True(t, coerceBool(true))
	assert.True(t, coerceBool(1))
}

func TestNormalizeOrders(t *testing.T) {
	table := ordersTable(
		[]string{"Order ID", "Order Date", "Ship Date", "Category", "Quantity Ordered", "Quantity Delivered", "Sales"},
		map[string]interface{}{
			"Order ID": "O-1", "Order Date": "2024-03-01", "Ship Date": "2024-03-04",
			"Category": "Furniture", "Quantity Ordered": "10", "Quantity Delivered": "8",
			"Sales": "120.50",
		},
	)

	records, err := NormalizeOrders(table)

	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "O-1", rec.OrderID)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rec.OrderDate)
	assert.Equal(t, "Furniture", rec.Category)
	assert.Equal(t, models.FloatOf(10), rec.QtyOrdered)
	assert.Equal(t, models.FloatOf(8), rec.QtyDelivered)
	require.True(t, rec.Sales.Valid)
	assert.True(t, rec.Sales.Decimal.Equal(decimal.RequireFromString("120.50")))
	assert.Empty(t, rec.Anomalies)
}

func TestNormalizeOrdersFlagsAnomalies(t *testing.T) {
	table := ordersTable(
		[]string{"Order ID", "Order Date", "Ship Date", "Quantity Ordered", "Quantity Delivered"},
		map[string]interface{}{
			"Order ID": "O-1", "Order Date": "bogus", "Ship Date": "2024-03-04",
			"Quantity Ordered": "5", "Quantity Delivered": "5",
		},
		map[string]interface{}{
			"Order ID": "O-2", "Order Date": "2024-03-10", "Ship Date": "2024-03-04",
			"Quantity Ordered": "5", "Quantity Delivered": "5",
		},
		map[string]interface{}{
			"Order ID": "O-3", "Order Date": "2024-03-01", "Ship Date": "2024-03-02",
			"Quantity Ordered": "5", "Quantity Delivered": "9",
		},
	)

	records, err := NormalizeOrders(table)

	require.NoError(t, err)
	require.Len(t, records, 3, "anomalous rows stay in the dataset")

	assert.True(t, records[0].HasAnomaly(models.AnomalyMissingOrderDate))
	assert.False(t, records[0].HasLeadTime())
	assert.True(t, records[1].HasAnomaly(models.AnomalyShipBeforeOrder))
	assert.True(t, records[2].HasAnomaly(models.AnomalyOverDelivered))
}

func TestNormalizeOrdersSkipsRowsWithoutID(t *testing.T) {
	table := ordersTable(
		[]string{"Order ID", "Order Date", "Quantity Ordered", "Quantity Delivered"},
		map[string]interface{}{"Order ID": "", "Order Date": "2024-03-01", "Quantity Ordered": "1", "Quantity Delivered": "1"},
		map[string]interface{}{"Order ID": "O-1", "Order Date": "2024-03-01", "Quantity Ordered": "1", "Quantity Delivered": "1"},
	)

	records, err := NormalizeOrders(table)

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestNormalizeOrdersDefaultsCategory(t *testing.T) {
	table := ordersTable(
		[]string{"Order ID", "Order Date", "Category", "Quantity Ordered", "Quantity Delivered"},
		map[string]interface{}{"Order ID": "O-1", "Order Date": "2024-03-01", "Category": "", "Quantity Ordered": "1", "Quantity Delivered": "1"},
	)

	records, err := NormalizeOrders(table)

	require.NoError(t, err)
	assert.Equal(t, CategoryUnknown, records[0].Category)
}

func TestNormalizeOrdersMissingQuantityIsSentinel(t *testing.T) {
	table := ordersTable(
		[]string{"Order ID", "Order Date", "Quantity Ordered", "Quantity Delivered"},
		map[string]interface{}{"Order ID": "O-1", "Order Date": "2024-03-01", "Quantity Ordered": "oops", "Quantity Delivered": "3"},
	)

	records, err := NormalizeOrders(table)

	require.NoError(t, err)
	assert.False(t, records[0].QtyOrdered.Valid, "unparsable quantity must not become zero")
	assert.True(t, records[0].QtyDelivered.Valid)
}

func TestNormalizeInventoryFlagsNegativeStock(t *testing.T) {
	table := &core.Table{
		Name:    "inventory",
		Kind:    core.KindInventory,
		Columns: []string{"Product ID", "Stock Level", "Reorder Point"},
		Rows: []map[string]interface{}{
			{"Product ID": "P-1", "Stock Level": "-4", "Reorder Point": "10"},
			{"Product ID": "P-2", "Stock Level": "25", "Reorder Point": "10"},
		},
	}

	records, err := NormalizeInventory(table)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Contains(t, records[0].Anomalies, models.AnomalyNegativeStock)
	assert.Empty(t, records[1].Anomalies)
}

func TestNormalizeCatalog(t *testing.T) {
	table := &core.Table{
		Name:    "catalog",
		Kind:    core.KindCatalog,
		Columns: []string{"id", "title", "category", "price"},
		Rows: []map[string]interface{}{
			{"id": "1", "title": "Desk Lamp", "category": "lighting", "price": "24.99"},
			{"id": "", "title": "dropped"},
		},
	}

	products, err := NormalizeCatalog(table)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Desk Lamp", products[0].Name)
	assert.Equal(t, "lighting", products[0].Category)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("24.99")))
}

func TestMergeCatalog(t *testing.T) {
	orders := []*models.OrderRecord{
		{OrderID: "O-1", ProductID: "P-1", Category: CategoryUnknown},
		{OrderID: "O-2", ProductID: "P-1", Category: "Furniture"},
		{OrderID: "O-3", ProductID: "P-404", Category: CategoryUnknown},
	}
	inventory := []*models.InventoryRecord{
		{ProductID: "P-1", Category: CategoryUnknown},
	}
	catalog := map[string]models.Product{
		"P-1": {ID: "P-1", Name: "Desk Lamp", Category: "Lighting", Price: decimal.RequireFromString("24.99")},
	}

	MergeCatalog(orders, inventory, catalog)

	assert.Equal(t, "Lighting", orders[0].Category, "unknown category filled from catalog")
	assert.Equal(t, "Furniture", orders[1].Category, "explicit category kept")
	assert.Equal(t, CategoryUnknown, orders[2].Category, "unmatched product keeps default")

	assert.Equal(t, "Desk Lamp", inventory[0].ProductName)
	assert.Equal(t, "Lighting", inventory[0].Category)
	require.True(t, inventory[0].Price.Valid)
	assert.True(t, inventory[0].Price.Decimal.Equal(decimal.RequireFromString("24.99")))
}
