// Package schema maps each adapter's raw tables into the unified record
// model. Field mapping is declarative: every canonical field enumerates the
// raw column names it accepts, whether it is required, and the default used
// when a cell is absent. The mapping is checked once per table before any
// row is converted, so a source missing required columns fails with a
// single error listing every missing column.
package schema

import (
	"strings"

	"github.com/chainsight-io/chainsight/pkg/connector/core"
	"github.com/chainsight-io/chainsight/pkg/cserrors"
)

// FieldType selects the coercion applied to a raw value.
type FieldType int

const (
	// FieldString passes the value through with whitespace trimmed.
	FieldString FieldType = iota
	// FieldDate parses calendar dates from the accepted layouts.
	FieldDate
	// FieldNumber coerces to float64, missing sentinel on failure.
	FieldNumber
	// FieldMoney coerces to an exact decimal, null on failure.
	FieldMoney
	// FieldBool coerces common boolean spellings.
	FieldBool
)

// Field declares one canonical field of a mapping.
type Field struct {
	// Canonical is the unified-model field name
	Canonical string
	// Aliases are raw column names accepted for this field, matched after
	// case and separator folding. The canonical name always matches.
	Aliases []string
	// Type selects the coercion
	Type FieldType
	// Required marks fields every downstream KPI depends on. A table
	// missing any required field is rejected as a whole.
	Required bool
	// Default fills absent string fields (coerced fields default to the
	// missing sentinel, never a silent zero)
	Default string
}

// Mapping is the declarative raw-to-canonical table for one source kind.
type Mapping struct {
	Name   string
	Kind   core.SourceKind
	Fields []Field
}

// OrdersMapping maps order-history tables. Aliases cover the Global
// Superstore header style and this system's own export headers.
var OrdersMapping = Mapping{
	Name: "orders",
	Kind: core.KindOrders,
	Fields: []Field{
		{Canonical: "order_id", Aliases: []string{"Order ID"}, Type: FieldString, Required: true},
		{Canonical: "order_date", Aliases: []string{"Order Date"}, Type: FieldDate, Required: true},
		{Canonical: "ship_date", Aliases: []string{"Ship Date"}, Type: FieldDate},
		{Canonical: "customer_id", Aliases: []string{"Customer ID"}, Type: FieldString},
		{Canonical: "product_id", Aliases: []string{"Product ID"}, Type: FieldString},
		{Canonical: "category", Aliases: []string{"Category"}, Type: FieldString, Default: CategoryUnknown},
		{Canonical: "sub_category", Aliases: []string{"Sub-Category", "Sub Category"}, Type: FieldString},
		{Canonical: "qty_ordered", Aliases: []string{"Quantity Ordered", "Quantity"}, Type: FieldNumber, Required: true},
		{Canonical: "qty_delivered", Aliases: []string{"Quantity Delivered"}, Type: FieldNumber, Required: true},
		{Canonical: "sales", Aliases: []string{"Sales", "Sales Amount"}, Type: FieldMoney},
		{Canonical: "profit", Aliases: []string{"Profit"}, Type: FieldMoney},
	},
}

// InventoryMapping maps inventory snapshot tables, both the synthetic
// generator's output and re-ingested exports.
var InventoryMapping = Mapping{
	Name: "inventory",
	Kind: core.KindInventory,
	Fields: []Field{
		{Canonical: "product_id", Aliases: []string{"Product ID"}, Type: FieldString, Required: true},
		{Canonical: "product_name", Aliases: []string{"Product Name"}, Type: FieldString},
		{Canonical: "category", Aliases: []string{"Category"}, Type: FieldString, Default: CategoryUnknown},
		{Canonical: "observed_at", Aliases: []string{"Observed At", "Snapshot Date"}, Type: FieldDate},
		{Canonical: "stock_level", Aliases: []string{"Stock Level", "Inventory", "Inventory Level"}, Type: FieldNumber, Required: true},
		{Canonical: "reorder_point", Aliases: []string{"Reorder Point", "Reorder Level"}, Type: FieldNumber, Required: true},
		{Canonical: "daily_demand", Aliases: []string{"Daily Demand"}, Type: FieldNumber},
		{Canonical: "fill_rate", Aliases: []string{"Fill Rate"}, Type: FieldNumber},
		{Canonical: "annualized_turnover", Aliases: []string{"Annualized Turnover", "Inventory Turnover"}, Type: FieldNumber},
		{Canonical: "stockout_risk", Aliases: []string{"Stockout Risk"}, Type: FieldBool},
		{Canonical: "price", Aliases: []string{"Price"}, Type: FieldMoney},
	},
}

// CatalogMapping maps remote product-catalog tables.
var CatalogMapping = Mapping{
	Name: "catalog",
	Kind: core.KindCatalog,
	Fields: []Field{
		{Canonical: "id", Aliases: []string{"Product ID"}, Type: FieldString, Required: true},
		{Canonical: "name", Aliases: []string{"title", "Product Name"}, Type: FieldString},
		{Canonical: "category", Aliases: []string{"Category"}, Type: FieldString, Default: CategoryUnknown},
		{Canonical: "price", Aliases: []string{"Price"}, Type: FieldMoney},
	},
}

// CategoryUnknown is the default category for records the catalog cannot
// resolve.
const CategoryUnknown = "Unknown"

// columnIndex resolves a mapping against the columns actually present in a
// table: canonical name to raw column name.
type columnIndex map[string]string

// Resolve matches the mapping's fields against the table's columns. It
// returns the resolved index, or a SchemaMismatch listing every missing
// required column at once.
func (m Mapping) Resolve(table *core.Table) (columnIndex, error) {
	folded := make(map[string]string, len(table.Columns))
	for _, col := range table.Columns {
		folded[foldName(col)] = col
	}

	index := make(columnIndex, len(m.Fields))
	var missing []string
	for _, f := range m.Fields {
		raw, ok := folded[foldName(f.Canonical)]
		if !ok {
			for _, alias := range f.Aliases {
				if raw, ok = folded[foldName(alias)]; ok {
					break
				}
			}
		}
		if ok {
			index[f.Canonical] = raw
		} else if f.Required {
			missing = append(missing, f.Canonical)
		}
	}

	if len(missing) > 0 {
		return nil, cserrors.Newf(cserrors.ErrorTypeSchemaMismatch,
			"%s table %q is missing required columns", m.Name, table.Name).
			WithDetail("missing_columns", missing).
			WithDetail("present_columns", table.Columns)
	}
	return index, nil
}

// foldName normalizes a column name for matching: lowercase with spaces,
// underscores, and hyphens removed.
func foldName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case ' ', '_', '-':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
