// Package models defines the unified record model every source adapter
// normalizes into: order records, inventory snapshots, catalog products,
// and the dataset that owns them.
//
// Records are built once per pipeline run and are immutable afterwards.
// Derived views (filtered sets, KPI inputs) borrow record pointers; they
// never copy or mutate the originals.
package models

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Float is a float64 with presence. Numeric columns that fail to parse are
// carried as invalid Floats rather than silent zeros so that downstream
// aggregation can exclude them.
type Float struct {
	Value float64
	Valid bool
}

// MarshalJSON renders a missing Float as null and a present one as a bare
// number.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON accepts null or a number.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FloatOf(v)
	return nil
}

// FloatOf returns a valid Float holding v.
func FloatOf(v float64) Float {
	return Float{Value: v, Valid: true}
}

// MissingFloat returns the sentinel for a value that was absent or
// unparsable in the source.
func MissingFloat() Float {
	return Float{}
}

// Or returns the held value, or fallback when the Float is missing.
func (f Float) Or(fallback float64) float64 {
	if !f.Valid {
		return fallback
	}
	return f.Value
}

// Anomaly identifies a data-quality problem observed on a record. Anomalies
// are informational: the record stays in the dataset and the value involved
// is excluded from the statistic it would corrupt.
type Anomaly string

const (
	// AnomalyMissingOrderDate marks an order with no parsable order date.
	AnomalyMissingOrderDate Anomaly = "missing_order_date"
	// AnomalyMissingShipDate marks an order with no parsable ship date.
	AnomalyMissingShipDate Anomaly = "missing_ship_date"
	// AnomalyShipBeforeOrder marks an order shipped before it was placed.
	AnomalyShipBeforeOrder Anomaly = "ship_before_order"
	// AnomalyOverDelivered marks an order with delivered > ordered quantity.
	AnomalyOverDelivered Anomaly = "over_delivered"
	// AnomalyNegativeStock marks an inventory row with stock below zero.
	AnomalyNegativeStock Anomaly = "negative_stock"
)

// OrderRecord is the canonical order shape.
type OrderRecord struct {
	OrderID      string              `json:"order_id"`
	OrderDate    time.Time           `json:"order_date"` // zero when missing
	ShipDate     time.Time           `json:"ship_date"`  // zero when missing
	CustomerID   string              `json:"customer_id"`
	ProductID    string              `json:"product_id"`
	Category     string              `json:"category"`
	SubCategory  string              `json:"sub_category"`
	QtyOrdered   Float               `json:"qty_ordered"`
	QtyDelivered Float               `json:"qty_delivered"`
	Sales        decimal.NullDecimal `json:"sales"`
	Profit       decimal.NullDecimal `json:"profit"`
	Anomalies    []Anomaly           `json:"anomalies,omitempty"`
}

// HasLeadTime reports whether both dates needed for a lead-time sample are
// present.
func (o *OrderRecord) HasLeadTime() bool {
	return !o.OrderDate.IsZero() && !o.ShipDate.IsZero()
}

// LeadTimeDays returns the elapsed days between order and ship date. The
// result is only meaningful when HasLeadTime is true.
func (o *OrderRecord) LeadTimeDays() float64 {
	return o.ShipDate.Sub(o.OrderDate).Hours() / 24
}

// HasAnomaly reports whether the record carries the given anomaly flag.
func (o *OrderRecord) HasAnomaly(a Anomaly) bool {
	for _, got := range o.Anomalies {
		if got == a {
			return true
		}
	}
	return false
}

// InventoryRecord is the canonical inventory snapshot shape.
type InventoryRecord struct {
	ProductID      string              `json:"product_id"`
	ProductName    string              `json:"product_name"`
	Category       string              `json:"category"`
	ObservedAt     time.Time           `json:"observed_at"`
	StockLevel     Float               `json:"stock_level"`
	ReorderPoint   Float               `json:"reorder_point"`
	DailyDemand    Float               `json:"daily_demand"`
	FillRate       Float               `json:"fill_rate"`
	AnnualTurnover Float               `json:"annualized_turnover"`
	StockoutRisk   bool                `json:"stockout_risk"`
	Price          decimal.NullDecimal `json:"price"`
	Anomalies      []Anomaly           `json:"anomalies,omitempty"`
}

// AtRisk reports whether the snapshot's stock level is strictly below its
// reorder point. Rows missing either value are never at risk.
func (r *InventoryRecord) AtRisk() bool {
	if !r.StockLevel.Valid || !r.ReorderPoint.Valid {
		return false
	}
	return r.StockLevel.Value < r.ReorderPoint.Value
}

// Product is a catalog entry merged into order and inventory records by
// product identifier.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

// Dataset is the unified record set for one pipeline run. It is read-only
// after Load completes; every filter or KPI pass allocates fresh derived
// views over it.
type Dataset struct {
	RunID     string
	LoadedAt  time.Time
	Orders    []*OrderRecord
	Inventory []*InventoryRecord
	Catalog   map[string]Product
}

// OrderDateRange returns the min and max order dates over the dataset,
// skipping orders with a missing order date. ok is false when no order
// carries a date.
func (d *Dataset) OrderDateRange() (min, max time.Time, ok bool) {
	for _, o := range d.Orders {
		if o.OrderDate.IsZero() {
			continue
		}
		if !ok || o.OrderDate.Before(min) {
			min = o.OrderDate
		}
		if !ok || o.OrderDate.After(max) {
			max = o.OrderDate
		}
		ok = true
	}
	return min, max, ok
}

// Categories returns the distinct order categories in first-seen order.
func (d *Dataset) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range d.Orders {
		if o.Category == "" {
			continue
		}
		if _, dup := seen[o.Category]; dup {
			continue
		}
		seen[o.Category] = struct{}{}
		out = append(out, o.Category)
	}
	return out
}
