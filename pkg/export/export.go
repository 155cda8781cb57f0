// Package export writes dashboard artifacts: a delimited snapshot of the
// current filtered view, a JSON KPI summary, and a multi-sheet workbook
// report. Snapshot column names mirror the normalizer's accepted aliases,
// so an exported file re-ingests into an identical record set.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/chainsight-io/chainsight/pkg/cserrors"
	"github.com/chainsight-io/chainsight/pkg/kpi"
	"github.com/chainsight-io/chainsight/pkg/models"
)

// dateLayout is the calendar-date format snapshots are written in.
const dateLayout = "2006-01-02"

// OrderColumns are the snapshot headers for order records.
var OrderColumns = []string{
	"Order ID", "Order Date", "Ship Date", "Customer ID", "Product ID",
	"Category", "Sub-Category", "Quantity Ordered", "Quantity Delivered",
	"Sales", "Profit",
}

// InventoryColumns are the snapshot headers for inventory records.
var InventoryColumns = []string{
	"Product ID", "Product Name", "Category", "Observed At",
	"Stock Level", "Reorder Point", "Daily Demand",
	"Fill Rate", "Annualized Turnover", "Stockout Risk", "Price",
}

// WriteOrdersCSV writes the order view as delimited text.
func WriteOrdersCSV(w io.Writer, orders []*models.OrderRecord, delimiter rune) error {
	writer := csv.NewWriter(w)
	if delimiter != 0 {
		writer.Comma = delimiter
	}

	if err := writer.Write(OrderColumns); err != nil {
		return cserrors.Wrap(err, cserrors.ErrorTypeData, "failed to write order snapshot header")
	}
	for _, o := range orders {
		row := []string{
			o.OrderID,
			formatDate(o.OrderDate),
			formatDate(o.ShipDate),
			o.CustomerID,
			o.ProductID,
			o.Category,
			o.SubCategory,
			formatFloat(o.QtyOrdered),
			formatFloat(o.QtyDelivered),
			formatMoney(o.Sales),
			formatMoney(o.Profit),
		}
		if err := writer.Write(row); err != nil {
			return cserrors.Wrap(err, cserrors.ErrorTypeData, "failed to write order snapshot row")
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteInventoryCSV writes the inventory view as delimited text.
func WriteInventoryCSV(w io.Writer, inventory []*models.InventoryRecord, delimiter rune) error {
	writer := csv.NewWriter(w)
	if delimiter != 0 {
		writer.Comma = delimiter
	}

	if err := writer.Write(InventoryColumns); err != nil {
		return cserrors.Wrap(err, cserrors.ErrorTypeData, "failed to write inventory snapshot header")
	}
	for _, r := range inventory {
		row := []string{
			r.ProductID,
			r.ProductName,
			r.Category,
			formatDate(r.ObservedAt),
			formatFloat(r.StockLevel),
			formatFloat(r.ReorderPoint),
			formatFloat(r.DailyDemand),
			formatFloat(r.FillRate),
			formatFloat(r.AnnualTurnover),
			strconv.FormatBool(r.StockoutRisk),
			formatMoney(r.Price),
		}
		if err := writer.Write(row); err != nil {
			return cserrors.Wrap(err, cserrors.ErrorTypeData, "failed to write inventory snapshot row")
		}
	}

	writer.Flush()
	return writer.Error()
}

// Summary is the JSON report envelope.
type Summary struct {
	GeneratedAt time.Time `json:"generated_at"`
	RunID       string    `json:"run_id"`
	Orders      int       `json:"orders"`
	Inventory   int       `json:"inventory"`
	KPIs        kpi.Set   `json:"kpis"`
}

// WriteSummaryJSON writes the KPI summary as indented JSON.
func WriteSummaryJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return cserrors.Wrap(err, cserrors.ErrorTypeData, "failed to encode summary JSON")
	}
	return nil
}

// formatDate renders a date, empty when missing. Missing stays empty so a
// re-ingested snapshot reproduces the same anomaly flags.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// formatFloat renders a numeric value, empty when missing.
func formatFloat(f models.Float) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// formatMoney renders a money value, empty when null.
func formatMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
