package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/chainsight-io/chainsight/pkg/models"
)

// Workbook sheet names. Summary leads so the report opens on the KPI view.
const (
	SheetSummary   = "Summary"
	SheetOrders    = "Orders"
	SheetInventory = "Inventory"
)

// WriteWorkbook writes the full report as a multi-sheet workbook: one
// summary row of KPIs plus the complete order and inventory tables.
func WriteWorkbook(path string, summary Summary, orders []*models.OrderRecord, inventory []*models.InventoryRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// The default sheet becomes Summary.
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return err
	}

	summaryHeader := []interface{}{
		"Generated At", "Run ID", "Total Orders", "Mean Lead Time (Days)",
		"Median Lead Time (Days)", "Lead Time Std Dev", "Fill Rate (%)",
		"Inventory Turnover", "Products At Risk", "Total Products",
	}
	summaryRow := []interface{}{
		summary.GeneratedAt.Format("2006-01-02 15:04:05"),
		summary.RunID,
		summary.KPIs.TotalOrders,
		summary.KPIs.LeadTime.Mean,
		summary.KPIs.LeadTime.Median,
		summary.KPIs.LeadTime.StdDev,
		summary.KPIs.FillRatePct,
		summary.KPIs.InventoryTurnover,
		summary.KPIs.ProductsAtRisk,
		summary.KPIs.TotalProducts,
	}
	if err := f.SetSheetRow(SheetSummary, "A1", &summaryHeader); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetSummary, "A2", &summaryRow); err != nil {
		return err
	}

	if err := writeOrdersSheet(f, orders); err != nil {
		return err
	}
	if err := writeInventorySheet(f, inventory); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func writeOrdersSheet(f *excelize.File, orders []*models.OrderRecord) error {
	if _, err := f.NewSheet(SheetOrders); err != nil {
		return err
	}

	if err := setRow(f, SheetOrders, 1, toInterfaces(OrderColumns)); err != nil {
		return err
	}
	for i, o := range orders {
		row := []interface{}{
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
		if err := setRow(f, SheetOrders, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeInventorySheet(f *excelize.File, inventory []*models.InventoryRecord) error {
	if _, err := f.NewSheet(SheetInventory); err != nil {
		return err
	}

	if err := setRow(f, SheetInventory, 1, toInterfaces(InventoryColumns)); err != nil {
		return err
	}
	for i, r := range inventory {
		row := []interface{}{
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
		if err := setRow(f, SheetInventory, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell := fmt.Sprintf("A%d", rowNum)
	return f.SetSheetRow(sheet, cell, &values)
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
