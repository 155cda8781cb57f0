package schema

import (
	"go.uber.org/zap"

	"github.com/chainsight-io/chainsight/pkg/connector/core"
	"github.com/chainsight-io/chainsight/pkg/logger"
	"github.com/chainsight-io/chainsight/pkg/models"
)

// NormalizeOrders converts a raw orders table into unified order records.
// Data-quality anomalies (missing dates, ship before order, delivered above
// ordered) are flagged on the record, never dropped: every row that carries
// an order ID survives normalization.
func NormalizeOrders(table *core.Table) ([]*models.OrderRecord, error) {
	index, err := OrdersMapping.Resolve(table)
	if err != nil {
		return nil, err
	}

	get := func(row map[string]interface{}, canonical string) interface{} {
		raw, ok := index[canonical]
		if !ok {
			return nil
		}
		return row[raw]
	}

	records := make([]*models.OrderRecord, 0, len(table.Rows))
	anomalies := 0
	for _, row := range table.Rows {
		rec := &models.OrderRecord{
			OrderID:      cellString(get(row, "order_id")),
			OrderDate:    coerceDate(get(row, "order_date")),
			ShipDate:     coerceDate(get(row, "ship_date")),
			CustomerID:   cellString(get(row, "customer_id")),
			ProductID:    cellString(get(row, "product_id")),
			Category:     stringOrDefault(get(row, "category"), CategoryUnknown),
			SubCategory:  cellString(get(row, "sub_category")),
			QtyOrdered:   coerceFloat(get(row, "qty_ordered")),
			QtyDelivered: coerceFloat(get(row, "qty_delivered")),
			Sales:        coerceMoney(get(row, "sales")),
			Profit:       coerceMoney(get(row, "profit")),
		}
		if rec.OrderID == "" {
			continue
		}

		if rec.OrderDate.IsZero() {
			rec.Anomalies = append(rec.Anomalies, models.AnomalyMissingOrderDate)
		}
		if rec.ShipDate.IsZero() {
			rec.Anomalies = append(rec.Anomalies, models.AnomalyMissingShipDate)
		}
		if rec.HasLeadTime() && rec.ShipDate.Before(rec.OrderDate) {
			rec.Anomalies = append(rec.Anomalies, models.AnomalyShipBeforeOrder)
		}
		if rec.QtyOrdered.Valid && rec.QtyDelivered.Valid && rec.QtyDelivered.Value > rec.QtyOrdered.Value {
			rec.Anomalies = append(rec.Anomalies, models.AnomalyOverDelivered)
		}
		if len(rec.Anomalies) > 0 {
			anomalies++
		}

		records = append(records, rec)
	}

	if anomalies > 0 {
		logger.Warn("order rows carry data-quality anomalies",
			zap.String("table", table.Name),
			zap.Int("rows", len(records)),
			zap.Int("anomalous", anomalies))
	}
	return records, nil
}

// NormalizeInventory converts a raw inventory table into unified snapshot
// records. Negative stock is flagged, not rejected.
func NormalizeInventory(table *core.Table) ([]*models.InventoryRecord, error) {
	index, err := InventoryMapping.Resolve(table)
	if err != nil {
		return nil, err
	}

	get := func(row map[string]interface{}, canonical string) interface{} {
		raw, ok := index[canonical]
		if !ok {
			return nil
		}
		return row[raw]
	}

	records := make([]*models.InventoryRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := &models.InventoryRecord{
			ProductID:      cellString(get(row, "product_id")),
			ProductName:    cellString(get(row, "product_name")),
			Category:       stringOrDefault(get(row, "category"), CategoryUnknown),
			ObservedAt:     coerceDate(get(row, "observed_at")),
			StockLevel:     coerceFloat(get(row, "stock_level")),
			ReorderPoint:   coerceFloat(get(row, "reorder_point")),
			DailyDemand:    coerceFloat(get(row, "daily_demand")),
			FillRate:       coerceFloat(get(row, "fill_rate")),
			AnnualTurnover: coerceFloat(get(row, "annualized_turnover")),
			StockoutRisk:   coerceBool(get(row, "stockout_risk")),
			Price:          coerceMoney(get(row, "price")),
		}
		if rec.ProductID == "" {
			continue
		}

		if rec.StockLevel.Valid && rec.StockLevel.Value < 0 {
			rec.Anomalies = append(rec.Anomalies, models.AnomalyNegativeStock)
		}

		records = append(records, rec)
	}
	return records, nil
}

// NormalizeCatalog converts a raw catalog table into products keyed by
// identifier.
func NormalizeCatalog(table *core.Table) ([]models.Product, error) {
	index, err := CatalogMapping.Resolve(table)
	if err != nil {
		return nil, err
	}

	get := func(row map[string]interface{}, canonical string) interface{} {
		raw, ok := index[canonical]
		if !ok {
			return nil
		}
		return row[raw]
	}

	products := make([]models.Product, 0, len(table.Rows))
	for _, row := range table.Rows {
		p := models.Product{
			ID:       cellString(get(row, "id")),
			Name:     cellString(get(row, "name")),
			Category: stringOrDefault(get(row, "category"), CategoryUnknown),
		}
		if p.ID == "" {
			continue
		}
		if money := coerceMoney(get(row, "price")); money.Valid {
			p.Price = money.Decimal
		}
		products = append(products, p)
	}
	return products, nil
}

// MergeCatalog enriches order and inventory records with catalog data by
// product identifier. Records whose identifier the catalog cannot resolve
// keep their normalizer defaults.
func MergeCatalog(orders []*models.OrderRecord, inventory []*models.InventoryRecord, catalog map[string]models.Product) {
	if len(catalog) == 0 {
		return
	}

	for _, o := range orders {
		p, ok := catalog[o.ProductID]
		if !ok {
			continue
		}
		if o.Category == "" || o.Category == CategoryUnknown {
			o.Category = p.Category
		}
	}

	for _, r := range inventory {
		p, ok := catalog[r.ProductID]
		if !ok {
			continue
		}
		if r.ProductName == "" {
			r.ProductName = p.Name
		}
		if r.Category == "" || r.Category == CategoryUnknown {
			r.Category = p.Category
		}
		if !r.Price.Valid {
			r.Price.Decimal = p.Price
			r.Price.Valid = true
		}
	}
}

func stringOrDefault(v interface{}, fallback string) string {
	if s := cellString(v); s != "" {
		return s
	}
	return fallback
}
