// Package kpi computes the derived KPI set over a filtered view: lead-time
// statistics, fill rate, inventory turnover, and stockout risk. Every KPI
// is defined for degenerate inputs. Empty views and zero denominators
// yield concrete zeros, never a division fault or NaN.
package kpi

import (
	"math"
	"sort"

	"github.com/chainsight-io/chainsight/pkg/filter"
	"github.com/chainsight-io/chainsight/pkg/models"
)

// LeadTimeStats summarizes lead time in days over orders that carry both
// dates. Samples counts the orders actually included.
type LeadTimeStats struct {
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"`
	Samples int     `json:"samples"`
}

// Set is the KPI value object. It is recomputed on every filter change and
// discarded once rendered; nothing in it is persisted.
type Set struct {
	// TotalOrders counts distinct order identifiers in the view
	TotalOrders int `json:"total_orders"`
	// LeadTime summarizes ship date minus order date, in days
	LeadTime LeadTimeStats `json:"lead_time"`
	// FillRatePct is sum(delivered) / sum(ordered) * 100, or 0 when the
	// view ordered nothing
	FillRatePct float64 `json:"fill_rate_pct"`
	// InventoryTurnover is sum(delivered) / sum(stock), or 0 when the view
	// holds no stock
	InventoryTurnover float64 `json:"inventory_turnover"`
	// TotalProducts counts distinct product identifiers in the inventory
	// view
	TotalProducts int `json:"total_products"`
	// ProductsAtRisk counts distinct products whose stock level is
	// strictly below their reorder point
	ProductsAtRisk int `json:"products_at_risk"`
	// AtRiskProductIDs identifies those products, sorted ascending
	AtRiskProductIDs []string `json:"at_risk_product_ids"`
}

// Compute derives the KPI set from a filtered view.
func Compute(view *filter.View) Set {
	set := Set{
		TotalOrders: distinctOrders(view.Orders),
		LeadTime:    leadTimeStats(view.Orders),
	}

	var ordered, delivered float64
	for _, o := range view.Orders {
		// Rows with an unparsable quantity are excluded from both sums so
		// one bad cell cannot skew the ratio.
		if !o.QtyOrdered.Valid || !o.QtyDelivered.Valid {
			continue
		}
		ordered += o.QtyOrdered.Value
		delivered += o.QtyDelivered.Value
	}
	set.FillRatePct = safeDivide(delivered, ordered) * 100

	var stock float64
	for _, r := range view.Inventory {
		if r.StockLevel.Valid {
			stock += r.StockLevel.Value
		}
	}
	set.InventoryTurnover = safeDivide(delivered, stock)

	atRisk := make(map[string]struct{})
	products := make(map[string]struct{})
	for _, r := range view.Inventory {
		products[r.ProductID] = struct{}{}
		if r.AtRisk() {
			atRisk[r.ProductID] = struct{}{}
		}
	}
	set.TotalProducts = len(products)
	set.ProductsAtRisk = len(atRisk)
	set.AtRiskProductIDs = sortedKeys(atRisk)

	return set
}

// distinctOrders counts unique order identifiers, not rows: a multi-line
// order contributes once.
func distinctOrders(orders []*models.OrderRecord) int {
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		seen[o.OrderID] = struct{}{}
	}
	return len(seen)
}

// leadTimeStats computes mean, median, and sample standard deviation over
// orders carrying both dates. Orders missing either date are excluded, not
// coerced to zero.
func leadTimeStats(orders []*models.OrderRecord) LeadTimeStats {
	var samples []float64
	for _, o := range orders {
		if !o.HasLeadTime() {
			continue
		}
		samples = append(samples, o.LeadTimeDays())
	}

	stats := LeadTimeStats{Samples: len(samples)}
	if len(samples) == 0 {
		return stats
	}

	var sum float64
	for _, v := range samples {
		sum += v
	}
	stats.Mean = sum / float64(len(samples))
	stats.Median = median(samples)

	if len(samples) > 1 {
		var ss float64
		for _, v := range samples {
			d := v - stats.Mean
			ss += d * d
		}
		stats.StdDev = math.Sqrt(ss / float64(len(samples)-1))
	}
	return stats
}

// median returns the middle value; it sorts a copy so the caller's slice
// order is untouched.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// safeDivide returns num/den, defined as 0 when the denominator is 0 so
// callers always receive a concrete number.
func safeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
