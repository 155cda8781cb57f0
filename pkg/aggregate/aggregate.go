// Package aggregate produces the time- and category-bucketed rollups the
// dashboard charts consume. Rollups are ordered sequences of (bucket key,
// value) pairs sorted by key ascending; buckets with no contributing
// records are omitted unless the caller asks for a dense series.
package aggregate

import (
	"sort"
	"time"

	"github.com/chainsight-io/chainsight/pkg/models"
)

// Bucket selects the time-bucket granularity.
type Bucket string

const (
	// BucketDay groups by calendar day (key 2006-01-02).
	BucketDay Bucket = "day"
	// BucketMonth groups by calendar month (key 2006-01).
	BucketMonth Bucket = "month"
)

// layout returns the key format for the bucket.
func (b Bucket) layout() string {
	if b == BucketMonth {
		return "2006-01"
	}
	return "2006-01-02"
}

// Point is one rollup entry.
type Point struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// accumulator collects sum and count per bucket key.
type accumulator struct {
	sums   map[string]float64
	counts map[string]int
}

func newAccumulator() *accumulator {
	return &accumulator{
		sums:   make(map[string]float64),
		counts: make(map[string]int),
	}
}

func (a *accumulator) add(key string, value float64) {
	a.sums[key] += value
	a.counts[key]++
}

func (a *accumulator) points(mean bool) []Point {
	points := make([]Point, 0, len(a.sums))
	for key, sum := range a.sums {
		v := sum
		if mean {
			v = sum / float64(a.counts[key])
		}
		points = append(points, Point{Key: key, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Key < points[j].Key })
	return points
}

// MeanLeadTimeOverTime rolls up mean lead time in days per bucket of the
// order date. Orders missing either date contribute nothing.
func MeanLeadTimeOverTime(orders []*models.OrderRecord, bucket Bucket) []Point {
	acc := newAccumulator()
	for _, o := range orders {
		if !o.HasLeadTime() {
			continue
		}
		acc.add(o.OrderDate.Format(bucket.layout()), o.LeadTimeDays())
	}
	return acc.points(true)
}

// MeanStockOverTime rolls up mean stock level per bucket of the snapshot
// observation date. Rows with missing stock or dates contribute nothing.
func MeanStockOverTime(inventory []*models.InventoryRecord, bucket Bucket) []Point {
	acc := newAccumulator()
	for _, r := range inventory {
		if r.ObservedAt.IsZero() || !r.StockLevel.Valid {
			continue
		}
		acc.add(r.ObservedAt.Format(bucket.layout()), r.StockLevel.Value)
	}
	return acc.points(true)
}

// DeliveredByCategory rolls up total delivered quantity per category,
// sorted by category ascending.
func DeliveredByCategory(orders []*models.OrderRecord) []Point {
	acc := newAccumulator()
	for _, o := range orders {
		if !o.QtyDelivered.Valid {
			continue
		}
		acc.add(o.Category, o.QtyDelivered.Value)
	}
	return acc.points(false)
}

// SalesByCategory rolls up total sales per category. Money stays exact in
// the record model; the rollup reports the float the charts draw.
func SalesByCategory(orders []*models.OrderRecord) []Point {
	acc := newAccumulator()
	for _, o := range orders {
		if !o.Sales.Valid {
			continue
		}
		f, _ := o.Sales.Decimal.Float64()
		acc.add(o.Category, f)
	}
	return acc.points(false)
}

// MeanFillRateByCategory rolls up the mean snapshot fill rate per category.
func MeanFillRateByCategory(inventory []*models.InventoryRecord) []Point {
	acc := newAccumulator()
	for _, r := range inventory {
		if !r.FillRate.Valid {
			continue
		}
		acc.add(r.Category, r.FillRate.Value)
	}
	return acc.points(true)
}

// Dense zero-fills the gaps of a day- or month-bucketed series between its
// first and last keys. Sparse output is the default; charts that need a
// continuous axis opt in here.
func Dense(points []Point, bucket Bucket) []Point {
	if len(points) < 2 {
		return points
	}

	layout := bucket.layout()
	first, err := time.Parse(layout, points[0].Key)
	if err != nil {
		return points
	}
	last, err := time.Parse(layout, points[len(points)-1].Key)
	if err != nil {
		return points
	}

	byKey := make(map[string]float64, len(points))
	for _, p := range points {
		byKey[p.Key] = p.Value
	}

	var out []Point
	for t := first; !t.After(last); t = next(t, bucket) {
		key := t.Format(layout)
		out = append(out, Point{Key: key, Value: byKey[key]})
	}
	return out
}

func next(t time.Time, bucket Bucket) time.Time {
	if bucket == BucketMonth {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}
