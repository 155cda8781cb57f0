package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatJSON(t *testing.T) {
	out, err := json.Marshal(FloatOf(3.5))
	require.NoError(t, err)
	assert.Equal(t, "3.5", string(out))

	out, err = json.Marshal(MissingFloat())
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	var f Float
	require.NoError(t, json.Unmarshal([]byte("null"), &f))
	assert.False(t, f.Valid)

	require.NoError(t, json.Unmarshal([]byte("7.25"), &f))
	assert.Equal(t, FloatOf(7.25), f)
}

func TestFloatOr(t *testing.T) {
	assert.Equal(t, 5.0, FloatOf(5).Or(9))
	assert.Equal(t, 9.0, MissingFloat().Or(9))
}

func TestOrderLeadTime(t *testing.T) {
	ordered := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	o := &OrderRecord{OrderDate: ordered, ShipDate: ordered.AddDate(0, 0, 3)}
	assert.True(t, o.HasLeadTime())
	assert.Equal(t, 3.0, o.LeadTimeDays())

	missing := &OrderRecord{OrderDate: ordered}
	assert.False(t, missing.HasLeadTime())
}

func TestInventoryAtRisk(t *testing.T) {
	tests := []struct {
		name    string
		stock   Float
		reorder Float
		want    bool
	}{
		{"below reorder", FloatOf(5), FloatOf(10), true},
		{"at reorder boundary", FloatOf(10), FloatOf(10), false},
		{"above reorder", FloatOf(15), FloatOf(10), false},
		{"missing stock", MissingFloat(), FloatOf(10), false},
		{"missing reorder", FloatOf(5), MissingFloat(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &InventoryRecord{StockLevel: tt.stock, ReorderPoint: tt.reorder}
			assert.Equal(t, tt.want, rec.AtRisk())
		})
	}
}

func TestDatasetOrderDateRange(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	ds := &Dataset{Orders: []*OrderRecord{
		{OrderID: "O-1", OrderDate: jun},
		{OrderID: "O-2"}, // missing date skipped
		{OrderID: "O-3", OrderDate: jan},
	}}

	min, max, ok := ds.OrderDateRange()
	require.True(t, ok)
	assert.Equal(t, jan, min)
	assert.Equal(t, jun, max)

	_, _, ok = (&Dataset{Orders: []*OrderRecord{{OrderID: "O-1"}}}).OrderDateRange()
	assert.False(t, ok)
}

func TestDatasetCategories(t *testing.T) {
	ds := &Dataset{Orders: []*OrderRecord{
		{OrderID: "O-1", Category: "Office"},
		{OrderID: "O-2", Category: "Furniture"},
		{OrderID: "O-3", Category: "Office"},
		{OrderID: "O-4"},
	}}

	assert.Equal(t, []string{"Office", "Furniture"}, ds.Categories())
}
