// Package testutil provides testing utilities for Chainsight
package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/chainsight-io/chainsight/pkg/config"
	"github.com/chainsight-io/chainsight/pkg/models"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// TestConfig returns a pipeline configuration with a fixed inventory seed,
// suitable for deterministic tests. Source locations still need to be
// pointed at fixtures by the caller.
func TestConfig() *config.PipelineConfig {
	cfg := config.NewPipelineConfig()
	cfg.Inventory.Seed = 42
	return cfg
}

// Date builds a UTC midnight time for fixture records.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Order builds a well-formed order record fixture. Quantities are valid;
// callers needing anomalies mutate the result.
func Order(id string, orderDate, shipDate time.Time, category string, ordered, delivered float64) *models.OrderRecord {
	return &models.OrderRecord{
		OrderID:      id,
		OrderDate:    orderDate,
		ShipDate:     shipDate,
		ProductID:    "P-" + id,
		Category:     category,
		QtyOrdered:   models.FloatOf(ordered),
		QtyDelivered: models.FloatOf(delivered),
	}
}

// Snapshot builds an inventory record fixture.
func Snapshot(productID, category string, observed time.Time, stock, reorder float64) *models.InventoryRecord {
	return &models.InventoryRecord{
		ProductID:    productID,
		Category:     category,
		ObservedAt:   observed,
		StockLevel:   models.FloatOf(stock),
		ReorderPoint: models.FloatOf(reorder),
	}
}
