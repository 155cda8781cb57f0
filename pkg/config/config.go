// Package config provides the unified configuration system for Chainsight.
// It defines a single PipelineConfig structure covering every source adapter
// and the serving surface, ensuring consistent configuration across the
// entire system.
//
// The configuration is organized into logical sections:
//   - Orders: the tabular order-history source
//   - Catalog: the remote product catalog endpoint
//   - Inventory: bounds for the synthetic inventory generator
//   - Logging: structured-log settings
//   - Server: the dashboard gateway
//   - Export: snapshot and report output
//
// Example usage:
//
//	cfg := config.NewPipelineConfig()
//	cfg.Orders.Path = "data/global_superstore.xlsx"
//	cfg.Orders.Sheet = "Orders"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"time"
)

// PipelineConfig is the single configuration structure the pipeline and all
// source adapters use.
type PipelineConfig struct {
	// Orders configures the tabular order-history source
	Orders OrdersConfig `yaml:"orders" json:"orders"`

	// Catalog configures the remote product catalog source
	Catalog CatalogConfig `yaml:"catalog" json:"catalog"`

	// Inventory configures the synthetic inventory generator
	Inventory InventoryConfig `yaml:"inventory" json:"inventory"`

	// Logging configures structured logging
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Server configures the dashboard gateway
	Server ServerConfig `yaml:"server" json:"server"`

	// Export configures snapshot and report output
	Export ExportConfig `yaml:"export" json:"export"`
}

// OrdersConfig configures the tabular order-history source.
type OrdersConfig struct {
	// Path to the orders file (.xlsx, .csv or .tsv)
	Path string `yaml:"path" json:"path"`
	// Sheet selects a single sheet or table by name. Empty means every
	// sheet in the file, keyed by name.
	Sheet string `yaml:"sheet" json:"sheet"`
	// Delimiter overrides the delimiter for delimited text files.
	// Empty means inferred from the file extension.
	Delimiter string `yaml:"delimiter" json:"delimiter"`
}

// CatalogConfig configures the remote product catalog source.
type CatalogConfig struct {
	// URL of the product list endpoint (HTTP GET, JSON array)
	URL string `yaml:"url" json:"url"`
	// Timeout bounds the single fetch attempt
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// InventoryConfig bounds the synthetic inventory generator. Generated values
// always respect these bounds; determinism is optional via Seed.
type InventoryConfig struct {
	// StockMin and StockMax bound the generated stock level
	StockMin int `yaml:"stock_min" json:"stock_min"`
	StockMax int `yaml:"stock_max" json:"stock_max"`
	// ReorderMin and ReorderMax bound the generated reorder point
	ReorderMin int `yaml:"reorder_min" json:"reorder_min"`
	ReorderMax int `yaml:"reorder_max" json:"reorder_max"`
	// DemandMin and DemandMax bound generated daily demand
	DemandMin int `yaml:"demand_min" json:"demand_min"`
	DemandMax int `yaml:"demand_max" json:"demand_max"`
	// RiskProbability is the chance a product is flagged at stockout risk
	RiskProbability float64 `yaml:"risk_probability" json:"risk_probability"`
	// Seed fixes the RNG when non-zero; zero seeds from the clock
	Seed int64 `yaml:"seed" json:"seed"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
	Encoding    string `yaml:"encoding" json:"encoding"`
}

// ServerConfig configures the dashboard gateway.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080"
	Addr string `yaml:"addr" json:"addr"`
	// AllowOrigins lists CORS origins permitted to call the API
	AllowOrigins []string `yaml:"allow_origins" json:"allow_origins"`
	// ReadTimeout and WriteTimeout bound request handling
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
}

// ExportConfig configures snapshot and report output.
type ExportConfig struct {
	// Dir is the directory exported files are written to
	Dir string `yaml:"dir" json:"dir"`
	// Delimiter used for delimited snapshot exports
	Delimiter string `yaml:"delimiter" json:"delimiter"`
}

// NewPipelineConfig returns a PipelineConfig with sensible defaults. The
// defaults produce a runnable pipeline against the bundled sample data and
// the public Fake Store catalog.
func NewPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Orders: OrdersConfig{
			Path:  "data/orders.csv",
			Sheet: "Orders",
		},
		Catalog: CatalogConfig{
			URL:     "https://fakestoreapi.com/products",
			Timeout: 15 * time.Second,
		},
		Inventory: InventoryConfig{
			StockMin:        10,
			StockMax:        500,
			ReorderMin:      20,
			ReorderMax:      100,
			DemandMin:       1,
			DemandMax:       25,
			RiskProbability: 0.1,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			AllowOrigins: []string{"*"},
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Export: ExportConfig{
			Dir:       "exports",
			Delimiter: ",",
		},
	}
}

// Validate checks the configuration for consistency. It returns the first
// problem found; bound ordering problems are reported before range problems.
func (c *PipelineConfig) Validate() error {
	if c.Orders.Path == "" {
		return fmt.Errorf("orders: path is required")
	}
	if c.Catalog.URL == "" {
		return fmt.Errorf("catalog: url is required")
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog: timeout must be positive, got %v", c.Catalog.Timeout)
	}
	if c.Inventory.StockMin < 0 {
		return fmt.Errorf("inventory: stock_min must be >= 0, got %d", c.Inventory.StockMin)
	}
	if c.Inventory.StockMax < c.Inventory.StockMin {
		return fmt.Errorf("inventory: stock_max (%d) < stock_min (%d)", c.Inventory.StockMax, c.Inventory.StockMin)
	}
	if c.Inventory.ReorderMax < c.Inventory.ReorderMin {
		return fmt.Errorf("inventory: reorder_max (%d) < reorder_min (%d)", c.Inventory.ReorderMax, c.Inventory.ReorderMin)
	}
	if c.Inventory.DemandMax < c.Inventory.DemandMin {
		return fmt.Errorf("inventory: demand_max (%d) < demand_min (%d)", c.Inventory.DemandMax, c.Inventory.DemandMin)
	}
	if c.Inventory.RiskProbability < 0 || c.Inventory.RiskProbability > 1 {
		return fmt.Errorf("inventory: risk_probability must be in [0,1], got %g", c.Inventory.RiskProbability)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server: addr is required")
	}
	return nil
}
