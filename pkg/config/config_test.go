package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsight-io/chainsight/pkg/cserrors"
)

func TestNewPipelineConfigDefaults(t *testing.T) {
	cfg := NewPipelineConfig()

	assert.Equal(t, "Orders", cfg.Orders.Sheet)
	assert.Equal(t, 15*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 0.1, cfg.Inventory.RiskProbability)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PipelineConfig)
		wantErr string
	}{
		{
			name:    "missing orders path",
			mutate:  func(c *PipelineConfig) { c.Orders.Path = "" },
			wantErr: "path is required",
		},
		{
			name:    "missing catalog url",
			mutate:  func(c *PipelineConfig) { c.Catalog.URL = "" },
			wantErr: "url is required",
		},
		{
			name:    "zero catalog timeout",
			mutate:  func(c *PipelineConfig) { c.Catalog.Timeout = 0 },
			wantErr: "timeout must be positive",
		},
		{
			name:    "negative stock min",
			mutate:  func(c *PipelineConfig) { c.Inventory.StockMin = -1 },
			wantErr: "stock_min",
		},
		{
			name: "inverted stock bounds",
			mutate: func(c *PipelineConfig) {
				c.Inventory.StockMin = 100
				c.Inventory.StockMax = 10
			},
			wantErr: "stock_max",
		},
		{
			name:    "risk probability out of range",
			mutate:  func(c *PipelineConfig) { c.Inventory.RiskProbability = 1.5 },
			wantErr: "risk_probability",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewPipelineConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("CHAINSIGHT_TEST_ORDERS", "/tmp/orders.csv")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "orders:\n  path: ${CHAINSIGHT_TEST_ORDERS}\n  sheet: Orders\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := NewPipelineConfig()
	require.NoError(t, Load(path, cfg))

	assert.Equal(t, "/tmp/orders.csv", cfg.Orders.Path)
	// Untouched sections keep their defaults.
	assert.Equal(t, "https://fakestoreapi.com/products", cfg.Catalog.URL)
}

func TestLoadSubstitutesDefaults(t *testing.T) {
	t.Setenv("CHAINSIGHT_TEST_SHEET", "History")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "orders:\n" +
		"  path: ${CHAINSIGHT_TEST_UNSET_PATH:data/orders.csv}\n" +
		"  sheet: ${CHAINSIGHT_TEST_SHEET:Orders}\n" +
		"  delimiter: ${CHAINSIGHT_TEST_UNSET_DELIM}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := NewPipelineConfig()
	require.NoError(t, Load(path, cfg))

	// unset variable falls back to its default
	assert.Equal(t, "data/orders.csv", cfg.Orders.Path)
	// a set variable wins over the default
	assert.Equal(t, "History", cfg.Orders.Sheet)
	// unset with no default resolves empty
	assert.Equal(t, "", cfg.Orders.Delimiter)
}

func TestLoadMissingFile(t *testing.T) {
	cfg := NewPipelineConfig()
	err := Load(filepath.Join(t.TempDir(), "absent.yaml"), cfg)
	require.Error(t, err)
	assert.True(t, cserrors.IsType(err, cserrors.ErrorTypeConfig))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := NewPipelineConfig()
	cfg.Orders.Path = "data/history.xlsx"
	require.NoError(t, Save(path, cfg))

	loaded := &PipelineConfig{}
	require.NoError(t, Load(path, loaded))
	assert.Equal(t, cfg.Orders.Path, loaded.Orders.Path)
	assert.Equal(t, cfg.Inventory, loaded.Inventory)
}
