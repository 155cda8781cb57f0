package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsight-io/chainsight/pkg/connector/registry"
	"github.com/chainsight-io/chainsight/pkg/cserrors"
	"github.com/chainsight-io/chainsight/pkg/testutil"
)

const ordersCSV = `Order ID,Order Date,Ship Date,Category,Quantity Ordered,Quantity Delivered
O-1,2024-03-01,2024-03-04,Furniture,10,8
O-2,2024-03-02,2024-03-05,Office,5,5

O-3,2024-03-03,2024-03-06,Furniture,2
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractCSV(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.Orders.Path = writeFixture(t, "orders.csv", ordersCSV)
	cfg.Orders.Sheet = ""

	src, err := NewSource(cfg)
	require.NoError(t, err)
	assert.Equal(t, "tabular", src.Name())

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	payload, err := src.Extract(ctx)
	require.NoError(t, err)

	// single table named after the file
	require.Equal(t, []string{"orders"}, payload.TableNames())
	table := payload.Tables["orders"]
	assert.Equal(t,
		[]string{"Order ID", "Order Date", "Ship Date", "Category", "Quantity Ordered", "Quantity Delivered"},
		table.Columns)

	// blank row dropped, short row padded
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "O-1", table.Rows[0]["Order ID"])
	assert.Equal(t, "", table.Rows[2]["Quantity Delivered"])
}

func TestExtractTSVInfersDelimiter(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.Orders.Path = writeFixture(t, "orders.tsv",
		"Order ID\tQuantity Ordered\nO-1\t3\n")
	cfg.Orders.Sheet = ""
	cfg.Orders.Delimiter = ""

	src, err := NewSource(cfg)
	require.NoError(t, err)

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	payload, err := src.Extract(ctx)
	require.NoError(t, err)

	table := payload.Tables["orders"]
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "3", table.Rows[0]["Quantity Ordered"])
}

func TestExtractMissingFile(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.Orders.Path = filepath.Join(t.TempDir(), "absent.csv")

	src, err := NewSource(cfg)
	require.NoError(t, err)

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	_, err = src.Extract(ctx)
	require.Error(t, err)
	assert.True(t, cserrors.IsType(err, cserrors.ErrorTypeSourceUnavailable))

	var csErr *cserrors.Error
	require.ErrorAs(t, err, &csErr)
	assert.Equal(t, cfg.Orders.Path, csErr.Details["path"])
}

func TestExtractMalformedCSV(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.Orders.Path = writeFixture(t, "orders.csv",
		"Order ID,Category\n\"O-1,Furniture\n")
	cfg.Orders.Sheet = ""

	src, err := NewSource(cfg)
	require.NoError(t, err)

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	_, err = src.Extract(ctx)
	require.Error(t, err)
	assert.True(t, cserrors.IsType(err, cserrors.ErrorTypeSourceFormat))
}

func TestSheetSelectorNamesTheTable(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.Orders.Path = writeFixture(t, "orders.csv", ordersCSV)
	cfg.Orders.Sheet = "Orders"

	src, err := NewSource(cfg)
	require.NoError(t, err)

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	payload, err := src.Extract(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Orders"}, payload.TableNames())
}

func TestRegisteredWithRegistry(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.Orders.Path = writeFixture(t, "orders.csv", ordersCSV)

	src, err := registry.CreateSource("tabular", cfg)
	require.NoError(t, err)
	assert.Equal(t, "tabular", src.Name())
}
