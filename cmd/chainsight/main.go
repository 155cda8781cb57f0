package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chainsight-io/chainsight/internal/gateway"
	"github.com/chainsight-io/chainsight/internal/pipeline"
	"github.com/chainsight-io/chainsight/pkg/config"
	"github.com/chainsight-io/chainsight/pkg/connector/registry"
	"github.com/chainsight-io/chainsight/pkg/export"
	"github.com/chainsight-io/chainsight/pkg/filter"
	"github.com/chainsight-io/chainsight/pkg/logger"

	// Import all source adapters to register them
	_ "github.com/chainsight-io/chainsight/pkg/connector/sources/catalog"
	_ "github.com/chainsight-io/chainsight/pkg/connector/sources/inventory"
	_ "github.com/chainsight-io/chainsight/pkg/connector/sources/tabular"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	var configFile string

	root := &cobra.Command{
		Use:   "chainsight",
		Short: "Chainsight - supply chain analytics pipeline",
		Long: `Chainsight ingests heterogeneous supply-chain data (order history files,
a remote product catalog, simulated inventory snapshots), unifies it into one
record model, and derives operational KPIs for interactive filtering.`,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Chainsight v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "sources",
		Short: "List available source adapters",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Available source adapters:")
			for _, info := range registry.SourceInfos() {
				fmt.Printf("  - %-10s %s\n", info.Name, info.Description)
			}
		},
	})

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write a starting config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "chainsight.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", path)
			}
			if err := config.Save(path, config.NewPipelineConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	})
	root.AddCommand(configCmd)

	var start, end, category string

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and print KPIs",
		Long: `Load every source, compute the KPI set over the requested filter, and
print it as JSON. Absent filter flags leave the range open and include all
categories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configFile)
			if err != nil {
				return err
			}

			spec, err := buildSpec(start, end, category)
			if err != nil {
				return err
			}

			result, _, err := loadAndCompute(cmd.Context(), cfg, spec)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	runCmd.Flags().StringVar(&start, "start", "", "filter start date (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&end, "end", "", "filter end date (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&category, "category", "", "filter category (empty = all)")
	root.AddCommand(runCmd)

	var workbook bool

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered record set",
		Long: `Write the filtered order and inventory views as delimited snapshots to
the export directory, plus an optional multi-sheet workbook report
(Summary, Orders, Inventory).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configFile)
			if err != nil {
				return err
			}

			spec, err := buildSpec(start, end, category)
			if err != nil {
				return err
			}

			result, p, err := loadAndCompute(cmd.Context(), cfg, spec)
			if err != nil {
				return err
			}

			return exportArtifacts(cfg, p, result, workbook)
		},
	}
	exportCmd.Flags().StringVar(&start, "start", "", "filter start date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&end, "end", "", "filter end date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&category, "category", "", "filter category (empty = all)")
	exportCmd.Flags().BoolVar(&workbook, "workbook", false, "also write the multi-sheet workbook report")
	root.AddCommand(exportCmd)

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Load the pipeline and serve the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p := pipeline.New(cfg)
			if err := p.Load(ctx); err != nil {
				return err
			}

			return gateway.NewServer(cfg, p).Run(ctx)
		},
	})

	if err := root.Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// setup loads the configuration and initializes logging.
func setup(configFile string) (*config.PipelineConfig, error) {
	cfg := config.NewPipelineConfig()
	if configFile != "" {
		if err := config.Load(configFile, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Encoding:    encodingOrDefault(cfg.Logging.Encoding),
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func encodingOrDefault(encoding string) string {
	if encoding == "" {
		return "json"
	}
	return encoding
}

// buildSpec parses the filter flags into a filter specification.
func buildSpec(start, end, category string) (filter.Spec, error) {
	spec := filter.Spec{Category: category}

	var err error
	if start != "" {
		if spec.Start, err = time.Parse("2006-01-02", start); err != nil {
			return spec, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if end != "" {
		if spec.End, err = time.Parse("2006-01-02", end); err != nil {
			return spec, fmt.Errorf("invalid --end: %w", err)
		}
	}
	return spec, nil
}

// loadAndCompute runs one full pipeline pass for the spec.
func loadAndCompute(ctx context.Context, cfg *config.PipelineConfig, spec filter.Spec) (*pipeline.Result, *pipeline.Pipeline, error) {
	p := pipeline.New(cfg)
	if err := p.Load(ctx); err != nil {
		return nil, nil, err
	}

	for _, diag := range p.Diagnostics() {
		if diag.Status != "ok" {
			fmt.Fprintf(os.Stderr, "warning: source %s failed: %s\n", diag.Source, diag.Reason)
		}
	}

	result, err := p.Recompute(spec)
	if err != nil {
		return nil, nil, err
	}
	return result, p, nil
}

// exportArtifacts writes the snapshot files and optional workbook report.
func exportArtifacts(cfg *config.PipelineConfig, p *pipeline.Pipeline, result *pipeline.Result, workbook bool) error {
	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		return err
	}

	delimiter := ','
	if cfg.Export.Delimiter != "" {
		delimiter = rune(cfg.Export.Delimiter[0])
	}

	ordersPath := filepath.Join(cfg.Export.Dir, "filtered_orders.csv")
	f, err := os.Create(ordersPath)
	if err != nil {
		return err
	}
	if err := export.WriteOrdersCSV(f, result.View.Orders, delimiter); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	inventoryPath := filepath.Join(cfg.Export.Dir, "filtered_inventory.csv")
	f, err = os.Create(inventoryPath)
	if err != nil {
		return err
	}
	if err := export.WriteInventoryCSV(f, result.View.Inventory, delimiter); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("wrote %s and %s\n", ordersPath, inventoryPath)

	if !workbook {
		return nil
	}

	summary := export.Summary{
		GeneratedAt: time.Now(),
		RunID:       p.Dataset().RunID,
		Orders:      len(result.View.Orders),
		Inventory:   len(result.View.Inventory),
		KPIs:        result.KPIs,
	}
	reportPath := filepath.Join(cfg.Export.Dir,
		fmt.Sprintf("supply_chain_report_%s.xlsx", time.Now().Format("20060102_150405")))
	if err := export.WriteWorkbook(reportPath, summary, result.View.Orders, result.View.Inventory); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", reportPath)
	return nil
}
