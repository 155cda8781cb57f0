// Package tabular implements the order-history source adapter. It reads a
// spreadsheet workbook (.xlsx) or a delimited text file (.csv, .tsv) into
// raw tables for the schema normalizer.
package tabular

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/chainsight-io/chainsight/pkg/config"
	"github.com/chainsight-io/chainsight/pkg/connector/core"
	"github.com/chainsight-io/chainsight/pkg/connector/registry"
	"github.com/chainsight-io/chainsight/pkg/cserrors"
	"github.com/chainsight-io/chainsight/pkg/logger"
)

func init() {
	_ = registry.RegisterSource("tabular", NewSource)

	_ = registry.RegisterSourceInfo(registry.SourceInfo{
		Name:        "tabular",
		Description: "Order history from a spreadsheet workbook or delimited text file",
	})
}

// Source reads order rows from a workbook or delimited file.
type Source struct {
	path      string
	sheet     string
	delimiter rune
	logger    *zap.Logger
}

// NewSource creates a tabular source from the pipeline configuration.
func NewSource(cfg *config.PipelineConfig) (core.Source, error) {
	delim := ','
	switch {
	case cfg.Orders.Delimiter != "":
		delim = rune(cfg.Orders.Delimiter[0])
	case strings.EqualFold(filepath.Ext(cfg.Orders.Path), ".tsv"):
		delim = '\t'
	}

	return &Source{
		path:      cfg.Orders.Path,
		sheet:     cfg.Orders.Sheet,
		delimiter: delim,
		logger:    logger.Get().With(zap.String("source", "tabular")),
	}, nil
}

// Name identifies the adapter.
func (s *Source) Name() string { return "tabular" }

// Extract reads the configured file into raw tables. With a sheet selector
// it returns exactly that sheet; without one it returns every sheet keyed
// by name. Delimited files always yield a single table.
func (s *Source) Extract(ctx context.Context) (*core.Payload, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, cserrors.Wrap(err, cserrors.ErrorTypeSourceUnavailable, "orders file not found").
			WithDetail("path", s.path)
	}

	var (
		payload *core.Payload
		err     error
	)
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".xlsx", ".xlsm":
		payload, err = s.extractWorkbook(ctx)
	default:
		payload, err = s.extractDelimited(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("orders file extracted",
		zap.String("path", s.path),
		zap.Strings("tables", payload.TableNames()),
		zap.Int("rows", payload.RowCount()))
	return payload, nil
}

func (s *Source) extractWorkbook(ctx context.Context) (*core.Payload, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, cserrors.Wrap(err, cserrors.ErrorTypeSourceFormat, "failed to open workbook").
			WithDetail("path", s.path)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if s.sheet != "" {
		found := false
		for _, name := range sheets {
			if name == s.sheet {
				found = true
				break
			}
		}
		if !found {
			return nil, cserrors.Newf(cserrors.ErrorTypeSourceFormat, "sheet %q not found in workbook", s.sheet).
				WithDetail("path", s.path).
				WithDetail("sheets", sheets)
		}
		sheets = []string{s.sheet}
	}

	payload := &core.Payload{Tables: make(map[string]*core.Table, len(sheets))}
	for _, name := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, cserrors.Wrap(err, cserrors.ErrorTypeSourceUnavailable, "workbook extraction canceled")
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return nil, cserrors.Wrap(err, cserrors.ErrorTypeSourceFormat, "failed to read sheet").
				WithDetail("path", s.path).
				WithDetail("sheet", name)
		}
		payload.Tables[name] = rowsToTable(name, rows)
	}
	return payload, nil
}

func (s *Source) extractDelimited(ctx context.Context) (*core.Payload, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, cserrors.Wrap(err, cserrors.ErrorTypeSourceUnavailable, "failed to open orders file").
			WithDetail("path", s.path)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.Comma = s.delimiter
	reader.FieldsPerRecord = -1

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, cserrors.Wrap(err, cserrors.ErrorTypeSourceFormat, "failed to parse delimited file").
			WithDetail("path", s.path)
	}
	if err := ctx.Err(); err != nil {
		return nil, cserrors.Wrap(err, cserrors.ErrorTypeSourceUnavailable, "extraction canceled")
	}

	name := s.sheet
	if name == "" {
		base := filepath.Base(s.path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return &core.Payload{
		Tables: map[string]*core.Table{name: rowsToTable(name, raw)},
	}, nil
}

// rowsToTable converts a header row plus data rows into a raw table. Short
// rows are padded so every row exposes every column; fully blank rows are
// dropped.
func rowsToTable(name string, rows [][]string) *core.Table {
	table := &core.Table{Name: name, Kind: core.KindOrders}
	if len(rows) == 0 {
		return table
	}

	table.Columns = make([]string, len(rows[0]))
	for i, col := range rows[0] {
		table.Columns[i] = strings.TrimSpace(col)
	}

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := make(map[string]interface{}, len(table.Columns))
		for i, col := range table.Columns {
			if col == "" {
				continue
			}
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		table.Rows = append(table.Rows, rec)
	}
	return table
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

