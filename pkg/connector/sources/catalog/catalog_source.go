// Package catalog implements the HTTP product-catalog source adapter. It
// fetches a JSON array of products in a single attempt; a network failure
// or non-2xx response aborts the fetch and is surfaced to the orchestrator.
package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/chainsight-io/chainsight/pkg/clients"
	"github.com/chainsight-io/chainsight/pkg/config"
	"github.com/chainsight-io/chainsight/pkg/connector/core"
	"github.com/chainsight-io/chainsight/pkg/connector/registry"
	"github.com/chainsight-io/chainsight/pkg/cserrors"
	"github.com/chainsight-io/chainsight/pkg/logger"
)

func init() {
	_ = registry.RegisterSource("catalog", NewSource)

	_ = registry.RegisterSourceInfo(registry.SourceInfo{
		Name:        "catalog",
		Description: "Product catalog from a remote JSON endpoint",
	})
}

// TableName is the key the catalog table is published under.
const TableName = "catalog"

// product mirrors the Fake Store payload shape. Unknown fields are ignored;
// the normalizer owns canonical naming and coercion.
type product struct {
	ID       json.RawMessage `json:"id"`
	Title    string          `json:"title"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    json.RawMessage `json:"price"`
}

// Source fetches a product list over HTTP.
type Source struct {
	url    string
	client *clients.HTTPClient
	logger *zap.Logger
}

// NewSource creates a catalog source from the pipeline configuration.
func NewSource(cfg *config.PipelineConfig) (core.Source, error) {
	httpCfg := clients.DefaultHTTPConfig()
	if cfg.Catalog.Timeout > 0 {
		httpCfg.RequestTimeout = cfg.Catalog.Timeout
	}

	return &Source{
		url:    cfg.Catalog.URL,
		client: clients.NewHTTPClient(httpCfg, logger.Get()),
		logger: logger.Get().With(zap.String("source", "catalog")),
	}, nil
}

// Name identifies the adapter.
func (s *Source) Name() string { return "catalog" }

// Extract fetches and decodes the product list. There is no retry: one
// failed attempt aborts the fetch.
func (s *Source) Extract(ctx context.Context) (*core.Payload, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, cserrors.Wrap(err, cserrors.ErrorTypeSourceUnavailable, "catalog fetch failed").
			WithDetail("url", s.url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, cserrors.Newf(cserrors.ErrorTypeSourceUnavailable, "catalog endpoint returned %s", resp.Status).
			WithDetail("url", s.url).
			WithDetail("status_code", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cserrors.Wrap(err, cserrors.ErrorTypeSourceUnavailable, "failed to read catalog response").
			WithDetail("url", s.url)
	}

	var products []product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, cserrors.Wrap(err, cserrors.ErrorTypeSourceFormat, "malformed catalog payload").
			WithDetail("url", s.url)
	}

	table := &core.Table{
		Name:    TableName,
		Kind:    core.KindCatalog,
		Columns: []string{"id", "title", "category", "price"},
	}
	for _, p := range products {
		name := p.Title
		if name == "" {
			name = p.Name
		}
		table.Rows = append(table.Rows, map[string]interface{}{
			"id":       rawToString(p.ID),
			"title":    name,
			"category": p.Category,
			"price":    rawToString(p.Price),
		})
	}

	s.logger.Info("catalog fetched",
		zap.String("url", s.url),
		zap.Int("products", len(table.Rows)))

	return &core.Payload{Tables: map[string]*core.Table{TableName: table}}, nil
}

// rawToString renders a raw JSON scalar (number or string) as its plain
// string form. The catalog serves numeric IDs and prices; other feeds use
// strings.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}

	var asFloat float64
	if err := json.Unmarshal(raw, &asFloat); err == nil {
		// Integers render without a trailing .0
		if asFloat == float64(int64(asFloat)) {
			return fmt.Sprintf("%d", int64(asFloat))
		}
		return fmt.Sprintf("%g", asFloat)
	}

	return string(raw)
}
