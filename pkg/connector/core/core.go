// Package core defines the source connector contract and the raw table
// shapes adapters hand to the schema normalizer.
package core

import (
	"context"
	"sort"
)

// SourceKind identifies what a raw table normalizes into.
type SourceKind string

const (
	// KindOrders marks tables holding order history rows.
	KindOrders SourceKind = "orders"
	// KindCatalog marks tables holding product catalog rows.
	KindCatalog SourceKind = "catalog"
	// KindInventory marks tables holding inventory snapshot rows.
	KindInventory SourceKind = "inventory"
)

// Table is one rectangular block of raw rows from a source: a sheet, a
// delimited file, or a decoded JSON array. Values are untyped; the schema
// normalizer owns all coercion.
type Table struct {
	// Name is the sheet or table name the rows came from
	Name string
	// Kind states what the rows normalize into
	Kind SourceKind
	// Columns preserves the source column order
	Columns []string
	// Rows are raw records keyed by column name
	Rows []map[string]interface{}
}

// Payload is everything one adapter extracted in a single pass, keyed by
// sheet/table name. Adapters asked for a specific sheet return exactly one
// entry; adapters with no selector return every sheet found.
type Payload struct {
	Tables map[string]*Table
}

// TableNames returns the payload's table names sorted ascending. Map
// iteration order is unstable, so diagnostics and tests go through this.
func (p *Payload) TableNames() []string {
	names := make([]string, 0, len(p.Tables))
	for name := range p.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RowCount returns the total rows across all tables in the payload.
func (p *Payload) RowCount() int {
	n := 0
	for _, t := range p.Tables {
		n += len(t.Rows)
	}
	return n
}

// Source is a connector that extracts raw tables from one external source.
// Extract is synchronous and single-shot: adapters do not retry. The
// context carries the only deadline that applies (the catalog fetch).
type Source interface {
	// Name identifies the adapter for registration and diagnostics
	Name() string
	// Extract reads everything the source has to offer
	Extract(ctx context.Context) (*Payload, error)
}
