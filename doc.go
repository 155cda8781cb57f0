// Package chainsight provides a supply-chain analytics pipeline: it ingests
// heterogeneous sources (tabular order history, a remote product catalog,
// simulated inventory snapshots), unifies them into one record model, and
// derives operational KPIs (lead time, fill rate, inventory turnover, and
// stockout risk) under arbitrary date-range and category filters.
//
// # Architecture
//
// Data flows through five stages:
//
// 1. Source adapters (pkg/connector/sources) extract raw tables from each
// source. Extraction is partial-failure tolerant: a failed source is logged
// and skipped, the rest continue.
//
// 2. The schema normalizer (pkg/schema) maps raw columns into the unified
// Order/Inventory model through declarative mapping tables, coercing types
// and flagging data-quality anomalies instead of rejecting rows.
//
// 3. The filter engine (pkg/filter) derives borrowed, insertion-ordered
// views per date-range and category request.
//
// 4. The metrics engine (pkg/kpi) and aggregation (pkg/aggregate) compute
// the KPI set and chart rollups, with safe division throughout.
//
// 5. The gateway (internal/gateway) serves views, KPIs, rollups, and
// snapshot exports to the dashboard.
//
// # Quick Start
//
// Run the pipeline once and print the KPI set:
//
//	chainsight run --config config.yaml --start 2024-01-01 --end 2024-06-30
//
// Serve the dashboard API:
//
//	chainsight serve --config config.yaml
package chainsight
