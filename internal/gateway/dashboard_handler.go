package gateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chainsight-io/chainsight/internal/pipeline"
	"github.com/chainsight-io/chainsight/pkg/aggregate"
	"github.com/chainsight-io/chainsight/pkg/config"
	"github.com/chainsight-io/chainsight/pkg/export"
	"github.com/chainsight-io/chainsight/pkg/filter"
)

// DashboardHandler serves the dashboard's data needs: filtered views, KPI
// sets, rollups, diagnostics, and snapshot downloads.
type DashboardHandler struct {
	pipeline *pipeline.Pipeline
	cfg      *config.PipelineConfig
}

// NewDashboardHandler creates the handler.
func NewDashboardHandler(p *pipeline.Pipeline, cfg *config.PipelineConfig) *DashboardHandler {
	return &DashboardHandler{pipeline: p, cfg: cfg}
}

// RegisterRoutes mounts the dashboard API on the given group.
func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/kpis", h.GetKPIs)
	router.GET("/records", h.GetRecords)
	router.GET("/inventory", h.GetInventory)
	router.GET("/rollups/:series", h.GetRollup)
	router.GET("/sources", h.GetSources)
	router.GET("/export", h.ExportSnapshot)
	router.POST("/refresh", h.Refresh)
}

// parseSpec reads the filter specification from query parameters. Absent
// parameters leave the range open and the category unconstrained, which is
// the identity filter over the dataset.
func parseSpec(c *gin.Context) (filter.Spec, bool) {
	spec := filter.Spec{Category: c.Query("category")}

	var err error
	if s := c.Query("start"); s != "" {
		spec.Start, err = parseDate(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, expected YYYY-MM-DD or RFC3339"})
			return spec, false
		}
	}
	if s := c.Query("end"); s != "" {
		spec.End, err = parseDate(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, expected YYYY-MM-DD or RFC3339"})
			return spec, false
		}
	}
	if !spec.Start.IsZero() && !spec.End.IsZero() && spec.End.Before(spec.Start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end date before start date"})
		return spec, false
	}
	return spec, true
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// GetKPIs returns the KPI set and rollups for the requested filter.
func (h *DashboardHandler) GetKPIs(c *gin.Context) {
	spec, ok := parseSpec(c)
	if !ok {
		return
	}

	result, err := h.pipeline.Recompute(spec)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// GetRecords returns the filtered order view.
func (h *DashboardHandler) GetRecords(c *gin.Context) {
	spec, ok := parseSpec(c)
	if !ok {
		return
	}

	result, err := h.pipeline.Recompute(spec)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(result.View.Orders),
		"data":  result.View.Orders,
	})
}

// GetInventory returns the filtered inventory view.
func (h *DashboardHandler) GetInventory(c *gin.Context) {
	spec, ok := parseSpec(c)
	if !ok {
		return
	}

	result, err := h.pipeline.Recompute(spec)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(result.View.Inventory),
		"data":  result.View.Inventory,
	})
}

// GetRollup returns one named rollup series. The bucket query parameter
// selects day or month granularity where it applies; dense=true zero-fills
// gaps.
func (h *DashboardHandler) GetRollup(c *gin.Context) {
	spec, ok := parseSpec(c)
	if !ok {
		return
	}

	bucket := aggregate.BucketDay
	switch c.DefaultQuery("bucket", "day") {
	case "day":
	case "month":
		bucket = aggregate.BucketMonth
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "bucket must be day or month"})
		return
	}

	result, err := h.pipeline.Recompute(spec)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	var points []aggregate.Point
	timeSeries := false
	switch c.Param("series") {
	case "lead-time":
		points = aggregate.MeanLeadTimeOverTime(result.View.Orders, bucket)
		timeSeries = true
	case "stock":
		points = aggregate.MeanStockOverTime(result.View.Inventory, bucket)
		timeSeries = true
	case "delivered-by-category":
		points = aggregate.DeliveredByCategory(result.View.Orders)
	case "sales-by-category":
		points = aggregate.SalesByCategory(result.View.Orders)
	case "fill-rate-by-category":
		points = aggregate.MeanFillRateByCategory(result.View.Inventory)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown rollup series"})
		return
	}

	if timeSeries && c.Query("dense") == "true" {
		points = aggregate.Dense(points, bucket)
	}
	c.JSON(http.StatusOK, gin.H{"data": points})
}

// GetSources returns the per-source diagnostics of the last load: which
// sources contributed and why the failed ones did not.
func (h *DashboardHandler) GetSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.pipeline.Diagnostics()})
}

// ExportSnapshot streams the filtered order view as a delimited download.
func (h *DashboardHandler) ExportSnapshot(c *gin.Context) {
	spec, ok := parseSpec(c)
	if !ok {
		return
	}

	result, err := h.pipeline.Recompute(spec)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	delimiter := ','
	if h.cfg.Export.Delimiter != "" {
		delimiter = rune(h.cfg.Export.Delimiter[0])
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="filtered_orders.csv"`)
	if err := export.WriteOrdersCSV(c.Writer, result.View.Orders, delimiter); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Refresh rebuilds the dataset from all sources.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	if err := h.pipeline.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   err.Error(),
			"sources": h.pipeline.Diagnostics(),
		})
		return
	}

	ds := h.pipeline.Dataset()
	c.JSON(http.StatusOK, gin.H{
		"message":   "dataset rebuilt",
		"run_id":    ds.RunID,
		"orders":    len(ds.Orders),
		"inventory": len(ds.Inventory),
		"sources":   h.pipeline.Diagnostics(),
	})
}
