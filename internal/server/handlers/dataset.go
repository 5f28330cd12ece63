package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/service/analysis"
)

// GetOverview returns the dataset-level summary.
// GET /api/sessions/:id/overview
func (h *Handlers) GetOverview(c *gin.Context) {
	ds, ok := h.dataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.analyzer.BuildOverview(ds))
}

// ListVariables returns the variable metadata, optionally filtered by a
// search query over names and descriptions.
// GET /api/sessions/:id/variables?q=
func (h *Handlers) ListVariables(c *gin.Context) {
	ds, ok := h.dataset(c)
	if !ok {
		return
	}

	metas := analysis.SearchVariables(ds, c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"total":     ds.Table.ColumnCount(),
		"variables": metas,
	})
}

// GetVariable returns the detailed analysis of one variable.
// GET /api/sessions/:id/variables/:name
func (h *Handlers) GetVariable(c *gin.Context) {
	ds, ok := h.dataset(c)
	if !ok {
		return
	}

	report, err := h.analyzer.BuildVariableReport(ds, c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetDictionary returns the merged dictionary for browsing.
// GET /api/sessions/:id/dictionary?q=
func (h *Handlers) GetDictionary(c *gin.Context) {
	ds, ok := h.dataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analysis.BuildDictionaryView(ds, c.Query("q")))
}

// GetCorrelations returns the Pearson correlation report.
// GET /api/sessions/:id/correlations
func (h *Handlers) GetCorrelations(c *gin.Context) {
	ds, ok := h.dataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.analyzer.BuildCorrelations(ds))
}

// GetQuality returns the composite data-quality report.
// GET /api/sessions/:id/quality
func (h *Handlers) GetQuality(c *gin.Context) {
	ds, ok := h.dataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.analyzer.BuildQualityReport(ds))
}

// GetMissing returns the missing-data report.
// GET /api/sessions/:id/missing
func (h *Handlers) GetMissing(c *gin.Context) {
	ds, ok := h.dataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.analyzer.BuildMissingReport(ds))
}
