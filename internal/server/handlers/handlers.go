// Package handlers implements the dashboard HTTP API: workbook upload and
// the session-scoped analysis views consumed by the frontend.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/config"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/service/analysis"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/service/dictionary"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/service/excel"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/service/session"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/service/tagger"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/store"
)

// Handlers is the API handler set.
type Handlers struct {
	cfg        *config.AppConfig
	store      *store.Store
	sessions   *session.Manager
	uploadsDir string

	classifier *excel.Classifier
	merger     *dictionary.Merger
	tagger     *tagger.Tagger
	analyzer   *analysis.Analyzer
	typeCfg    tagger.TypeConfig
}

// New wires the handler set from configuration. Keyword lists and thresholds
// flow in from config so they can be tuned without code changes. uploadsDir
// is where the raw workbook of each session is kept; "" disables keeping it.
func New(cfg *config.AppConfig, st *store.Store, uploadsDir string) *Handlers {
	clCfg := excel.DefaultClassifierConfig()
	clCfg.MinDataRows = cfg.Analysis.MinDataRows
	clCfg.MinDataColumns = cfg.Analysis.MinDataColumns
	clCfg.MaxDictColumns = cfg.Analysis.MaxDictColumns

	return &Handlers{
		cfg:        cfg,
		store:      st,
		sessions:   session.NewManager(cfg.Analysis.MaxSessions),
		uploadsDir: uploadsDir,
		classifier: excel.NewClassifier(clCfg),
		merger:     dictionary.NewMerger(dictionary.DefaultColumnPatterns()),
		tagger:     tagger.New(tagger.Taxonomy(cfg.Taxonomy)),
		analyzer: analysis.NewAnalyzer(analysis.Config{
			HighMissingPercent: cfg.Analysis.HighMissingPercent,
			CorrelationMaxCols: cfg.Analysis.CorrelationMaxCols,
			TopCorrelations:    cfg.Analysis.TopCorrelations,
			PreviewRows:        cfg.Analysis.PreviewRows,
			MaxValueCounts:     analysis.DefaultConfig().MaxValueCounts,
		}),
		typeCfg: tagger.TypeConfig{
			SmallCardinalityMax:   cfg.Analysis.SmallCardinalityMax,
			SmallCardinalityRatio: cfg.Analysis.SmallCardinalityRatio,
		},
	}
}

// RegisterRoutes registers the API routes.
func (h *Handlers) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.POST("/upload", h.Upload)

	sessions := router.Group("/sessions/:id")
	{
		sessions.GET("/overview", h.GetOverview)
		sessions.GET("/variables", h.ListVariables)
		sessions.GET("/variables/:name", h.GetVariable)
		sessions.GET("/dictionary", h.GetDictionary)
		sessions.GET("/correlations", h.GetCorrelations)
		sessions.GET("/missing", h.GetMissing)
		sessions.GET("/quality", h.GetQuality)
	}
}

// StatusResponse is the server status payload.
type StatusResponse struct {
	ActiveSessions int               `json:"activeSessions"`
	TotalUploads   int               `json:"totalUploads"`
	LastUpload     *store.LastUpload `json:"lastUpload,omitempty"`
}

// GetStatus reports live sessions and upload history.
// GET /api/status
func (h *Handlers) GetStatus(c *gin.Context) {
	total, err := h.store.CountUploads()
	if err != nil {
		total = 0
	}
	last, err := h.store.GetLastUpload()
	if err != nil {
		last = nil
	}

	c.JSON(http.StatusOK, StatusResponse{
		ActiveSessions: h.sessions.Count(),
		TotalUploads:   total,
		LastUpload:     last,
	})
}

// dataset resolves the session id parameter, answering 404 when unknown.
func (h *Handlers) dataset(c *gin.Context) (*model.Dataset, bool) {
	id := c.Param("id")
	ds, err := h.sessions.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found or expired"})
		return nil, false
	}
	return ds, true
}
