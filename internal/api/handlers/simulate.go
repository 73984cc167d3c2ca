package handlers

import (
	"fmt"
	"net/http"
	"sync"

	"rebalance-sim/internal/analysis"
	"rebalance-sim/internal/api/cache"
	"rebalance-sim/internal/api/models"
	"rebalance-sim/internal/chart"
	"rebalance-sim/internal/config"
	"rebalance-sim/internal/model"
	"rebalance-sim/internal/report"
	"rebalance-sim/internal/settings"
	"rebalance-sim/internal/simulation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SimulationHandler handles simulation requests and serves cached results
type SimulationHandler struct {
	engine   *simulation.Engine
	cache    *cache.ResultCache
	settings settings.Store
	log      *logrus.Logger
}

// NewSimulationHandler creates a new simulation handler. settingsStore is
// used when a request carries no settings of its own.
func NewSimulationHandler(results *cache.ResultCache, settingsStore settings.Store, log *logrus.Logger) *SimulationHandler {
	return &SimulationHandler{
		engine:   simulation.New(),
		cache:    results,
		settings: settingsStore,
		log:      log,
	}
}

// Simulate handles POST /api/v1/simulate
func (h *SimulationHandler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	var doc settings.Document
	if req.Settings != nil {
		doc = *req.Settings
	} else if h.settings == nil {
		doc = settings.Default()
	} else {
		loaded, err := h.settings.Load()
		if err != nil {
			h.log.WithError(err).Warn("using default settings")
		}
		doc = loaded
	}

	run, err := h.run(req.Name, doc)
	if err != nil {
		writeRunError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildResponse(run, req.Options.IncludeTimeline))
}

// GetTimeline handles GET /api/v1/simulate/:id/timeline
func (h *SimulationHandler) GetTimeline(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.TimelineResponse{
		ID:       run.ID,
		Methods:  run.Result.Methods,
		Timeline: models.NewTimeline(run.Result),
	})
}

// GetTimelineCSV handles GET /api/v1/simulate/:id/timeline.csv
func (h *SimulationHandler) GetTimelineCSV(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="timeline-%s.csv"`, run.ID))
	c.Status(http.StatusOK)
	if err := simulation.WriteTimeline(c.Writer, run.Result); err != nil {
		_ = c.Error(err)
	}
}

// GetChart handles GET /api/v1/simulate/:id/chart.png
// Query: per_method=true adds one line per method.
func (h *SimulationHandler) GetChart(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	img, err := chart.RenderTimeline(run.Result, chart.Options{
		Title:     run.Name,
		PerMethod: c.Query("per_method") == "true",
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "CHART_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// GetReport handles GET /api/v1/simulate/:id/report
// Query: currency=EUR (default USD).
func (h *SimulationHandler) GetReport(c *gin.Context) {
	run, ok := h.lookup(c)
	if !ok {
		return
	}
	md := report.Markdown(run.Name, run.Result, run.Summary, c.Query("currency"))
	html, err := report.HTML(md)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "REPORT_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// Compare handles POST /api/v1/simulate/compare
func (h *SimulationHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	seen := make(map[string]bool, len(req.Variations))
	for _, v := range req.Variations {
		if seen[v.Name] {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "INVALID_REQUEST",
					Message: fmt.Sprintf("duplicate variation name %q", v.Name),
				},
			})
			return
		}
		seen[v.Name] = true
	}

	runs := make([]*cache.Run, len(req.Variations))
	errs := make([]error, len(req.Variations))
	var wg sync.WaitGroup
	for i, variation := range req.Variations {
		wg.Add(1)
		go func(i int, v models.Variation) {
			defer wg.Done()
			merged := config.MergeScenario(req.Base, v.Settings)
			runs[i], errs[i] = h.run(v.Name, merged)
		}(i, variation)
	}
	wg.Wait()

	var named []analysis.Named
	ids := map[string]string{}
	var rejected []models.ComparisonResult
	for i, v := range req.Variations {
		if errs[i] != nil {
			detail := runErrorDetail(errs[i])
			rejected = append(rejected, models.ComparisonResult{Name: v.Name, Error: &detail})
			continue
		}
		named = append(named, analysis.Named{Name: v.Name, Summary: runs[i].Summary})
		ids[v.Name] = runs[i].ID
	}

	comparison := make([]models.ComparisonResult, 0, len(req.Variations))
	for _, r := range analysis.RankByFinalValue(named) {
		summary := models.NewSummary(r.Summary)
		comparison = append(comparison, models.ComparisonResult{
			Rank:    r.Rank,
			Name:    r.Name,
			ID:      ids[r.Name],
			Summary: &summary,
		})
	}
	comparison = append(comparison, rejected...)

	c.JSON(http.StatusOK, models.CompareResponse{Comparison: comparison})
}

// run validates doc, simulates it and caches the result.
func (h *SimulationHandler) run(name string, doc settings.Document) (*cache.Run, error) {
	cfg, err := doc.ToConfig()
	if err != nil {
		return nil, err
	}
	res, err := h.engine.Run(cfg)
	if err != nil {
		return nil, err
	}
	run := &cache.Run{
		Name:    name,
		Config:  cfg,
		Result:  res,
		Summary: analysis.Summarize(cfg, res),
	}
	h.cache.Set(run)
	h.log.WithFields(logrus.Fields{
		"id":      run.ID,
		"name":    name,
		"methods": len(cfg.Methods),
		"months":  cfg.Months(),
		"final":   run.Summary.FinalValue,
	}).Debug("simulation complete")
	return run, nil
}

func (h *SimulationHandler) lookup(c *gin.Context) (*cache.Run, bool) {
	id := c.Param("id")
	run, ok := h.cache.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: fmt.Sprintf("no simulation result with id %q (results expire)", id),
			},
		})
		return nil, false
	}
	return run, true
}

func buildResponse(run *cache.Run, includeTimeline bool) models.SimulateResponse {
	response := models.SimulateResponse{
		ID:      run.ID,
		Name:    run.Name,
		Methods: run.Result.Methods,
		Summary: models.NewSummary(run.Summary),
	}
	if includeTimeline {
		response.Timeline = models.NewTimeline(run.Result)
	}
	return response
}

func runErrorDetail(err error) models.ErrorDetail {
	if ve, ok := model.AsValidationError(err); ok {
		return models.ErrorDetail{
			Code:    "INVALID_CONFIG",
			Message: ve.Message,
			Details: map[string]interface{}{"rule": string(ve.Rule)},
		}
	}
	return models.ErrorDetail{
		Code:    "SIMULATION_ERROR",
		Message: err.Error(),
	}
}

func writeRunError(c *gin.Context, err error) {
	detail := runErrorDetail(err)
	status := http.StatusBadRequest
	if detail.Code != "INVALID_CONFIG" {
		status = http.StatusInternalServerError
	}
	c.JSON(status, models.ErrorResponse{Error: detail})
}
