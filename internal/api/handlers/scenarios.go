package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"rebalance-sim/internal/api/models"
	"rebalance-sim/internal/model"
	"rebalance-sim/internal/settings"
	"rebalance-sim/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ScenarioStore is the named scenario library.
type ScenarioStore interface {
	Save(ctx context.Context, name string, doc settings.Document) error
	Get(ctx context.Context, name string) (settings.Document, error)
	List(ctx context.Context) ([]store.Entry, error)
	Delete(ctx context.Context, name string) error
}

// ScenarioHandler handles the scenario library
type ScenarioHandler struct {
	store ScenarioStore
	sim   *SimulationHandler
	log   *logrus.Logger
}

func NewScenarioHandler(scenarios ScenarioStore, sim *SimulationHandler, log *logrus.Logger) *ScenarioHandler {
	return &ScenarioHandler{store: scenarios, sim: sim, log: log}
}

// ListScenarios handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	entries, err := h.store.List(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}
	out := make([]models.ScenarioInfo, len(entries))
	for i, e := range entries {
		out[i] = models.ScenarioInfo{Name: e.Name, UpdatedAt: e.UpdatedAt}
	}
	c.JSON(http.StatusOK, models.ScenarioListResponse{Scenarios: out})
}

// GetScenario handles GET /api/v1/scenarios/:name
func (h *ScenarioHandler) GetScenario(c *gin.Context) {
	name := c.Param("name")
	doc, err := h.store.Get(c.Request.Context(), name)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ScenarioResponse{Name: name, Settings: doc})
}

// PutScenario handles PUT /api/v1/scenarios/:name with a settings document body
func (h *ScenarioHandler) PutScenario(c *gin.Context) {
	name := c.Param("name")
	var doc settings.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}
	if err := h.store.Save(c.Request.Context(), name, doc); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ScenarioResponse{Name: name, Settings: doc})
}

// DeleteScenario handles DELETE /api/v1/scenarios/:name
func (h *ScenarioHandler) DeleteScenario(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("name")); err != nil {
		h.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RunScenario handles POST /api/v1/scenarios/:name/run
func (h *ScenarioHandler) RunScenario(c *gin.Context) {
	name := c.Param("name")
	doc, err := h.store.Get(c.Request.Context(), name)
	if err != nil {
		h.storeError(c, err)
		return
	}
	run, err := h.sim.run(name, doc)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildResponse(run, c.Query("include_timeline") == "true"))
}

func (h *ScenarioHandler) storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: fmt.Sprintf("scenario %q not found", c.Param("name")),
			},
		})
		return
	}
	if _, ok := model.AsValidationError(err); ok {
		writeRunError(c, err)
		return
	}
	h.log.WithError(err).Error("scenario store failed")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "STORE_ERROR",
			Message: err.Error(),
		},
	})
}
