package handlers

import (
	"io"
	"net/http"

	"rebalance-sim/internal/api/models"
	"rebalance-sim/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxSettingsBytes = 1 << 20

// SettingsHandler exposes the saved settings document
type SettingsHandler struct {
	store settings.Store
	log   *logrus.Logger
}

func NewSettingsHandler(store settings.Store, log *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{store: store, log: log}
}

// GetSettings handles GET /api/v1/settings
// Unreadable settings fall back to defaults, with a warning in the response.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	doc, err := h.store.Load()
	response := models.SettingsResponse{Settings: doc}
	if err != nil {
		h.log.WithError(err).Warn("settings unavailable, serving defaults")
		response.Warning = err.Error()
	}
	c.JSON(http.StatusOK, response)
}

// GetDefaultSettings handles GET /api/v1/settings/default
func (h *SettingsHandler) GetDefaultSettings(c *gin.Context) {
	c.JSON(http.StatusOK, models.SettingsResponse{Settings: settings.Default()})
}

// PutSettings handles PUT /api/v1/settings
// The body is decoded leniently (JSON, Hjson, then repaired JSON); the
// document is validated before it is saved.
func (h *SettingsHandler) PutSettings(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSettingsBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	doc, stage, err := settings.Decode(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}
	if stage != settings.StageJSON {
		h.log.WithField("stage", stage).Info("settings accepted by lenient decoder")
	}

	if _, err := doc.ToConfig(); err != nil {
		writeRunError(c, err)
		return
	}

	if err := h.store.Save(doc); err != nil {
		h.log.WithError(err).Error("failed to save settings")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "PERSISTENCE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SettingsResponse{Settings: doc, DecodedWith: stage})
}
