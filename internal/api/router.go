// Package api wires the HTTP routes of the simulation service.
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"rebalance-sim/internal/api/cache"
	"rebalance-sim/internal/api/handlers"
	"rebalance-sim/internal/api/middleware"
	"rebalance-sim/internal/api/models"
	"rebalance-sim/internal/logging"
	"rebalance-sim/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the router hands to its handlers.
// Scenarios may be nil, in which case the scenario routes are not mounted.
type Deps struct {
	Log         *logrus.Logger
	Settings    settings.Store
	Scenarios   handlers.ScenarioStore
	Results     *cache.ResultCache
	CORSOrigins []string

	// PresetsDir holds read-only YAML scenario configs; skipped when empty.
	PresetsDir string
	// StaticDir holds a built single-page UI; skipped when empty or missing.
	StaticDir string
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logging.Discard()
	}

	router := gin.New()
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.ErrorHandler(d.Log))

	simHandler := handlers.NewSimulationHandler(d.Results, d.Settings, d.Log)
	settingsHandler := handlers.NewSettingsHandler(d.Settings, d.Log)

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", health)

	api := router.Group("/api/v1")
	{
		api.GET("/health", health)

		api.POST("/simulate", simHandler.Simulate)
		api.POST("/simulate/compare", simHandler.Compare)
		api.GET("/simulate/:id/timeline", simHandler.GetTimeline)
		api.GET("/simulate/:id/timeline.csv", simHandler.GetTimelineCSV)
		api.GET("/simulate/:id/chart.png", simHandler.GetChart)
		api.GET("/simulate/:id/report", simHandler.GetReport)

		api.GET("/settings", settingsHandler.GetSettings)
		api.PUT("/settings", settingsHandler.PutSettings)
		api.GET("/settings/default", settingsHandler.GetDefaultSettings)

		if d.Scenarios != nil {
			scenarioHandler := handlers.NewScenarioHandler(d.Scenarios, simHandler, d.Log)
			api.GET("/scenarios", scenarioHandler.ListScenarios)
			api.GET("/scenarios/:name", scenarioHandler.GetScenario)
			api.PUT("/scenarios/:name", scenarioHandler.PutScenario)
			api.DELETE("/scenarios/:name", scenarioHandler.DeleteScenario)
			api.POST("/scenarios/:name/run", scenarioHandler.RunScenario)
		}

		if d.PresetsDir != "" {
			presetHandler := handlers.NewPresetHandler(d.PresetsDir, simHandler, d.Log)
			api.GET("/presets", presetHandler.ListPresets)
			api.GET("/presets/:id", presetHandler.GetPreset)
			api.POST("/presets/:id/run", presetHandler.RunPreset)
		}
	}

	serveStatic(router, d.StaticDir, d.Log)
	return router
}

// serveStatic serves the UI bundle and falls back to index.html for non-API
// paths so client-side routing works.
func serveStatic(router *gin.Engine, dir string, log *logrus.Logger) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "NOT_FOUND", Message: "Not found"},
		})
	}
	if dir == "" {
		router.NoRoute(notFound)
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.WithField("dir", dir).Info("static directory not found, skipping static file serving")
		router.NoRoute(notFound)
		return
	}

	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	})
	log.WithField("dir", dir).Info("serving static files")
}
