package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rebalance-sim/internal/api/models"
	"rebalance-sim/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PresetHandler serves the YAML scenario configs found in a directory
// (examples/ by default) as read-only presets.
type PresetHandler struct {
	dir string
	sim *SimulationHandler
	log *logrus.Logger
}

func NewPresetHandler(dir string, sim *SimulationHandler, log *logrus.Logger) *PresetHandler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	log.WithField("dir", dir).Debug("preset directory")
	return &PresetHandler{dir: dir, sim: sim, log: log}
}

// ListPresets handles GET /api/v1/presets
// Files that fail to parse are skipped; invalid scenarios are listed with their error.
func (h *PresetHandler) ListPresets(c *gin.Context) {
	presets := []models.PresetInfo{}

	entries, err := os.ReadDir(h.dir)
	if err != nil {
		h.log.WithError(err).WithField("dir", h.dir).Warn("failed to read preset directory")
		c.JSON(http.StatusOK, models.PresetListResponse{Presets: presets})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		info, err := h.loadPresetInfo(entry.Name())
		if err != nil {
			h.log.WithError(err).WithField("file", entry.Name()).Debug("skipping preset")
			continue
		}
		presets = append(presets, *info)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].ID < presets[j].ID })

	c.JSON(http.StatusOK, models.PresetListResponse{Presets: presets})
}

// GetPreset handles GET /api/v1/presets/:id
func (h *PresetHandler) GetPreset(c *gin.Context) {
	cfg, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.ScenarioResponse{Name: presetName(cfg, c.Param("id")), Settings: cfg.Scenario})
}

// RunPreset handles POST /api/v1/presets/:id/run
func (h *PresetHandler) RunPreset(c *gin.Context) {
	cfg, ok := h.load(c)
	if !ok {
		return
	}
	run, err := h.sim.run(presetName(cfg, c.Param("id")), cfg.Scenario)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildResponse(run, c.Query("include_timeline") == "true"))
}

func (h *PresetHandler) load(c *gin.Context) (*config.Config, bool) {
	id := c.Param("id")
	path, ok := h.path(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: fmt.Sprintf("preset %q not found", id),
			},
		})
		return nil, false
	}
	cfg, err := config.LoadUnchecked(path)
	if err != nil {
		h.log.WithError(err).WithField("file", path).Warn("failed to load preset")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "PRESET_ERROR",
				Message: err.Error(),
			},
		})
		return nil, false
	}
	return cfg, true
}

// path resolves a preset ID (file name without extension) inside the preset
// directory. IDs containing path separators are rejected.
func (h *PresetHandler) path(id string) (string, bool) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", false
	}
	for _, ext := range []string{".yaml", ".yml"} {
		p := filepath.Join(h.dir, id+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

func (h *PresetHandler) loadPresetInfo(filename string) (*models.PresetInfo, error) {
	cfg, err := config.LoadUnchecked(filepath.Join(h.dir, filename))
	if err != nil {
		return nil, err
	}

	// "three_fund.yaml" -> "three_fund"
	id := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := &models.PresetInfo{
		ID:      id,
		Name:    presetName(cfg, id),
		File:    filename,
		Years:   cfg.Scenario.Years,
		Methods: make([]string, len(cfg.Scenario.Methods)),
	}
	for i, m := range cfg.Scenario.Methods {
		info.Methods[i] = m.Name
	}
	if err := cfg.Validate(); err != nil {
		info.Error = err.Error()
	}
	return info, nil
}

func presetName(cfg *config.Config, id string) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return id
}

func isYAML(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}
