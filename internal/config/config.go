package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rebalance-sim/internal/model"
	"rebalance-sim/internal/settings"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk scenario shape (YAML).
type Config struct {
	// Optional: load the methods table from a separate YAML (e.g. examples/methods/*.yaml).
	// If both MethodsFile and Scenario.Methods are provided, Scenario.Methods wins.
	MethodsFile string            `yaml:"methods_file"`
	Name        string            `yaml:"name"`
	Scenario    settings.Document `yaml:"scenario"`
	Output      OutputConfig      `yaml:"output"`
}

type OutputConfig struct {
	CSV       string `yaml:"csv"`
	Chart     string `yaml:"chart"`
	PerMethod bool   `yaml:"per_method"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.MethodsFile != "" {
		methodsPath := c.MethodsFile
		if !filepath.IsAbs(methodsPath) {
			// Prefer paths relative to the config file, fall back to cwd.
			cand := filepath.Join(filepath.Dir(path), methodsPath)
			if _, err := os.Stat(cand); err == nil {
				methodsPath = cand
			}
		}
		loaded, err := loadMethodsFile(methodsPath)
		if err != nil {
			return nil, err
		}
		c.Scenario = MergeScenario(settings.Document{Methods: loaded}, c.Scenario)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := c.Scenario.ToConfig(); err != nil {
		return fmt.Errorf("scenario invalid: %w", err)
	}
	return nil
}

// SimulationConfig returns the validated engine input.
func (c *Config) SimulationConfig() (model.SimulationConfig, error) {
	return c.Scenario.ToConfig()
}

type methodsFileWrapper struct {
	Methods []settings.Method `yaml:"methods"`
}

func loadMethodsFile(path string) ([]settings.Method, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w methodsFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Methods, nil
}

// MergeScenario overlays non-zero fields from override onto base.
// A non-empty override.Methods replaces the whole table.
func MergeScenario(base, override settings.Document) settings.Document {
	out := base
	out.Methods = append([]settings.Method(nil), base.Methods...)
	if override.Principal != 0 {
		out.Principal = override.Principal
	}
	if override.Years != 0 {
		out.Years = override.Years
	}
	if override.RebalanceMonths != 0 {
		out.RebalanceMonths = override.RebalanceMonths
	}
	// Note: a zero contribution cannot be expressed as an override.
	if override.Contribution != 0 {
		out.Contribution = override.Contribution
	}
	if len(override.Methods) > 0 {
		out.Methods = append([]settings.Method(nil), override.Methods...)
	}
	return out
}
