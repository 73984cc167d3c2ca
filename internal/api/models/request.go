package models

import "rebalance-sim/internal/settings"

// SimulateRequest represents the request body for running a simulation.
// When Settings is omitted the saved settings are used.
type SimulateRequest struct {
	Name     string             `json:"name,omitempty"`
	Settings *settings.Document `json:"settings,omitempty"`
	Options  SimulateOptions    `json:"options,omitempty"`
}

// SimulateOptions contains optional simulation parameters
type SimulateOptions struct {
	IncludeTimeline bool `json:"include_timeline,omitempty"` // default: false
}

// CompareRequest runs a base scenario under several variations
type CompareRequest struct {
	Base       settings.Document `json:"base"`
	Variations []Variation       `json:"variations" binding:"required,min=1"`
}

// Variation overrides the non-zero fields of the base scenario.
// A non-empty methods list replaces the base methods.
type Variation struct {
	Name     string            `json:"name" binding:"required"`
	Settings settings.Document `json:"settings"`
}
