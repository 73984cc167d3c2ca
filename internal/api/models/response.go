package models

import (
	"time"

	"rebalance-sim/internal/analysis"
	"rebalance-sim/internal/settings"
	"rebalance-sim/internal/simulation"
)

// SimulateResponse represents the response from a simulation run
type SimulateResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Methods  []string        `json:"methods"`
	Summary  Summary         `json:"summary"`
	Timeline []TimelinePoint `json:"timeline,omitempty"`
}

// Summary contains the aggregated figures of one run
type Summary struct {
	Months           int       `json:"months"`
	Rebalances       int       `json:"rebalances"`
	Principal        float64   `json:"principal"`
	TotalContributed float64   `json:"total_contributed"`
	FinalValue       float64   `json:"final_value"`
	Gain             float64   `json:"gain"`
	AnnualizedReturn float64   `json:"annualized_return"`
	MinTotal         float64   `json:"min_total"`
	MaxTotal         float64   `json:"max_total"`
	MaxDrawdown      float64   `json:"max_drawdown"`
	MonthlyChangeP05 float64   `json:"monthly_change_p05"`
	MonthlyChangeP95 float64   `json:"monthly_change_p95"`
	Holdings         []Holding `json:"holdings"`
}

// Holding is one method's final position. Share and Target are fractions.
type Holding struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Share  float64 `json:"share"`
	Target float64 `json:"target"`
}

// TimelinePoint represents one month of the timeline
type TimelinePoint struct {
	Month      int       `json:"month"`
	Year       float64   `json:"year"`
	Total      float64   `json:"total"`
	Values     []float64 `json:"values"`
	Rebalanced bool      `json:"rebalanced"`
}

// TimelineResponse is returned by GET /simulate/:id/timeline
type TimelineResponse struct {
	ID       string          `json:"id"`
	Methods  []string        `json:"methods"`
	Timeline []TimelinePoint `json:"timeline"`
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation. Rejected variations
// have Rank 0 and Error set.
type ComparisonResult struct {
	Rank    int          `json:"rank,omitempty"`
	Name    string       `json:"name"`
	ID      string       `json:"id,omitempty"`
	Summary *Summary     `json:"summary,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// SettingsResponse wraps the current settings document
type SettingsResponse struct {
	Settings settings.Document `json:"settings"`
	// DecodedWith is the parser that accepted an uploaded document.
	DecodedWith settings.Stage `json:"decoded_with,omitempty"`
	Warning     string         `json:"warning,omitempty"`
}

// ScenarioResponse is one stored scenario
type ScenarioResponse struct {
	Name     string            `json:"name"`
	Settings settings.Document `json:"settings"`
}

// ScenarioListResponse lists stored scenarios
type ScenarioListResponse struct {
	Scenarios []ScenarioInfo `json:"scenarios"`
}

type ScenarioInfo struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PresetInfo describes one YAML preset. Error is set when the scenario does
// not validate.
type PresetInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	File    string   `json:"file"`
	Years   int      `json:"years"`
	Methods []string `json:"methods"`
	Error   string   `json:"error,omitempty"`
}

type PresetListResponse struct {
	Presets []PresetInfo `json:"presets"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func NewSummary(s analysis.Summary) Summary {
	out := Summary{
		Months:           s.Months,
		Rebalances:       s.Rebalances,
		Principal:        s.Principal,
		TotalContributed: s.TotalContributed,
		FinalValue:       s.FinalValue,
		Gain:             s.Gain,
		AnnualizedReturn: s.AnnualizedReturn,
		MinTotal:         s.MinTotal,
		MaxTotal:         s.MaxTotal,
		MaxDrawdown:      s.MaxDrawdown,
		MonthlyChangeP05: s.MonthlyChangeP05,
		MonthlyChangeP95: s.MonthlyChangeP95,
		Holdings:         make([]Holding, len(s.Holdings)),
	}
	for i, h := range s.Holdings {
		out.Holdings[i] = Holding(h)
	}
	return out
}

func NewTimeline(res *simulation.Result) []TimelinePoint {
	out := make([]TimelinePoint, len(res.Timeline))
	for i, p := range res.Timeline {
		out[i] = TimelinePoint{
			Month:      p.Month,
			Year:       p.Years(),
			Total:      p.Total,
			Values:     p.Values,
			Rebalanced: p.Rebalanced,
		}
	}
	return out
}
