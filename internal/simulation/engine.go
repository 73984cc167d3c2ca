package simulation

import (
	"fmt"
	"math"

	"rebalance-sim/internal/model"
)

// Engine runs rebalancing simulations. It holds no state, so one Engine may
// serve concurrent runs.
type Engine struct{}

// New returns an Engine.
func New() *Engine { return &Engine{} }

// Run simulates cfg month by month and returns a fresh timeline.
// The config is validated first; an invalid config yields no timeline at all.
func (e *Engine) Run(cfg model.SimulationConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := len(cfg.Methods)
	names := make([]string, n)
	weights := make([]float64, n)
	factors := make([]float64, n)
	holdings := make([]float64, n)
	for i, m := range cfg.Methods {
		names[i] = m.Name
		weights[i] = m.TargetWeight
		factors[i] = m.MonthlyFactor()
		// Month 0 is the initial rebalance.
		holdings[i] = cfg.InitialPrincipal * m.TargetWeight
	}

	months := cfg.Months()
	timeline := make([]TimelinePoint, 0, months+1)
	timeline = append(timeline, snapshot(0, true, holdings))

	for m := 1; m <= months; m++ {
		for i := range holdings {
			holdings[i] *= factors[i]
		}

		rebalanced := m%cfg.RebalanceIntervalMonths == 0
		if rebalanced {
			total := sum(holdings) + cfg.ContributionPerRebalance
			for i := range holdings {
				holdings[i] = total * weights[i]
			}
		}

		p := snapshot(m, rebalanced, holdings)
		if math.IsInf(p.Total, 0) || math.IsNaN(p.Total) {
			return nil, &model.ValidationError{
				Rule:    model.RuleNonNumeric,
				Message: fmt.Sprintf("portfolio value overflows float64 at month %d", m),
			}
		}
		timeline = append(timeline, p)
	}

	return &Result{
		Methods:  names,
		Timeline: timeline,
	}, nil
}

func snapshot(month int, rebalanced bool, holdings []float64) TimelinePoint {
	values := make([]float64, len(holdings))
	copy(values, holdings)
	return TimelinePoint{
		Month:      month,
		Total:      sum(values),
		Values:     values,
		Rebalanced: rebalanced,
	}
}

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}
