package analysis

import (
	"math"
	"sort"

	"rebalance-sim/internal/model"
	"rebalance-sim/internal/simulation"
)

// Summary condenses a simulation run into the figures shown next to the chart
// and used for ranking scenarios.
type Summary struct {
	Months     int
	Rebalances int

	Principal        float64
	TotalContributed float64 // principal + every periodic contribution
	FinalValue       float64
	Gain             float64 // FinalValue - TotalContributed

	// AnnualizedReturn is (FinalValue/TotalContributed)^(1/years) - 1.
	// With contributions this is a rough figure, since later money had less time to grow.
	AnnualizedReturn float64

	MinTotal    float64
	MaxTotal    float64
	MaxDrawdown float64 // largest peak-to-trough fall of the total, as a fraction of the peak

	// Month-over-month change of the total, as fractions.
	MonthlyChangeP05 float64
	MonthlyChangeP95 float64

	Holdings []Holding
}

// Holding is one method's final position.
type Holding struct {
	Name   string
	Value  float64
	Share  float64 // Value / FinalValue
	Target float64
}

func Summarize(cfg model.SimulationConfig, res *simulation.Result) Summary {
	s := Summary{Principal: cfg.InitialPrincipal}
	if res == nil || len(res.Timeline) == 0 {
		return s
	}

	s.Months = len(res.Timeline) - 1
	for _, p := range res.Timeline[1:] {
		if p.Rebalanced {
			s.Rebalances++
		}
	}
	s.TotalContributed = cfg.InitialPrincipal + float64(s.Rebalances)*cfg.ContributionPerRebalance

	final := res.Final()
	s.FinalValue = final.Total
	s.Gain = s.FinalValue - s.TotalContributed
	s.AnnualizedReturn = annualized(s.TotalContributed, s.FinalValue, float64(s.Months)/12)

	minv := math.Inf(1)
	maxv := math.Inf(-1)
	peak := math.Inf(-1)
	changes := make([]float64, 0, s.Months)
	for i, p := range res.Timeline {
		v := p.Total
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > s.MaxDrawdown {
				s.MaxDrawdown = dd
			}
		}
		if i > 0 {
			if prev := res.Timeline[i-1].Total; prev != 0 {
				changes = append(changes, v/prev-1)
			}
		}
	}
	s.MinTotal = minv
	s.MaxTotal = maxv

	sort.Float64s(changes)
	s.MonthlyChangeP05 = percentileSorted(changes, 0.05)
	s.MonthlyChangeP95 = percentileSorted(changes, 0.95)

	s.Holdings = make([]Holding, len(res.Methods))
	for i, name := range res.Methods {
		h := Holding{Name: name, Value: final.Values[i]}
		if i < len(cfg.Methods) {
			h.Target = cfg.Methods[i].TargetWeight
		}
		if final.Total != 0 {
			h.Share = h.Value / final.Total
		}
		s.Holdings[i] = h
	}
	return s
}

func annualized(start, end, years float64) float64 {
	if start <= 0 || years <= 0 {
		return 0
	}
	if end <= 0 {
		return -1
	}
	return math.Pow(end/start, 1/years) - 1
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
