package simulation

// TimelinePoint is the portfolio state at the end of one month.
// Values[i] is the holding of Result.Methods[i]; Total is their sum.
type TimelinePoint struct {
	Month int

	Total  float64
	Values []float64

	// Rebalanced is true when holdings were reset to target weights this month
	// (month 0 included).
	Rebalanced bool
}

// Years is the point's position on a yearly axis.
func (p TimelinePoint) Years() float64 {
	return float64(p.Month) / 12.0
}

// Result is the complete monthly timeline of one run, months 0..years*12.
type Result struct {
	Methods  []string
	Timeline []TimelinePoint
}

// Final returns the last point of the timeline.
func (r *Result) Final() TimelinePoint {
	if r == nil || len(r.Timeline) == 0 {
		return TimelinePoint{}
	}
	return r.Timeline[len(r.Timeline)-1]
}

// Totals returns the total value series, indexed by month.
func (r *Result) Totals() []float64 {
	out := make([]float64, len(r.Timeline))
	for i, p := range r.Timeline {
		out[i] = p.Total
	}
	return out
}

// MethodSeries returns the holding series of the i-th method, indexed by month.
func (r *Result) MethodSeries(i int) []float64 {
	out := make([]float64, len(r.Timeline))
	for j, p := range r.Timeline {
		out[j] = p.Values[i]
	}
	return out
}
