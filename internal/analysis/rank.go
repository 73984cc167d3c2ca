package analysis

import (
	"sort"
)

// Named pairs a scenario name with its summary.
type Named struct {
	Name    string
	Summary Summary
}

type Ranked struct {
	Rank int
	Named
}

// RankByFinalValue sorts scenarios by final portfolio value, best first.
// Ties keep their input order.
func RankByFinalValue(scenarios []Named) []Ranked {
	out := make([]Ranked, len(scenarios))
	for i, s := range scenarios {
		out[i] = Ranked{Named: s}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Summary.FinalValue > out[j].Summary.FinalValue
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
