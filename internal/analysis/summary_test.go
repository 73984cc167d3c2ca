package analysis

import (
	"math"
	"testing"

	"rebalance-sim/internal/model"
	"rebalance-sim/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, cfg model.SimulationConfig) *simulation.Result {
	t.Helper()
	res, err := simulation.New().Run(cfg)
	require.NoError(t, err)
	return res
}

func TestSummarize_NoContributions(t *testing.T) {
	cfg := model.SimulationConfig{
		InitialPrincipal:        1000,
		HorizonYears:            3,
		RebalanceIntervalMonths: 12,
		Methods: []model.InvestmentMethod{
			{Name: "Only", AnnualReturn: 0.10, TargetWeight: 1},
		},
	}
	s := Summarize(cfg, run(t, cfg))

	assert.Equal(t, 36, s.Months)
	assert.Equal(t, 3, s.Rebalances)
	assert.Equal(t, 1000.0, s.TotalContributed)
	assert.InDelta(t, 1000*math.Pow(1.1, 3), s.FinalValue, 1e-6)
	assert.InDelta(t, s.FinalValue-1000, s.Gain, 1e-9)
	assert.InDelta(t, 0.10, s.AnnualizedReturn, 1e-9)
	assert.Equal(t, 0.0, s.MaxDrawdown)
	assert.Equal(t, 1000.0, s.MinTotal)
	assert.InDelta(t, math.Pow(1.1, 1.0/12)-1, s.MonthlyChangeP05, 1e-9)

	require.Len(t, s.Holdings, 1)
	assert.Equal(t, "Only", s.Holdings[0].Name)
	assert.InDelta(t, 1.0, s.Holdings[0].Share, 1e-12)
}

func TestSummarize_ContributionsAndDrawdown(t *testing.T) {
	cfg := model.SimulationConfig{
		InitialPrincipal:         1000,
		HorizonYears:             1,
		RebalanceIntervalMonths:  6,
		ContributionPerRebalance: 50,
		Methods: []model.InvestmentMethod{
			{Name: "Falling", AnnualReturn: -0.2, TargetWeight: 1},
		},
	}
	s := Summarize(cfg, run(t, cfg))

	assert.Equal(t, 2, s.Rebalances)
	assert.Equal(t, 1100.0, s.TotalContributed)
	assert.Greater(t, s.MaxDrawdown, 0.0)
	assert.Less(t, s.Gain, 0.0)
	assert.Equal(t, 1000.0, s.MaxTotal)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(model.SimulationConfig{InitialPrincipal: 10}, nil)
	assert.Equal(t, 10.0, s.Principal)
	assert.Zero(t, s.Months)
}

func TestPercentileSorted(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, percentileSorted(vals, 0))
	assert.Equal(t, 5.0, percentileSorted(vals, 1))
	assert.Equal(t, 3.0, percentileSorted(vals, 0.5))
	assert.InDelta(t, 1.2, percentileSorted(vals, 0.05), 1e-12)
	assert.Equal(t, 0.0, percentileSorted(nil, 0.5))
}

func TestRankByFinalValue(t *testing.T) {
	ranked := RankByFinalValue([]Named{
		{Name: "low", Summary: Summary{FinalValue: 10}},
		{Name: "high", Summary: Summary{FinalValue: 30}},
		{Name: "mid", Summary: Summary{FinalValue: 20}},
		{Name: "mid-too", Summary: Summary{FinalValue: 20}},
	})
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Name
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, []string{"high", "mid", "mid-too", "low"}, names)
}
