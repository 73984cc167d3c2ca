package report

import (
	"math"
	"strings"
	"testing"

	"rebalance-sim/internal/analysis"
	"rebalance-sim/internal/model"
	"rebalance-sim/internal/simulation"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) (*simulation.Result, analysis.Summary) {
	t.Helper()
	cfg := model.SimulationConfig{
		InitialPrincipal:         5000,
		HorizonYears:             2,
		RebalanceIntervalMonths:  12,
		ContributionPerRebalance: 100,
		Methods: []model.InvestmentMethod{
			{Name: "Stock", AnnualReturn: 0.07, TargetWeight: 0.6},
			{Name: "Bond", AnnualReturn: 0.03, TargetWeight: 0.4},
		},
	}
	res, err := simulation.New().Run(cfg)
	require.NoError(t, err)
	return res, analysis.Summarize(cfg, res)
}

func TestAmount(t *testing.T) {
	testCases := []struct {
		in   float64
		want string
	}{
		{5000, "$5,000.00"},
		{0, "$0.00"},
		{1234.565, "$1,234.57"},
		{0.004, "$0.00"},
		{1e15, "$1,000,000,000,000,000.00"},
		{1e17, "$100,000,000,000,000,000.00"},
		{-1e17, "-$100,000,000,000,000,000.00"},
		{2e21, "$2,000,000,000,000,000,000,000.00"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Amount(tc.in, "USD"), "Amount(%v)", tc.in)
	}
	// Unknown currency codes fall back to the default.
	assert.Equal(t, "$1.00", Amount(1, "???"))
	assert.Equal(t, "€1,000,000,000,000,000,000.00", Amount(1e18, "EUR"))
	assert.NotPanics(t, func() { Amount(math.NaN(), "USD") })
}

func TestAmount_LargeMatchesMoneyLayout(t *testing.T) {
	// Just below the int64 limit both paths must agree on layout.
	for _, code := range []string{"USD", "EUR", "JPY", "GBP"} {
		cur := money.GetCurrency(code)
		minor := decimal.NewFromFloat(1e12).Mul(decimal.New(1, int32(cur.Fraction)))
		assert.Equal(t, Amount(1e12, code), displayLarge(minor, cur), code)
		assert.Equal(t, Amount(-1e12, code), displayLarge(minor.Neg(), cur), code)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "5.60%", Percent(0.056))
	assert.Equal(t, "100.00%", Percent(1))
	assert.Equal(t, "-20.00%", Percent(-0.2))
}

func TestMarkdown(t *testing.T) {
	res, s := sample(t)
	md := Markdown("Stock/Bond", res, s, "")

	assert.True(t, strings.HasPrefix(md, "# Stock/Bond\n"))
	assert.Contains(t, md, "| Initial principal | $5,000.00 |")
	assert.Contains(t, md, "| Total contributed | $5,200.00 |")
	assert.Contains(t, md, "| Rebalances | 2 |")
	assert.Contains(t, md, "| Stock | 60.00% |")
	assert.Contains(t, md, "| Year | Total | Stock | Bond |")
	assert.Contains(t, md, "| 0 | $5,000.00 | $3,000.00 | $2,000.00 |")
	assert.Equal(t, 3, strings.Count(md, "\n| 0 |")+strings.Count(md, "\n| 1 |")+strings.Count(md, "\n| 2 |"))
}

func TestMarkdown_EscapesPipes(t *testing.T) {
	res, s := sample(t)
	res.Methods[0] = "A|B"
	s.Holdings[0].Name = "A|B"
	md := Markdown("", res, s, "USD")
	assert.Contains(t, md, `A\|B`)
	assert.Contains(t, md, "# Rebalance Simulation")
}

func TestHTML(t *testing.T) {
	res, s := sample(t)
	html, err := HTML(Markdown("x", res, s, "USD"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")
	assert.Contains(t, string(html), "<h1>x</h1>")
}

func TestTerminal(t *testing.T) {
	res, s := sample(t)
	out, err := Terminal(Markdown("x", res, s, "USD"))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
