package model

import (
	"fmt"
	"math"
)

// WeightTolerance is the absolute tolerance applied when checking that target
// weights sum to 1.
const WeightTolerance = 1e-6

// InvestmentMethod is one sleeve of the portfolio.
// Units:
// - AnnualReturn: effective annual rate as a fraction (0.07 = 7%), may be negative but not below -1
// - TargetWeight: fraction of total value held right after a rebalance, 0..1
type InvestmentMethod struct {
	Name         string
	AnnualReturn float64
	TargetWeight float64
}

// MonthlyFactor is the growth multiplier that compounds to AnnualReturn over 12 months.
func (m InvestmentMethod) MonthlyFactor() float64 {
	return math.Pow(1+m.AnnualReturn, 1.0/12.0)
}

// SimulationConfig is the full, immutable input of one simulation run.
type SimulationConfig struct {
	InitialPrincipal         float64
	HorizonYears             int
	RebalanceIntervalMonths  int
	ContributionPerRebalance float64
	Methods                  []InvestmentMethod
}

// Months is the number of simulated months.
func (c SimulationConfig) Months() int {
	return c.HorizonYears * 12
}

// WeightSum returns the sum of the target weights.
func (c SimulationConfig) WeightSum() float64 {
	sum := 0.0
	for _, m := range c.Methods {
		sum += m.TargetWeight
	}
	return sum
}

// Clone returns a deep copy, so callers can hand out configs without sharing Methods.
func (c SimulationConfig) Clone() SimulationConfig {
	out := c
	out.Methods = append([]InvestmentMethod(nil), c.Methods...)
	return out
}

// Validate checks every invariant a run depends on. The returned error is
// always a *ValidationError.
func (c SimulationConfig) Validate() error {
	if !finite(c.InitialPrincipal) {
		return newValidationError(RuleNonNumeric, "initial principal must be a finite number")
	}
	if c.InitialPrincipal < 0 {
		return newValidationError(RulePrincipal, "initial principal must be >= 0")
	}
	if c.HorizonYears <= 0 {
		return newValidationError(RuleHorizon, "horizon must be > 0 years")
	}
	if c.RebalanceIntervalMonths <= 0 {
		return newValidationError(RuleRebalanceInterval, "rebalance interval must be >= 1 month")
	}
	if !finite(c.ContributionPerRebalance) {
		return newValidationError(RuleNonNumeric, "contribution must be a finite number")
	}
	if c.ContributionPerRebalance < 0 {
		return newValidationError(RuleContribution, "contribution must be >= 0")
	}
	if len(c.Methods) == 0 {
		return newValidationError(RuleNoMethods, "at least one investment method is required")
	}
	for i, m := range c.Methods {
		if !finite(m.AnnualReturn) {
			return newValidationError(RuleNonNumeric, fmt.Sprintf("method %d (%s): annual return must be a finite number", i+1, m.Name))
		}
		// Below -100% the monthly factor has no real root.
		if m.AnnualReturn < -1 {
			return newValidationError(RuleReturnRange, fmt.Sprintf("method %d (%s): annual return %.4g%% is below -100%%", i+1, m.Name, m.AnnualReturn*100))
		}
		if !finite(m.TargetWeight) {
			return newValidationError(RuleNonNumeric, fmt.Sprintf("method %d (%s): target weight must be a finite number", i+1, m.Name))
		}
		if m.TargetWeight < 0 || m.TargetWeight > 1 {
			return newValidationError(RuleWeightRange, fmt.Sprintf("method %d (%s): target weight %.4g%% must be within [0%%, 100%%]", i+1, m.Name, m.TargetWeight*100))
		}
	}
	if sum := c.WeightSum(); math.Abs(sum-1) > WeightTolerance {
		return newValidationError(RuleWeightSum, fmt.Sprintf("target weights sum to %.4g%%, expected 100%%", sum*100))
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
