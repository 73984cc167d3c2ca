// Package settings holds the user-editable form of a simulation (the same
// fields the settings table shows) and persists it as JSON.
//
// Percentages are used throughout this package: an annual return of 7 means 7%.
// Conversion to the fractional model happens in Document.ToConfig.
package settings

import (
	"fmt"
	"strings"

	"rebalance-sim/internal/model"
)

// Document is the persisted settings shape.
//
// Example:
//
//	{
//	  "principal": 5000,
//	  "years": 10,
//	  "rebalance_months": 12,
//	  "contribution": 0,
//	  "methods": [{"name": "Stock", "annual_return": 7, "target_weight": 60}]
//	}
type Document struct {
	Principal       float64  `json:"principal" yaml:"principal"`
	Years           int      `json:"years" yaml:"years"`
	RebalanceMonths int      `json:"rebalance_months" yaml:"rebalance_months"`
	Contribution    float64  `json:"contribution" yaml:"contribution"`
	Methods         []Method `json:"methods" yaml:"methods"`
}

// Method is one row of the methods table.
type Method struct {
	Name         string  `json:"name" yaml:"name"`
	AnnualReturn float64 `json:"annual_return" yaml:"annual_return"` // percent
	TargetWeight float64 `json:"target_weight" yaml:"target_weight"` // percent
}

// Default is the configuration used on first start or when the settings file
// cannot be read.
func Default() Document {
	return Document{
		Principal:       5000,
		Years:           10,
		RebalanceMonths: 12,
		Contribution:    0,
		Methods: []Method{
			{Name: "Stock", AnnualReturn: 7, TargetWeight: 60},
			{Name: "Bond", AnnualReturn: 3, TargetWeight: 40},
		},
	}
}

// AddMethod appends a placeholder row with a zero target weight, so the
// document keeps its weight sum.
func (d *Document) AddMethod() {
	d.Methods = append(d.Methods, Method{Name: "New", AnnualReturn: 5, TargetWeight: 0})
}

// RemoveMethod deletes the i-th row.
func (d *Document) RemoveMethod(i int) error {
	if i < 0 || i >= len(d.Methods) {
		return fmt.Errorf("method index %d out of range [0, %d)", i, len(d.Methods))
	}
	d.Methods = append(d.Methods[:i:i], d.Methods[i+1:]...)
	return nil
}

// ToConfig converts the document into a validated, immutable simulation input.
// Blank names become "Method N". Errors are *model.ValidationError.
func (d Document) ToConfig() (model.SimulationConfig, error) {
	methods := make([]model.InvestmentMethod, len(d.Methods))
	for i, m := range d.Methods {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			name = fmt.Sprintf("Method %d", i+1)
		}
		methods[i] = model.InvestmentMethod{
			Name:         name,
			AnnualReturn: m.AnnualReturn / 100,
			TargetWeight: m.TargetWeight / 100,
		}
	}
	cfg := model.SimulationConfig{
		InitialPrincipal:         d.Principal,
		HorizonYears:             d.Years,
		RebalanceIntervalMonths:  d.RebalanceMonths,
		ContributionPerRebalance: d.Contribution,
		Methods:                  methods,
	}
	if err := cfg.Validate(); err != nil {
		return model.SimulationConfig{}, err
	}
	return cfg, nil
}

// FromConfig is the inverse of ToConfig.
func FromConfig(cfg model.SimulationConfig) Document {
	d := Document{
		Principal:       cfg.InitialPrincipal,
		Years:           cfg.HorizonYears,
		RebalanceMonths: cfg.RebalanceIntervalMonths,
		Contribution:    cfg.ContributionPerRebalance,
		Methods:         make([]Method, len(cfg.Methods)),
	}
	for i, m := range cfg.Methods {
		d.Methods[i] = Method{
			Name:         m.Name,
			AnnualReturn: m.AnnualReturn * 100,
			TargetWeight: m.TargetWeight * 100,
		}
	}
	return d
}

// Store is the persistence port used by the CLI and the API.
type Store interface {
	Load() (Document, error)
	Save(Document) error
}
