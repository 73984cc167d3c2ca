package main

import (
	"flag"
	"fmt"
	"strings"

	"rebalance-sim/internal/analysis"
	"rebalance-sim/internal/config"
	"rebalance-sim/internal/settings"
	"rebalance-sim/internal/simulation"
)

// Demo:
// - Start from the default settings (or a YAML scenario)
// - Run the engine
// - Print the rebalance months to show how holdings drift and get reset
func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	years := flag.Int("years", 0, "Override the horizon in years")
	n := flag.Int("n", 12, "Number of rebalance rows to print")
	outCSV := flag.String("out", "", "Optional path to write the timeline CSV (e.g. results/timeline.csv)")
	flag.Parse()

	doc := settings.Default()
	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		doc = cfg.Scenario
	}
	if *years > 0 {
		doc.Years = *years
	}

	cfg, err := doc.ToConfig()
	if err != nil {
		panic(err)
	}

	engine := simulation.New()
	result, err := engine.Run(cfg)
	if err != nil {
		panic(err)
	}

	names := make([]string, len(cfg.Methods))
	for i, m := range cfg.Methods {
		names[i] = fmt.Sprintf("%s %.1f%%@%.0f%%", m.Name, m.AnnualReturn*100, m.TargetWeight*100)
	}
	fmt.Printf("Methods: %s\n", strings.Join(names, ", "))
	fmt.Printf("Principal=%.2f  Contribution=%.2f every %d months  Horizon=%d years\n\n",
		cfg.InitialPrincipal, cfg.ContributionPerRebalance, cfg.RebalanceIntervalMonths, cfg.HorizonYears)

	printed := 0
	for _, p := range result.Timeline {
		if !p.Rebalanced || printed >= *n {
			continue
		}
		printed++
		parts := make([]string, len(p.Values))
		for i, v := range p.Values {
			parts[i] = fmt.Sprintf("%s=%10.2f", result.Methods[i], v)
		}
		fmt.Printf("month %4d (year %5.2f)  total=%11.2f  %s\n", p.Month, p.Years(), p.Total, strings.Join(parts, "  "))
	}

	if *outCSV != "" {
		if err := simulation.WriteTimelineCSV(*outCSV, result); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	s := analysis.Summarize(cfg, result)
	fmt.Printf("\nDone. Final value=%.2f  Contributed=%.2f  Gain=%.2f  Annualized=%.2f%%\n",
		s.FinalValue, s.TotalContributed, s.Gain, s.AnnualizedReturn*100)
}
