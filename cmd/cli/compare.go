package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rebalance-sim/internal/analysis"
	"rebalance-sim/internal/config"
	"rebalance-sim/internal/report"
	"rebalance-sim/internal/simulation"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type compareCmd struct {
	log *logrus.Logger

	currency string
	plain    bool
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "run several scenario configs and rank them by final value" }
func (*compareCmd) Usage() string {
	return `compare [-currency USD] [-plain] <scenario.yaml>...

  Runs every config and prints a table ranked by final portfolio value.
  Configs that fail to load or validate are listed after the ranking.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", report.DefaultCurrency, "Currency code used in the table")
	f.BoolVar(&c.plain, "plain", false, "Print raw markdown")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one config path is required")
		return subcommands.ExitUsageError
	}

	engine := simulation.New()
	var named []analysis.Named
	var failed []string
	for _, path := range f.Args() {
		cfgFile, err := config.Load(path)
		if err != nil {
			c.log.WithError(err).WithField("config", path).Warn("skipping config")
			failed = append(failed, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		cfg, err := cfgFile.SimulationConfig()
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		res, err := engine.Run(cfg)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		name := cfgFile.Name
		if name == "" {
			name = filepath.Base(path)
		}
		named = append(named, analysis.Named{Name: name, Summary: analysis.Summarize(cfg, res)})
	}

	var b strings.Builder
	b.WriteString("# Comparison\n\n")
	b.WriteString("| Rank | Scenario | Final value | Contributed | Annualized | Max drawdown |\n")
	b.WriteString("|---:|---|---:|---:|---:|---:|\n")
	for _, r := range analysis.RankByFinalValue(named) {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			r.Rank,
			strings.ReplaceAll(r.Name, "|", `\|`),
			report.Amount(r.Summary.FinalValue, c.currency),
			report.Amount(r.Summary.TotalContributed, c.currency),
			report.Percent(r.Summary.AnnualizedReturn),
			report.Percent(r.Summary.MaxDrawdown))
	}
	if len(failed) > 0 {
		b.WriteString("\n## Rejected\n\n")
		for _, msg := range failed {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}

	if err := printMarkdown(b.String(), c.plain); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(named) == 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
