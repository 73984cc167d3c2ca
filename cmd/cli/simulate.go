package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"rebalance-sim/internal/analysis"
	"rebalance-sim/internal/chart"
	"rebalance-sim/internal/config"
	"rebalance-sim/internal/model"
	"rebalance-sim/internal/report"
	"rebalance-sim/internal/settings"
	"rebalance-sim/internal/simulation"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// outputs selects what a run writes besides the one-line summary.
type outputs struct {
	csv       string
	chart     string
	perMethod bool
	report    bool
	plain     bool
	currency  string
}

func (o *outputs) setFlags(f *flag.FlagSet) {
	f.StringVar(&o.csv, "out", "", "Write the monthly timeline CSV to this path")
	f.StringVar(&o.chart, "chart", "", "Write a PNG chart of the timeline to this path")
	f.BoolVar(&o.perMethod, "per-method", false, "Draw one chart line per method")
	f.BoolVar(&o.report, "report", false, "Print a markdown report")
	f.BoolVar(&o.plain, "plain", false, "Print the report as raw markdown instead of rendering it")
	f.StringVar(&o.currency, "currency", report.DefaultCurrency, "Currency code used in the report")
}

type simulateCmd struct {
	env config.Env
	log *logrus.Logger

	configPath   string
	settingsPath string
	out          outputs
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "run a rebalancing simulation" }
func (*simulateCmd) Usage() string {
	return `simulate [-config <scenario.yaml> | -settings <settings.json>] [-out <csv>] [-chart <png>] [-report]

  Runs one simulation. Without -config the saved settings file is used
  (SETTINGS_FILE, default ./data/settings.json); missing or unreadable
  settings fall back to the defaults.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "Path to a YAML scenario config")
	f.StringVar(&c.settingsPath, "settings", "", "Path to a JSON settings document (overrides SETTINGS_FILE)")
	c.out.setFlags(f)
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	name := "settings"
	var cfg model.SimulationConfig

	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		cfg, err = loaded.SimulationConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		name = loaded.Name
		if name == "" {
			name = filepath.Base(c.configPath)
		}
		if c.out.csv == "" {
			c.out.csv = loaded.Output.CSV
		}
		if c.out.chart == "" {
			c.out.chart = loaded.Output.Chart
			c.out.perMethod = c.out.perMethod || loaded.Output.PerMethod
		}
	} else {
		path := c.settingsPath
		if path == "" {
			path = c.env.SettingsFile
		}
		doc, err := settings.NewFileStore(path, c.log).Load()
		if err != nil {
			c.log.WithError(err).Warn("using default settings")
		}
		cfg, err = doc.ToConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if err := runAndEmit(name, cfg, c.out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runAndEmit simulates cfg, prints a summary line and writes the requested outputs.
func runAndEmit(name string, cfg model.SimulationConfig, out outputs) error {
	res, err := simulation.New().Run(cfg)
	if err != nil {
		return err
	}
	summary := analysis.Summarize(cfg, res)

	if out.csv != "" {
		if err := os.MkdirAll(filepath.Dir(out.csv), 0o755); err != nil {
			return err
		}
		if err := simulation.WriteTimelineCSV(out.csv, res); err != nil {
			return err
		}
		fmt.Printf("Wrote %d rows to %s\n", len(res.Timeline), out.csv)
	}

	if out.chart != "" {
		img, err := chart.RenderTimeline(res, chart.Options{Title: name, PerMethod: out.perMethod})
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(out.chart), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out.chart, img, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote chart to %s\n", out.chart)
	}

	fmt.Printf("%s: final value %s after %d months (%d rebalances, contributed %s)\n",
		name,
		report.Amount(summary.FinalValue, out.currency),
		summary.Months,
		summary.Rebalances,
		report.Amount(summary.TotalContributed, out.currency))

	if out.report {
		return printMarkdown(report.Markdown(name, res, summary, out.currency), out.plain)
	}
	return nil
}

func printMarkdown(md string, plain bool) error {
	if plain {
		fmt.Print(md)
		return nil
	}
	rendered, err := report.Terminal(md)
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}
