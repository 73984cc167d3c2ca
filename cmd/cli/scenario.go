package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"rebalance-sim/internal/config"
	"rebalance-sim/internal/settings"
	"rebalance-sim/internal/store"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type scenarioCmd struct {
	env config.Env
	log *logrus.Logger

	db         string
	save       string
	from       string
	list       bool
	run        string
	deleteName string
	out        outputs
}

func (*scenarioCmd) Name() string     { return "scenario" }
func (*scenarioCmd) Synopsis() string { return "manage the named scenario library" }
func (*scenarioCmd) Usage() string {
	return `scenario [-db <scenarios.db>] (-list | -save <name> [-from <file>] | -run <name> | -delete <name>)

  -save stores a scenario taken from a YAML config (.yaml/.yml) or a JSON
  settings document given with -from; without -from the saved settings are
  stored. -run accepts the same output flags as simulate.
`
}

func (c *scenarioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", "", "Scenario database (defaults to SCENARIO_DB)")
	f.BoolVar(&c.list, "list", false, "List stored scenarios")
	f.StringVar(&c.save, "save", "", "Save a scenario under this name")
	f.StringVar(&c.from, "from", "", "With -save, the YAML config or JSON settings to store")
	f.StringVar(&c.run, "run", "", "Run the named scenario")
	f.StringVar(&c.deleteName, "delete", "", "Delete the named scenario")
	c.out.setFlags(f)
}

func (c *scenarioCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	actions := 0
	for _, set := range []bool{c.list, c.save != "", c.run != "", c.deleteName != ""} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one of -list, -save, -run or -delete is required")
		return subcommands.ExitUsageError
	}

	path := c.db
	if path == "" {
		path = c.env.ScenarioDB
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	db, err := store.OpenSQLite(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := store.InitSchema(db); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	scenarios := store.NewStore(db, c.log)
	defer scenarios.Close()

	if err := c.do(ctx, scenarios); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, store.ErrNotFound) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *scenarioCmd) do(ctx context.Context, scenarios *store.Store) error {
	switch {
	case c.list:
		entries, err := scenarios.List(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no scenarios saved")
		}
		for _, e := range entries {
			fmt.Printf("%-30s %s\n", e.Name, e.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil

	case c.save != "":
		doc, err := c.source()
		if err != nil {
			return err
		}
		if err := scenarios.Save(ctx, c.save, doc); err != nil {
			return err
		}
		fmt.Printf("Saved scenario %q\n", c.save)
		return nil

	case c.run != "":
		doc, err := scenarios.Get(ctx, c.run)
		if err != nil {
			return fmt.Errorf("%s: %w", c.run, err)
		}
		cfg, err := doc.ToConfig()
		if err != nil {
			return err
		}
		return runAndEmit(c.run, cfg, c.out)

	default:
		if err := scenarios.Delete(ctx, c.deleteName); err != nil {
			return fmt.Errorf("%s: %w", c.deleteName, err)
		}
		fmt.Printf("Deleted scenario %q\n", c.deleteName)
		return nil
	}
}

// source reads the document to save: a YAML config, a JSON settings file, or
// the saved settings when -from is empty.
func (c *scenarioCmd) source() (settings.Document, error) {
	switch filepath.Ext(c.from) {
	case ".yaml", ".yml":
		cfg, err := config.Load(c.from)
		if err != nil {
			return settings.Document{}, err
		}
		return cfg.Scenario, nil
	}

	path := c.from
	if path == "" {
		path = c.env.SettingsFile
	}
	doc, err := settings.NewFileStore(path, c.log).Load()
	if err != nil && c.from != "" {
		return settings.Document{}, err
	}
	return doc, nil
}
