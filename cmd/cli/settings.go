package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"rebalance-sim/internal/config"
	"rebalance-sim/internal/settings"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type settingsCmd struct {
	env config.Env
	log *logrus.Logger

	file      string
	initFile  bool
	force     bool
	addMethod bool
	remove    int
}

func (*settingsCmd) Name() string     { return "settings" }
func (*settingsCmd) Synopsis() string { return "show or edit the saved settings document" }
func (*settingsCmd) Usage() string {
	return `settings [-file <settings.json>] [-init [-force]] [-add-method] [-remove <index>]

  Prints the saved settings as JSON. -init writes the defaults, -add-method
  appends a placeholder method row and -remove deletes the row at index.
  Edited settings are validated before they are saved.
`
}

func (c *settingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Settings file (defaults to SETTINGS_FILE)")
	f.BoolVar(&c.initFile, "init", false, "Write the default settings")
	f.BoolVar(&c.force, "force", false, "With -init, overwrite an existing file")
	f.BoolVar(&c.addMethod, "add-method", false, "Append a placeholder method row")
	f.IntVar(&c.remove, "remove", -1, "Remove the method row at this index")
}

func (c *settingsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	path := c.file
	if path == "" {
		path = c.env.SettingsFile
	}
	fileStore := settings.NewFileStore(path, c.log)

	if c.initFile {
		if _, err := os.Stat(path); err == nil && !c.force {
			fmt.Fprintf(os.Stderr, "Error: %s already exists (use -force to overwrite)\n", path)
			return subcommands.ExitFailure
		}
		if err := fileStore.Save(settings.Default()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Wrote default settings to %s\n", path)
	}

	doc, err := fileStore.Load()
	if err != nil {
		c.log.WithError(err).Warn("showing default settings")
	}

	if c.addMethod || c.remove >= 0 {
		if c.addMethod {
			doc.AddMethod()
		}
		if c.remove >= 0 {
			if err := doc.RemoveMethod(c.remove); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitUsageError
			}
		}
		if _, err := doc.ToConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v (settings not saved)\n", err)
			return subcommands.ExitFailure
		}
		if err := fileStore.Save(doc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(raw))
	return subcommands.ExitSuccess
}
