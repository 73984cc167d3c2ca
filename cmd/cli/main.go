package main

import (
	"context"
	"flag"
	"os"
	"path"

	"rebalance-sim/internal/config"
	"rebalance-sim/internal/logging"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	env := config.FromEnv()
	logger := logging.New(env.LogLevel, env.LogFormat)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&simulateCmd{env: env, log: logger}, "simulation")
	commander.Register(&compareCmd{log: logger}, "simulation")
	commander.Register(&settingsCmd{env: env, log: logger}, "storage")
	commander.Register(&scenarioCmd{env: env, log: logger}, "storage")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
