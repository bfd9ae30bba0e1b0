// Command ledgerctl runs maintenance tasks against the portfolio database.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/atharvakonge/portfolio-ledger/internal/config"
	"github.com/atharvakonge/portfolio-ledger/internal/logging"
)

var configPath = flag.String("config", "config.toml", "path to the TOML config file")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&migrateCmd{}, "database")
	commander.Register(&seedAdminCmd{}, "accounts")
	commander.Register(&recalcCmd{}, "ledger")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// loadConfig reads the configuration selected by -config.
func loadConfig() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.Logging.Level, cfg.Logging.Format), nil
}
