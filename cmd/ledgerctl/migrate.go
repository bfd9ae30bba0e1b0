package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/atharvakonge/portfolio-ledger/internal/db"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending database migrations" }
func (*migrateCmd) Usage() string {
	return `migrate

  Applies every embedded migration that is not yet recorded in the
  schema_migrations table. Safe to run repeatedly.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitFailure
	}

	store, err := db.Open(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	applied, err := store.Migrate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error migrating: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(applied) == 0 {
		fmt.Println("Schema is up to date.")
		return subcommands.ExitSuccess
	}
	for _, name := range applied {
		fmt.Printf("applied %s\n", name)
	}
	return subcommands.ExitSuccess
}
