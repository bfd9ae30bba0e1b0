package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/atharvakonge/portfolio-ledger/internal/app"
	"github.com/atharvakonge/portfolio-ledger/internal/config"
)

type seedAdminCmd struct {
	email    string
	password string
	fullName string
}

func (*seedAdminCmd) Name() string     { return "seed-admin" }
func (*seedAdminCmd) Synopsis() string { return "create or promote a superuser" }
func (*seedAdminCmd) Usage() string {
	return `seed-admin -email <email> -password <password> [-full-name <name>]

  Creates the account as a superuser. An existing account with that email
  is promoted and its password replaced.
`
}

func (c *seedAdminCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Superuser email (required)")
	f.StringVar(&c.password, "password", "", "Superuser password (required)")
	f.StringVar(&c.fullName, "full-name", "", "Display name")
}

func (c *seedAdminCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.email == "" || c.password == "" {
		fmt.Fprintln(os.Stderr, "Error: -email and -password are required.")
		return subcommands.ExitUsageError
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := app.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	svc := app.NewServices(cfg, store, logger)
	u, err := svc.Auth.EnsureSuperuser(ctx, config.SuperuserConfig{
		Email:    c.email,
		Password: c.password,
		FullName: c.fullName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding superuser: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("superuser %s (%s)\n", u.Email, u.ID)
	return subcommands.ExitSuccess
}
