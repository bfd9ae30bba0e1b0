package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/app"
	"github.com/atharvakonge/portfolio-ledger/internal/storage"
)

type recalcCmd struct {
	asset string
	all   bool
}

func (*recalcCmd) Name() string     { return "recalc" }
func (*recalcCmd) Synopsis() string { return "recompute asset quantity and average price" }
func (*recalcCmd) Usage() string {
	return `recalc -asset <id> | -all

  Recomputes the stored quantity and average price from the transaction
  history, for one asset or for every asset.
`
}

func (c *recalcCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Asset id to recompute")
	f.BoolVar(&c.all, "all", false, "Recompute every asset")
}

func (c *recalcCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.asset == "") == !c.all {
		fmt.Fprintln(os.Stderr, "Error: exactly one of -asset or -all is required.")
		return subcommands.ExitUsageError
	}
	var target uuid.UUID
	if c.asset != "" {
		id, err := uuid.Parse(c.asset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing asset id '%s': %v\n", c.asset, err)
			return subcommands.ExitUsageError
		}
		target = id
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

	refs, err := store.Assets().AllAssetIDs(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing assets: %v\n", err)
		return subcommands.ExitFailure
	}
	if !c.all {
		refs = filterAsset(refs, target)
		if len(refs) == 0 {
			fmt.Fprintf(os.Stderr, "Error: asset %s not found.\n", target)
			return subcommands.ExitFailure
		}
	}

	svc := app.NewServices(cfg, store, logger)
	failed := 0
	for _, ref := range refs {
		agg, err := svc.Ledger.RecalculateAsset(ctx, ref.UserID, ref.AssetID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error recomputing %s: %v\n", ref.AssetID, err)
			failed++
			continue
		}
		fmt.Printf("%s quantity=%s average_price=%s\n", ref.AssetID, agg.Quantity, agg.AveragePrice)
	}
	if failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func filterAsset(refs []storage.AssetRef, id uuid.UUID) []storage.AssetRef {
	for _, ref := range refs {
		if ref.AssetID == id {
			return []storage.AssetRef{ref}
		}
	}
	return nil
}
