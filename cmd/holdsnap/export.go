package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/holdsnap/internal/app"
	"github.com/bobmcallan/holdsnap/internal/common"
)

type exportCmd struct {
	configPath   string
	holdingsPath string
	outputPath   string
	quiet        bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "run the pipeline once and export a holdings snapshot" }
func (*exportCmd) Usage() string {
	return `export [-config <path>] [-holdings <path>] [-output <path>] [-quiet]

  Reads the holdings file, resolves a live quote for every position through
  the configured provider chain, and writes the snapshot JSON atomically to
  the output path. Exits non-zero if the snapshot cannot be written.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "Config file path (default: holdsnap.toml beside the binary)")
	f.StringVar(&c.holdingsPath, "holdings", "", "Holdings file path (overrides config)")
	f.StringVar(&c.outputPath, "output", "", "Snapshot output path (overrides config)")
	f.BoolVar(&c.quiet, "quiet", false, "Suppress the startup banner")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := app.NewApp(c.configPath,
		app.WithHoldingsPath(c.holdingsPath),
		app.WithOutputPath(c.outputPath),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return subcommands.ExitFailure
	}

	if !c.quiet {
		common.PrintBanner(a.Config, a.Logger)
	}

	snap, err := a.Snapshot.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			a.Logger.Warn().Msg("Run cancelled - no snapshot written")
		} else {
			a.Logger.Error().Err(err).Msg("Snapshot run failed")
		}
		return subcommands.ExitFailure
	}

	a.Logger.Info().
		Str("run_id", snap.RunID).
		Int("positions", len(snap.Positions)).
		Msg("Export complete")
	return subcommands.ExitSuccess
}
