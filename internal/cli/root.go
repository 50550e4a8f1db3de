// Package cli implements groomctl, the operator tool for checking prices and
// travel fees from a terminal.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appconfig "github.com/wolfman30/cuddles-booking/internal/config"
	"github.com/wolfman30/cuddles-booking/internal/travel"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// Options lets callers replace the environment-driven dependencies.
type Options struct {
	// LoadConfig defaults to config.Load.
	LoadConfig func() *appconfig.Config
	// Provider overrides the configured maps backend.
	Provider travel.Provider
}

func NewRootCmd(opts Options) *cobra.Command {
	if opts.LoadConfig == nil {
		opts.LoadConfig = appconfig.Load
	}
	var rateCard string

	root := &cobra.Command{
		Use:           "groomctl",
		Short:         "Price and travel fee lookups for Cuddles & Cuts mobile grooming",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rateCard, "rate-card", "", "TOML rate card (defaults to RATE_CARD_FILE)")

	rates := func() (appconfig.Rates, error) {
		path := rateCard
		if path == "" {
			path = opts.LoadConfig().RateCardFile
		}
		return appconfig.LoadRates(path)
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newTiersCmd(rates))
	root.AddCommand(newQuoteCmd(rates))
	root.AddCommand(newTravelCmd(opts, rates))
	return root
}

func Execute() {
	_ = appconfig.LoadDotEnv()
	if err := NewRootCmd(Options{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "groomctl %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}
