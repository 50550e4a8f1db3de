package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wolfman30/cuddles-booking/internal/app/bootstrap"
	"github.com/wolfman30/cuddles-booking/internal/travel"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

type travelOutput struct {
	Address     string               `json:"address"`
	Origin      string               `json:"origin"`
	Approximate bool                 `json:"approximate"`
	Evaluation  travel.FeeEvaluation `json:"evaluation"`
	Description string               `json:"description"`
}

func newTravelCmd(opts Options, rates ratesFunc) *cobra.Command {
	var address, mode string
	var asJSON bool
	c := &cobra.Command{
		Use:   "travel",
		Short: "Resolve an address and show its travel fee",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := travel.ParseMode(mode)
			if err != nil {
				return err
			}
			r, err := rates()
			if err != nil {
				return err
			}
			fc, err := r.Configs.For(m)
			if err != nil {
				return err
			}

			cfg := opts.LoadConfig()
			logger := logging.NewWithOptions(logging.Options{Level: "error", Output: cmd.ErrOrStderr()})
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			provider := opts.Provider
			if provider == nil {
				redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
				if redisClient != nil {
					defer redisClient.Close()
				}
				provider, _, err = bootstrap.BuildDistanceProvider(cfg, redisClient, logger, nil)
				if err != nil {
					return err
				}
			}
			resolver := bootstrap.BuildResolver(cfg, provider, logger, nil)

			dist, err := resolver.Resolve(ctx, address)
			if err != nil {
				return errors.New(travel.UserMessage(travel.KindOf(err)))
			}
			eval := travel.Evaluate(dist, fc)
			outcome := travelOutput{
				Address:     address,
				Origin:      resolver.Origin(),
				Approximate: dist.Approximate(),
				Evaluation:  eval,
				Description: travel.Describe(eval, fc),
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(outcome)
			}
			fmt.Fprintln(out, outcome.Description)
			if outcome.Approximate {
				fmt.Fprintln(out, "(straight-line estimate; route distance unavailable)")
			}
			fmt.Fprintf(out, "Status: %s  Fee: $%.2f\n", eval.Status, eval.Fee)
			return nil
		},
	}
	c.Flags().StringVar(&address, "address", "", "customer street address")
	c.Flags().StringVar(&mode, "mode", "in_home", "fulfillment mode: in_home or pickup_dropoff")
	c.Flags().BoolVar(&asJSON, "json", false, "print the evaluation as JSON")
	_ = c.MarkFlagRequired("address")
	return c
}
