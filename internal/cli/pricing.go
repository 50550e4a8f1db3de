package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	appconfig "github.com/wolfman30/cuddles-booking/internal/config"
	"github.com/wolfman30/cuddles-booking/internal/pricing"
)

type ratesFunc func() (appconfig.Rates, error)

func newTiersCmd(rates ratesFunc) *cobra.Command {
	var service string
	c := &cobra.Command{
		Use:   "tiers",
		Short: "List the weight tiers and base prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rates()
			if err != nil {
				return err
			}
			kinds := r.Table.Kinds()
			if service != "" {
				kind, err := pricing.ParseServiceKind(service)
				if err != nil {
					return err
				}
				kinds = []pricing.ServiceKind{kind}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SERVICE\tWEIGHT\tPRICE")
			for _, kind := range kinds {
				for _, tier := range r.Table[kind] {
					fmt.Fprintf(tw, "%s\t%d-%d lbs\t$%.2f\n", kind.Label(), tier.MinLbs, tier.MaxLbs, tier.Price)
				}
			}
			return tw.Flush()
		},
	}
	c.Flags().StringVar(&service, "service", "", "limit to one service kind")
	return c
}

func newQuoteCmd(rates ratesFunc) *cobra.Command {
	var service string
	var weight int
	c := &cobra.Command{
		Use:   "quote",
		Short: "Quote the base price for a service and pet weight",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := pricing.ParseServiceKind(service)
			if err != nil {
				return err
			}
			r, err := rates()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			price, ok := r.Table.PriceFor(kind, weight)
			if !ok {
				fmt.Fprintf(out, "%s, %d lbs: Custom quote\n", kind.Label(), weight)
				return nil
			}
			fmt.Fprintf(out, "%s, %d lbs: $%.2f (before tax)\n", kind.Label(), weight, price)
			return nil
		},
	}
	c.Flags().StringVar(&service, "service", "", "service kind")
	c.Flags().IntVar(&weight, "weight", 0, "pet weight in pounds")
	_ = c.MarkFlagRequired("service")
	_ = c.MarkFlagRequired("weight")
	return c
}
