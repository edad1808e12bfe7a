package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the monthly on-demand compute cost of the cluster's plan",
	Long: `Prices the capture nodes (at their desired count) with EC2 on-demand rates and the
OpenSearch data and master nodes with OpenSearch Service rates. Storage and data
transfer are not included.`,
	RunE: runEstimate,
}

func init() {
	f := estimateCmd.Flags()
	f.String("output", "table", "output format: table, json")
	f.Bool("no-cache", false, "disable the pricing cache")
	f.Bool("clear-cache", false, "clear cached lookups before estimating")

	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	plan, err := currentPlan(ctx)
	if err != nil {
		return err
	}

	if err := clearCacheIfRequested(cmd); err != nil {
		return err
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	provider, err := newProvider(ctx, noCache)
	if err != nil {
		return err
	}

	est, err := provider.EstimateCost(ctx, plan)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if format, _ := cmd.Flags().GetString("output"); format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	}

	fmt.Fprintf(w, "%-24s %-22s %5s %9s %10s\n", "COMPONENT", "INSTANCE", "COUNT", "$/HOUR", "$/MONTH")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 74))
	for _, it := range est.Items {
		fmt.Fprintf(w, "%-24s %-22s %5d %9.4f %10.2f\n",
			it.Component, it.InstanceType, it.Count, it.HourlyUSD, it.MonthlyUSD)
	}
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 74))
	fmt.Fprintf(w, "%-62s %10.2f\n", "TOTAL ("+est.Region+", compute only)", est.MonthlyUSD)
	return nil
}
