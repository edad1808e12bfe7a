package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chelma/cloud-demo/internal/metrics"
)

var trafficCmd = &cobra.Command{
	Use:   "traffic",
	Short: "Show the expected traffic the configured source reports",
	Long: `Queries the traffic source (static value, sample file, or Prometheus) the same way
'capturefit plan' does and prints the figure the plan would be sized for.`,
	RunE: runTraffic,
}

func init() {
	addPlanFlags(trafficCmd)

	rootCmd.AddCommand(trafficCmd)
}

func runTraffic(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := applyPlanFlags(cmd); err != nil {
		return err
	}
	source, err := resolveSource(ctx, cmd)
	if err != nil {
		return err
	}

	gbps, err := source.ExpectedTraffic(ctx, metrics.TrafficQuery{
		Window:     cfg.Traffic.Window,
		Step:       cfg.Traffic.Step,
		Percentile: cfg.Traffic.Percentile,
		Counter:    cfg.Traffic.Counter,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backend:   %s\n", source.BackendType())
	if prom, ok := source.(*metrics.PrometheusSource); ok {
		fmt.Fprintf(out, "Window:    %s at p%g\n", cfg.Traffic.Window, cfg.Traffic.Percentile*100)
		if now, err := prom.CurrentTraffic(ctx, cfg.Traffic.Counter); err == nil {
			fmt.Fprintf(out, "Current:   %.3f Gbps\n", now)
		}
	}
	fmt.Fprintf(out, "Expected:  %.3f Gbps\n", gbps)
	return nil
}
