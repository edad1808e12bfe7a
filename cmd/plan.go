package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/chelma/cloud-demo/internal/orchestrator"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the capacity plan for a capture cluster",
	Long: `Resolves the expected traffic (from flags, config, a sample file, or Prometheus),
computes the capture, OpenSearch, S3 and viewer plans, and shows how they differ
from the stored plan of the cluster. Nothing is saved; use 'capturefit apply' for that.`,
	RunE: runPlan,
}

func init() {
	addPlanFlags(planCmd)
	f := planCmd.Flags()
	f.String("output", "table", "output format: table, json, yaml")
	f.String("output-file", "", "write output to file")
	f.Bool("estimate", false, "include an on-demand cost estimate (needs AWS credentials)")
	f.Bool("no-cache", false, "disable the pricing cache")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	orch, cleanup, err := buildOrchestrator(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = orch.Plan(ctx)
	return err
}

// buildOrchestrator wires the traffic source, plan store, estimator and writer.
func buildOrchestrator(ctx context.Context, cmd *cobra.Command, ensureStore bool) (*orchestrator.Orchestrator, func(), error) {
	if err := applyPlanFlags(cmd); err != nil {
		return nil, nil, err
	}

	source, err := resolveSource(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}

	planStore, err := resolveStore(ctx, ensureStore)
	if err != nil {
		return nil, nil, err
	}

	w, cleanup, err := outputWriter(cmd)
	if err != nil {
		return nil, nil, err
	}

	orch := orchestrator.New(source, planStore, cfg, logger)
	orch.Writer = w

	if estimate, _ := cmd.Flags().GetBool("estimate"); estimate {
		noCache, _ := cmd.Flags().GetBool("no-cache")
		provider, err := newProvider(ctx, noCache)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		orch.Estimator = provider
	}

	return orch, cleanup, nil
}
