package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Compute the capacity plan and save it for the cluster",
	Long: `Runs 'capturefit plan' and, when the plan differs from the stored one, saves it
to the configured plan store (store.backend file or s3) after confirmation.`,
	RunE: runApply,
}

func init() {
	addPlanFlags(applyCmd)
	f := applyCmd.Flags()
	f.String("output", "table", "output format: table, json, yaml")
	f.String("output-file", "", "write output to file")
	f.Bool("estimate", false, "include an on-demand cost estimate (needs AWS credentials)")
	f.Bool("no-cache", false, "disable the pricing cache")
	f.BoolP("yes", "y", false, "save without asking for confirmation")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	orch, cleanup, err := buildOrchestrator(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		orch.Confirm = confirm
	}

	res, err := orch.Apply(ctx)
	if err != nil {
		return err
	}
	if res.Saved {
		logger.Info("applied plan", zap.String("cluster", cfg.Cluster.Name), zap.String("store", cfg.Store.Backend))
	}
	return nil
}
