package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	awspkg "github.com/chelma/cloud-demo/internal/aws"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the plan's capture instance type against the EC2 catalog",
	Long: `Looks up the capture instance type of the cluster's plan in the configured region
and checks that it is offered and that the ECS task reservation fits on it.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("no-cache", false, "disable the instance catalog cache")
	validateCmd.Flags().Bool("clear-cache", false, "clear cached lookups before validating")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	plan, err := currentPlan(ctx)
	if err != nil {
		return err
	}
	if err := plan.Validate(); err != nil {
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

	info, err := provider.DescribeInstances(ctx, []string{plan.CaptureNodes.InstanceType})
	if err != nil && !errors.Is(err, awspkg.ErrNoInstanceTypes) {
		return err
	}

	findings := awspkg.CheckCaptureFit(plan, info)
	out := cmd.OutOrStdout()
	if len(findings) == 0 {
		fmt.Fprintf(out, "%s: capture plan fits on %s\n", provider.Region(), plan.CaptureNodes.InstanceType)
		return nil
	}
	for _, f := range findings {
		fmt.Fprintf(out, "%s\n", f)
	}

	if awspkg.HasErrors(findings) {
		return fmt.Errorf("capture plan does not fit on %s in %s", plan.CaptureNodes.InstanceType, provider.Region())
	}
	logger.Debug("validation finished with warnings", zap.Int("findings", len(findings)))
	return nil
}
