package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/chelma/cloud-demo/internal/cdk"
)

var contextCmd = &cobra.Command{
	Use:       "context {create|destroy}",
	Short:     "Print the CDK context for creating or destroying a cluster",
	ValidArgs: []string{"create", "destroy"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Long: `Renders the cluster's stored plan (or, when none is stored, the plan computed
from the configured inputs) into the --context arguments of the CDK app that deploys it.`,
	RunE: runContext,
}

func init() {
	f := contextCmd.Flags()
	f.Bool("json", false, "print the context map as JSON instead of cdk arguments")
	f.String("output-file", "", "write output to file")

	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var cdkContext map[string]string
	var err error
	switch args[0] {
	case "create":
		plan, perr := currentPlan(ctx)
		if perr != nil {
			return perr
		}
		cdkContext, err = cdk.CreateClusterContext(cfg.Cluster.Name, plan, cdk.UserConfig{
			SpiDays:         cfg.Capacity.SPIDays,
			HistoryDays:     cfg.Capacity.HistoryDays,
			Replicas:        cfg.Capacity.Replicas,
			ExpectedTraffic: cfg.Capacity.ExpectedTraffic,
			PcapDays:        plan.S3.PcapStorageDays,
		})
	case "destroy":
		cdkContext, err = cdk.DestroyClusterContext(cfg.Cluster.Name)
	}
	if err != nil {
		return err
	}

	w, cleanup, err := outputWriter(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cdkContext)
	}

	_, err = fmt.Fprintln(w, shellquote.Join(cdk.Args(cdkContext)...))
	return err
}
