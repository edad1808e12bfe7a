package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/chelma/cloud-demo/internal/orchestrator"
	"github.com/chelma/cloud-demo/internal/store"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored plan of a cluster",
	RunE:  runShow,
}

func init() {
	f := showCmd.Flags()
	f.String("output", "json", "output format: json, yaml")
	f.String("output-file", "", "write output to file")
	f.Bool("all", false, "list the clusters that have a stored plan")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	planStore, err := resolveStore(ctx, false)
	if err != nil {
		return err
	}
	if planStore == nil {
		return orchestrator.ErrNoStore
	}

	if all, _ := cmd.Flags().GetBool("all"); all {
		return listClusters(planStore, cmd.OutOrStdout())
	}

	plan, err := planStore.Get(ctx, cfg.Cluster.Name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("cluster %q has no stored plan; run 'capturefit apply' first", cfg.Cluster.Name)
		}
		return err
	}

	w, cleanup, err := outputWriter(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if format, _ := cmd.Flags().GetString("output"); format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plan); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// listClusters prints one cluster name per line.
func listClusters(planStore store.PlanStore, w io.Writer) error {
	lister, ok := planStore.(store.Lister)
	if !ok {
		return fmt.Errorf("store backend %q cannot list clusters", cfg.Store.Backend)
	}
	names, err := lister.Clusters()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}
