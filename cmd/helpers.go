package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	awspkg "github.com/chelma/cloud-demo/internal/aws"
	"github.com/chelma/cloud-demo/internal/metrics"
	"github.com/chelma/cloud-demo/internal/model"
	"github.com/chelma/cloud-demo/internal/orchestrator"
	"github.com/chelma/cloud-demo/internal/planner"
	"github.com/chelma/cloud-demo/internal/store"
)

// addPlanFlags registers the planning input flags shared by plan, apply and friends.
func addPlanFlags(c *cobra.Command) {
	f := c.Flags()
	f.Float64("traffic", 0, "expected sustained traffic in Gbps")
	f.String("traffic-file", "", "read traffic from a JSON sample file instead")
	f.String("from-prometheus", "", "derive traffic from this Prometheus/Thanos endpoint")
	f.Duration("window", 0, "traffic lookback window for --from-prometheus")
	f.Float64("percentile", 0, "traffic percentile to plan for, in (0.0, 1.0]")
	f.Int("spi-days", 0, "days of session metadata (SPI) to retain")
	f.Int("replicas", 0, "OpenSearch replicas per shard")
	f.Int("azs", 0, "availability zones for the capture VPC")
	f.Int("history-days", 0, "days of Arkime history to retain")
	f.String("pcap-storage-class", "", "S3 storage class for PCAP objects")
	f.Int("pcap-days", 0, "days to retain PCAP objects")
}

// applyPlanFlags copies explicitly set flags into cfg and revalidates it.
func applyPlanFlags(cmd *cobra.Command) error {
	f := cmd.Flags()

	if v, _ := f.GetFloat64("traffic"); f.Changed("traffic") {
		cfg.Capacity.ExpectedTraffic = v
		cfg.Traffic.Source = "static"
	}
	if v, _ := f.GetString("from-prometheus"); v != "" {
		cfg.Traffic.Source = "prometheus"
		cfg.Traffic.PrometheusURL = v
	}
	if v, _ := f.GetDuration("window"); v > 0 {
		cfg.Traffic.Window = v
	}
	if v, _ := f.GetFloat64("percentile"); f.Changed("percentile") {
		cfg.Traffic.Percentile = v
	}
	if v, _ := f.GetInt("spi-days"); f.Changed("spi-days") {
		cfg.Capacity.SPIDays = v
	}
	if v, _ := f.GetInt("replicas"); f.Changed("replicas") {
		cfg.Capacity.Replicas = v
	}
	if v, _ := f.GetInt("azs"); f.Changed("azs") {
		cfg.Capacity.NumAZs = v
	}
	if v, _ := f.GetInt("history-days"); f.Changed("history-days") {
		cfg.Capacity.HistoryDays = v
	}
	if v, _ := f.GetString("pcap-storage-class"); v != "" {
		cfg.S3.PcapStorageClass = v
	}
	if v, _ := f.GetInt("pcap-days"); f.Changed("pcap-days") {
		cfg.S3.PcapStorageDays = v
	}
	if v, _ := f.GetString("output"); f.Changed("output") {
		cfg.Output.Format = v
	}

	return cfg.Validate()
}

// resolveSource returns the traffic source selected by flags and config.
func resolveSource(ctx context.Context, cmd *cobra.Command) (metrics.TrafficSource, error) {
	if path, _ := cmd.Flags().GetString("traffic-file"); path != "" {
		src := metrics.NewStaticSourceFromFile(path)
		if err := src.Ping(ctx); err != nil {
			return nil, err
		}
		return src, nil
	}

	switch cfg.Traffic.Source {
	case "prometheus":
		src, err := metrics.NewPrometheusSource(cfg.Traffic.PrometheusURL, metrics.WithTimeout(cfg.Traffic.Timeout))
		if err != nil {
			return nil, fmt.Errorf("creating Prometheus client: %w", err)
		}
		if err := src.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connecting to Prometheus: %w", err)
		}
		logger.Debug("connected to traffic backend",
			zap.String("url", cfg.Traffic.PrometheusURL),
			zap.String("backend", src.BackendType()))
		return src, nil
	default:
		return metrics.NewStaticSource(cfg.Capacity.ExpectedTraffic), nil
	}
}

// resolveStore returns the configured plan store, or nil when persistence is off.
// ensure creates the S3 bucket when it does not exist.
func resolveStore(ctx context.Context, ensure bool) (store.PlanStore, error) {
	switch cfg.Store.Backend {
	case "file":
		return store.NewFileStore(cfg.Store.Dir), nil
	case "s3":
		provider, err := newProvider(ctx, false)
		if err != nil {
			return nil, err
		}
		bucket := cfg.Store.Bucket
		if bucket == "" {
			account, err := provider.AccountID(ctx)
			if err != nil {
				return nil, err
			}
			bucket = store.BucketName(account, provider.Region())
		}
		s := store.NewS3Store(s3.NewFromConfig(provider.Config()), bucket, cfg.Store.Prefix, store.WithLogger(logger))
		if ensure {
			if err := s.EnsureBucket(ctx, provider.Region()); err != nil {
				return nil, err
			}
		}
		return s, nil
	default:
		return nil, nil
	}
}

// cacheDir is where instance catalog and price lookups are cached.
func cacheDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "capturefit")
}

// clearCacheIfRequested empties the lookup cache when --clear-cache is set.
func clearCacheIfRequested(cmd *cobra.Command) error {
	if want, _ := cmd.Flags().GetBool("clear-cache"); !want {
		return nil
	}
	dir := cacheDir()
	if err := awspkg.NewFileCache(dir).Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	logger.Debug("cleared lookup cache", zap.String("dir", dir))
	return nil
}

func newProvider(ctx context.Context, noCache bool) (*awspkg.Provider, error) {
	dir := ""
	if !noCache {
		dir = cacheDir()
	}

	provider, err := awspkg.NewProvider(ctx, cfg.Cluster.Region, dir, logger)
	if err != nil {
		return nil, fmt.Errorf("creating AWS provider: %w", err)
	}
	return provider, nil
}

// currentPlan returns the stored plan for the configured cluster, falling back to a
// plan computed from the configured inputs when nothing is stored.
func currentPlan(ctx context.Context) (model.ClusterPlan, error) {
	planStore, err := resolveStore(ctx, false)
	if err != nil {
		return model.ClusterPlan{}, err
	}
	if planStore != nil {
		plan, err := planStore.Get(ctx, cfg.Cluster.Name)
		if err == nil {
			return *plan, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return model.ClusterPlan{}, err
		}
		logger.Info("no stored plan, computing from config", zap.String("cluster", cfg.Cluster.Name))
	}
	return planner.BuildClusterPlan(orchestrator.InputFromConfig(cfg, cfg.Capacity.ExpectedTraffic))
}

// outputWriter opens path, or returns stdout when path is empty.
func outputWriter(cmd *cobra.Command) (io.Writer, func(), error) {
	path, _ := cmd.Flags().GetString("output-file")
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func confirm(prompt string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: prompt, Default: false}, &ok)
	return ok, err
}
