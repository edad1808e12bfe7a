package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/chelma/cloud-demo/internal/aws"
	"github.com/chelma/cloud-demo/internal/config"
	"github.com/chelma/cloud-demo/internal/metrics"
	"github.com/chelma/cloud-demo/internal/model"
	"github.com/chelma/cloud-demo/internal/planner"
	"github.com/chelma/cloud-demo/internal/report"
	"github.com/chelma/cloud-demo/internal/store"
)

// ErrNoStore is returned by Apply when no plan store is configured.
var ErrNoStore = errors.New("no plan store configured; set store.backend to file or s3")

// CostEstimator prices a plan. *aws.Provider satisfies it.
type CostEstimator interface {
	EstimateCost(ctx context.Context, plan model.ClusterPlan) (*aws.CostEstimate, error)
}

// Orchestrator coordinates the plan pipeline: resolve traffic, plan, diff against the
// stored plan, report, and optionally persist.
type Orchestrator struct {
	Source    metrics.TrafficSource
	Store     store.PlanStore // nil disables diffing and Apply
	Estimator CostEstimator   // nil skips the cost estimate
	Logger    *zap.Logger
	Config    config.Config
	Writer    io.Writer

	// Confirm is asked before Apply overwrites a stored plan. nil approves.
	Confirm func(prompt string) (bool, error)
}

// Result is the outcome of a Plan or Apply run.
type Result struct {
	Input    planner.Input
	Plan     model.ClusterPlan
	Previous *model.ClusterPlan
	Changes  []model.Change
	Cost     *aws.CostEstimate
	Saved    bool
}

// Changed reports whether the plan differs from the stored one. A cluster with no
// stored plan counts as changed.
func (r *Result) Changed() bool {
	return r.Previous == nil || len(r.Changes) > 0
}

// New creates an orchestrator with the given dependencies.
func New(source metrics.TrafficSource, planStore store.PlanStore, cfg config.Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		Source: source,
		Store:  planStore,
		Config: cfg,
		Logger: logger,
		Writer: os.Stdout,
	}
}

// InputFromConfig builds planner inputs from the capacity and S3 sections of cfg.
func InputFromConfig(cfg config.Config, trafficGbps float64) planner.Input {
	return planner.Input{
		ExpectedTraffic: trafficGbps,
		SPIDays:         cfg.Capacity.SPIDays,
		Replicas:        cfg.Capacity.Replicas,
		NumAZs:          cfg.Capacity.NumAZs,
		S3: planner.S3Overrides{
			StorageClass: cfg.S3.PcapStorageClass,
			StorageDays:  cfg.S3.PcapStorageDays,
		},
	}
}

// Plan computes the cluster plan and reports it with its changes against the stored
// plan. Nothing is persisted.
func (o *Orchestrator) Plan(ctx context.Context) (*Result, error) {
	res, err := o.plan(ctx)
	if err != nil {
		return nil, err
	}
	if err := o.report(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Apply runs Plan and stores the result when it changed and Confirm approves.
func (o *Orchestrator) Apply(ctx context.Context) (*Result, error) {
	if o.Store == nil {
		return nil, ErrNoStore
	}

	res, err := o.Plan(ctx)
	if err != nil {
		return nil, err
	}

	cluster := o.Config.Cluster.Name
	if !res.Changed() {
		o.logger().Info("stored plan is up to date", zap.String("cluster", cluster))
		return res, nil
	}

	if o.Confirm != nil {
		ok, err := o.Confirm(fmt.Sprintf("Save plan for cluster %q?", cluster))
		if err != nil {
			return nil, fmt.Errorf("confirming apply: %w", err)
		}
		if !ok {
			o.logger().Info("apply cancelled", zap.String("cluster", cluster))
			return res, nil
		}
	}

	if err := o.Store.Put(ctx, cluster, res.Plan); err != nil {
		return nil, fmt.Errorf("saving plan: %w", err)
	}
	res.Saved = true
	o.logger().Info("plan saved",
		zap.String("cluster", cluster),
		zap.Int("changes", len(res.Changes)))
	return res, nil
}

func (o *Orchestrator) plan(ctx context.Context) (*Result, error) {
	cfg := o.Config
	log := o.logger()

	if o.Store != nil {
		if err := model.ValidateClusterName(cfg.Cluster.Name); err != nil {
			return nil, err
		}
	}

	traffic, err := o.resolveTraffic(ctx)
	if err != nil {
		return nil, err
	}

	in := InputFromConfig(cfg, traffic)
	plan, err := planner.BuildClusterPlan(in)
	if err != nil {
		return nil, err
	}
	log.Debug("built cluster plan",
		zap.Float64("traffic_gbps", traffic),
		zap.String("capture_type", plan.CaptureNodes.InstanceType),
		zap.Int("data_nodes", plan.OSDomain.DataNodes.Count))

	res := &Result{Input: in, Plan: plan}

	if o.Store != nil {
		prev, err := o.Store.Get(ctx, cfg.Cluster.Name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			log.Debug("no stored plan", zap.String("cluster", cfg.Cluster.Name))
		case err != nil:
			return nil, fmt.Errorf("loading stored plan: %w", err)
		default:
			res.Previous = prev
			res.Changes = plan.Diff(*prev)
		}
	}

	if o.Estimator != nil {
		cost, err := o.Estimator.EstimateCost(ctx, plan)
		if err != nil {
			// The plan is still useful without prices.
			log.Warn("cost estimate unavailable", zap.Error(err))
		} else {
			res.Cost = cost
		}
	}

	return res, nil
}

func (o *Orchestrator) resolveTraffic(ctx context.Context) (float64, error) {
	cfg := o.Config
	if o.Source == nil {
		return cfg.Capacity.ExpectedTraffic, nil
	}

	o.logger().Info("resolving expected traffic", zap.String("backend", o.Source.BackendType()))
	gbps, err := o.Source.ExpectedTraffic(ctx, metrics.TrafficQuery{
		Window:     cfg.Traffic.Window,
		Step:       cfg.Traffic.Step,
		Percentile: cfg.Traffic.Percentile,
		Counter:    cfg.Traffic.Counter,
	})
	if err != nil {
		return 0, fmt.Errorf("resolving expected traffic: %w", err)
	}
	o.logger().Info("expected traffic resolved", zap.Float64("gbps", gbps))
	return gbps, nil
}

func (o *Orchestrator) report(ctx context.Context, res *Result) error {
	backend := "config"
	if o.Source != nil {
		backend = o.Source.BackendType()
	}

	pr := report.PlanReport{
		Meta: report.ReportMeta{
			ClusterName:   o.Config.Cluster.Name,
			Region:        o.Config.Cluster.Region,
			GeneratedAt:   time.Now().UTC(),
			TrafficSource: backend,
			Inputs:        report.InputsFrom(res.Input),
		},
		Plan:      res.Plan,
		Breakdown: planner.Explain(res.Input),
		Previous:  res.Previous,
		Changes:   res.Changes,
		Cost:      res.Cost,
	}

	w := o.Writer
	if w == nil {
		w = os.Stdout
	}
	if err := report.NewReporter(o.Config.Output.Format, w).Report(ctx, pr); err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	return nil
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
