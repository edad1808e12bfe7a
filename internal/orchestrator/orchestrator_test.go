package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chelma/cloud-demo/internal/aws"
	"github.com/chelma/cloud-demo/internal/config"
	"github.com/chelma/cloud-demo/internal/metrics"
	"github.com/chelma/cloud-demo/internal/model"
	"github.com/chelma/cloud-demo/internal/planner"
	"github.com/chelma/cloud-demo/internal/store"
)

type failingSource struct{ err error }

func (f failingSource) ExpectedTraffic(ctx context.Context, q metrics.TrafficQuery) (float64, error) {
	return 0, f.err
}
func (f failingSource) Ping(ctx context.Context) error { return f.err }
func (f failingSource) BackendType() string            { return "prometheus" }

type fixedEstimator struct {
	est *aws.CostEstimate
	err error
}

func (f fixedEstimator) EstimateCost(ctx context.Context, plan model.ClusterPlan) (*aws.CostEstimate, error) {
	return f.est, f.err
}

func testConfig(traffic float64) config.Config {
	cfg := config.Default()
	cfg.Cluster.Name = "lab"
	cfg.Capacity.ExpectedTraffic = traffic
	cfg.Output.Format = "json"
	return cfg
}

func newTestOrchestrator(t *testing.T, traffic float64, planStore store.PlanStore) (*Orchestrator, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	o := New(metrics.NewStaticSource(traffic), planStore, testConfig(traffic), nil)
	o.Writer = &buf
	return o, &buf
}

func TestOrchestrator_Plan(t *testing.T) {
	o, buf := newTestOrchestrator(t, 5, nil)

	res, err := o.Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	want, err := planner.BuildClusterPlan(InputFromConfig(o.Config, 5))
	if err != nil {
		t.Fatal(err)
	}
	if res.Plan != want {
		t.Errorf("plan = %+v, want %+v", res.Plan, want)
	}
	if !res.Changed() || res.Saved {
		t.Errorf("Changed() = %v, Saved = %v", res.Changed(), res.Saved)
	}
	if !strings.Contains(buf.String(), `"trafficSource": "static"`) {
		t.Errorf("report should name the traffic source:\n%s", buf.String())
	}
}

func TestOrchestrator_PlanTooMuchTraffic(t *testing.T) {
	o, _ := newTestOrchestrator(t, 150, nil)

	_, err := o.Plan(context.Background())
	var tooMuch *planner.TooMuchTrafficError
	if !errors.As(err, &tooMuch) {
		t.Fatalf("expected TooMuchTrafficError, got %v", err)
	}
}

func TestOrchestrator_PlanSourceError(t *testing.T) {
	o, _ := newTestOrchestrator(t, 5, nil)
	o.Source = failingSource{err: metrics.ErrNoTrafficData}

	if _, err := o.Plan(context.Background()); !errors.Is(err, metrics.ErrNoTrafficData) {
		t.Errorf("expected ErrNoTrafficData, got %v", err)
	}
}

func TestOrchestrator_PlanWithoutSource(t *testing.T) {
	o, _ := newTestOrchestrator(t, 1, nil)
	o.Source = nil

	res, err := o.Plan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Input.ExpectedTraffic != 1 {
		t.Errorf("traffic = %v, want config value 1", res.Input.ExpectedTraffic)
	}
}

func TestOrchestrator_PlanCost(t *testing.T) {
	o, _ := newTestOrchestrator(t, 5, nil)
	est := &aws.CostEstimate{Region: "us-east-1", MonthlyUSD: 42}
	o.Estimator = fixedEstimator{est: est}

	res, err := o.Plan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Cost != est {
		t.Errorf("cost = %+v", res.Cost)
	}

	o.Estimator = fixedEstimator{err: errors.New("pricing down")}
	res, err = o.Plan(context.Background())
	if err != nil {
		t.Fatalf("a failed estimate should not fail the plan: %v", err)
	}
	if res.Cost != nil {
		t.Error("cost should be nil when estimation fails")
	}
}

func TestOrchestrator_ApplyRequiresStore(t *testing.T) {
	o, _ := newTestOrchestrator(t, 5, nil)
	if _, err := o.Apply(context.Background()); !errors.Is(err, ErrNoStore) {
		t.Errorf("expected ErrNoStore, got %v", err)
	}
}

func TestOrchestrator_Apply(t *testing.T) {
	fs := store.NewFileStore(t.TempDir())
	ctx := context.Background()

	o, _ := newTestOrchestrator(t, 5, fs)
	res, err := o.Apply(ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !res.Saved || res.Previous != nil {
		t.Fatalf("first apply should save a new plan: %+v", res)
	}

	stored, err := fs.Get(ctx, "lab")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *stored != res.Plan {
		t.Errorf("stored = %+v, want %+v", *stored, res.Plan)
	}

	// Same inputs again: nothing to do.
	res, err = o.Apply(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed() || res.Saved {
		t.Errorf("second apply should be a no-op: changed=%v saved=%v", res.Changed(), res.Saved)
	}

	// More traffic: the diff is reported and saved.
	o2, _ := newTestOrchestrator(t, 50, fs)
	res, err = o2.Apply(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Changes) == 0 || !res.Saved {
		t.Errorf("expected saved changes, got %+v", res)
	}
}

func TestOrchestrator_ApplyDeclined(t *testing.T) {
	fs := store.NewFileStore(t.TempDir())
	o, _ := newTestOrchestrator(t, 5, fs)

	var prompt string
	o.Confirm = func(p string) (bool, error) {
		prompt = p
		return false, nil
	}

	res, err := o.Apply(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Saved {
		t.Error("declined apply should not save")
	}
	if !strings.Contains(prompt, `"lab"`) {
		t.Errorf("prompt = %q", prompt)
	}
	if _, err := fs.Get(context.Background(), "lab"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected nothing stored, got %v", err)
	}
}

func TestOrchestrator_ApplyInvalidName(t *testing.T) {
	o, _ := newTestOrchestrator(t, 5, store.NewFileStore(t.TempDir()))
	o.Config.Cluster.Name = ""
	if _, err := o.Apply(context.Background()); err == nil {
		t.Error("expected error for empty cluster name")
	}
}
