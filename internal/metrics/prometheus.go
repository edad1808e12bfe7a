package metrics

import (
	"context"
	"fmt"
	"math"
	"time"

	promapi "github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	prommodel "github.com/prometheus/common/model"
)

// PrometheusSource reads observed traffic from Prometheus, Thanos, or Cortex.
type PrometheusSource struct {
	api      promv1.API
	endpoint string
	backend  string
	timeout  time.Duration
}

// PrometheusOption configures the Prometheus source.
type PrometheusOption func(*PrometheusSource)

// WithTimeout sets the query timeout.
func WithTimeout(d time.Duration) PrometheusOption {
	return func(c *PrometheusSource) { c.timeout = d }
}

// NewPrometheusSource creates a source connected to the given endpoint.
func NewPrometheusSource(endpoint string, opts ...PrometheusOption) (*PrometheusSource, error) {
	client, err := promapi.NewClient(promapi.Config{
		Address: endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("creating prometheus client: %w", err)
	}
	return newPrometheusSource(promv1.NewAPI(client), endpoint, opts...), nil
}

func newPrometheusSource(api promv1.API, endpoint string, opts ...PrometheusOption) *PrometheusSource {
	c := &PrometheusSource{
		api:      api,
		endpoint: endpoint,
		backend:  "prometheus",
		timeout:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks connectivity and detects the backend type.
func (c *PrometheusSource) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, _, err := c.api.Query(ctx, "up", time.Now())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrometheusUnreachable, err)
	}

	c.detectBackend(ctx)
	return nil
}

// BackendType returns the detected backend type.
func (c *PrometheusSource) BackendType() string {
	return c.backend
}

// detectBackend tries to identify Thanos or Cortex.
func (c *PrometheusSource) detectBackend(ctx context.Context) {
	result, _, err := c.api.Query(ctx, "thanos_store_nodes_total", time.Now())
	if err == nil && hasSamples(result) {
		c.backend = "thanos"
		return
	}

	result, _, err = c.api.Query(ctx, "cortex_ingester_active_series", time.Now())
	if err == nil && hasSamples(result) {
		c.backend = "cortex"
	}
}

// ExpectedTraffic returns the aggregate traffic at q.Percentile over q.Window, in Gbps.
func (c *PrometheusSource) ExpectedTraffic(ctx context.Context, q TrafficQuery) (float64, error) {
	q = q.withDefaults()
	query := queryTrafficPercentile(q.Counter, q.Percentile, formatDuration(q.Window), formatDuration(q.Step))
	return c.scalar(ctx, query, q.End)
}

// CurrentTraffic returns the aggregate traffic right now, in Gbps.
func (c *PrometheusSource) CurrentTraffic(ctx context.Context, counter string) (float64, error) {
	q := TrafficQuery{Counter: counter}.withDefaults()
	return c.scalar(ctx, queryTrafficNow(q.Counter), q.End)
}

func (c *PrometheusSource) scalar(ctx context.Context, query string, at time.Time) (float64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, _, err := c.api.Query(queryCtx, query, at)
	if err != nil {
		return 0, fmt.Errorf("querying traffic: %w", err)
	}

	v, ok := extractScalar(result)
	if !ok {
		return 0, ErrNoTrafficData
	}
	return v, nil
}

// extractScalar returns the single value of an aggregate query. NaN samples, which
// Prometheus yields for an empty range, count as no data.
func extractScalar(v prommodel.Value) (float64, bool) {
	var f float64
	switch r := v.(type) {
	case prommodel.Vector:
		if len(r) == 0 {
			return 0, false
		}
		f = float64(r[0].Value)
	case *prommodel.Scalar:
		if r == nil {
			return 0, false
		}
		f = float64(r.Value)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func hasSamples(v prommodel.Value) bool {
	vec, ok := v.(prommodel.Vector)
	return ok && len(vec) > 0
}

// formatDuration formats a time.Duration to a Prometheus-compatible duration string.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	hours := int(d.Hours())
	if hours >= 24 && hours%24 == 0 {
		return fmt.Sprintf("%dd", hours/24)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	minutes := int(d.Minutes())
	if minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
