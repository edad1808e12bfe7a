package metrics

import (
	"context"
	"errors"
	"time"
)

var (
	ErrPrometheusUnreachable = errors.New("prometheus endpoint unreachable")
	ErrNoTrafficData         = errors.New("no traffic samples found for the specified criteria")
)

// TrafficSource resolves the expected sustained traffic a cluster must capture.
type TrafficSource interface {
	// ExpectedTraffic returns the traffic to plan for, in Gbps.
	ExpectedTraffic(ctx context.Context, q TrafficQuery) (float64, error)

	// Ping validates connectivity to the backend.
	Ping(ctx context.Context) error

	// BackendType returns the detected backend type.
	BackendType() string
}

// TrafficQuery configures how observed traffic is reduced to one number.
type TrafficQuery struct {
	End        time.Time     // zero = now
	Window     time.Duration // history considered
	Step       time.Duration // PromQL subquery resolution
	Percentile float64       // 0.95 plans for the p95 of the window
	Counter    string        // monotonically increasing bytes-received counter
}

func (q TrafficQuery) withDefaults() TrafficQuery {
	if q.End.IsZero() {
		q.End = time.Now()
	}
	if q.Window <= 0 {
		q.Window = 7 * 24 * time.Hour
	}
	if q.Step <= 0 {
		q.Step = 5 * time.Minute
	}
	if q.Percentile == 0 {
		q.Percentile = 0.95
	}
	if q.Counter == "" {
		q.Counter = "node_network_receive_bytes_total"
	}
	return q
}
