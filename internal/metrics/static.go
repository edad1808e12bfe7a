package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// TrafficSample is the on-disk format for offline traffic data.
type TrafficSample struct {
	ExpectedTrafficGbps *float64  `json:"expected_traffic_gbps,omitempty"`
	SamplesGbps         []float64 `json:"samples_gbps,omitempty"`
}

// StaticSource returns a fixed traffic figure, or one derived from a JSON sample file.
// Used for operator-supplied values, offline analysis, and CI pipelines.
type StaticSource struct {
	filePath string
	gbps     float64
	fixed    bool
}

// NewStaticSource creates a source that always reports gbps.
func NewStaticSource(gbps float64) *StaticSource {
	return &StaticSource{gbps: gbps, fixed: true}
}

// NewStaticSourceFromFile creates a source that reads a TrafficSample file.
func NewStaticSourceFromFile(filePath string) *StaticSource {
	return &StaticSource{filePath: filePath}
}

// Ping checks that the file exists.
func (s *StaticSource) Ping(ctx context.Context) error {
	if s.fixed {
		return nil
	}
	_, err := os.Stat(s.filePath)
	if err != nil {
		return fmt.Errorf("static traffic file: %w", err)
	}
	return nil
}

// BackendType returns "static".
func (s *StaticSource) BackendType() string {
	return "static"
}

// ExpectedTraffic returns the fixed value, the file's explicit value, or the requested
// percentile of the file's samples.
func (s *StaticSource) ExpectedTraffic(ctx context.Context, q TrafficQuery) (float64, error) {
	if s.fixed {
		return s.gbps, nil
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return 0, fmt.Errorf("reading static traffic file: %w", err)
	}

	var sample TrafficSample
	if err := json.Unmarshal(data, &sample); err != nil {
		return 0, fmt.Errorf("parsing static traffic file: %w", err)
	}

	if sample.ExpectedTrafficGbps != nil {
		return *sample.ExpectedTrafficGbps, nil
	}
	if len(sample.SamplesGbps) == 0 {
		return 0, ErrNoTrafficData
	}
	return nearestRank(sample.SamplesGbps, q.withDefaults().Percentile), nil
}

// nearestRank returns the p-th percentile of values using the nearest-rank method.
func nearestRank(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	rank := int(math.Ceil(p * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
