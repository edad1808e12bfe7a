package report

import (
	"context"
	"io"
	"time"

	"github.com/chelma/cloud-demo/internal/aws"
	"github.com/chelma/cloud-demo/internal/model"
	"github.com/chelma/cloud-demo/internal/planner"
)

// Reporter formats and writes a plan report to an output destination.
type Reporter interface {
	Report(ctx context.Context, r PlanReport) error
}

// PlanReport is everything a reporter renders.
type PlanReport struct {
	Meta      ReportMeta
	Plan      model.ClusterPlan
	Breakdown planner.Breakdown

	// Previous is nil when no plan was stored for the cluster.
	Previous *model.ClusterPlan
	Changes  []model.Change

	Cost     *aws.CostEstimate
	Findings []aws.Finding
}

// ReportMeta contains contextual metadata for the report.
type ReportMeta struct {
	ClusterName   string    `json:"clusterName,omitempty" yaml:"clusterName,omitempty"`
	Region        string    `json:"region,omitempty" yaml:"region,omitempty"`
	GeneratedAt   time.Time `json:"generatedAt" yaml:"generatedAt"`
	TrafficSource string    `json:"trafficSource" yaml:"trafficSource"`
	Inputs        Inputs    `json:"inputs" yaml:"inputs"`
}

// Inputs echoes the planning inputs the plan was computed from.
type Inputs struct {
	ExpectedTraffic  float64 `json:"expectedTraffic" yaml:"expectedTraffic"`
	SPIDays          int     `json:"spiDays" yaml:"spiDays"`
	Replicas         int     `json:"replicas" yaml:"replicas"`
	NumAZs           int     `json:"numAzs" yaml:"numAzs"`
	PcapStorageClass string  `json:"pcapStorageClass,omitempty" yaml:"pcapStorageClass,omitempty"`
	PcapStorageDays  int     `json:"pcapStorageDays,omitempty" yaml:"pcapStorageDays,omitempty"`
}

// InputsFrom converts planner inputs for reporting.
func InputsFrom(in planner.Input) Inputs {
	return Inputs{
		ExpectedTraffic:  in.ExpectedTraffic,
		SPIDays:          in.SPIDays,
		Replicas:         in.Replicas,
		NumAZs:           in.NumAZs,
		PcapStorageClass: in.S3.StorageClass,
		PcapStorageDays:  in.S3.StorageDays,
	}
}

// NewReporter creates a reporter for the given format writing to w.
func NewReporter(format string, w io.Writer) Reporter {
	switch format {
	case "json":
		return &JSONReporter{w: w}
	case "yaml":
		return &YAMLReporter{w: w}
	default:
		return NewTableReporter(w)
	}
}
