package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/chelma/cloud-demo/internal/aws"
	"github.com/chelma/cloud-demo/internal/model"
	"github.com/chelma/cloud-demo/internal/planner"
)

// document is the machine-readable form shared by the JSON and YAML reporters.
type document struct {
	Meta      ReportMeta        `json:"meta" yaml:"meta"`
	Plan      model.ClusterPlan `json:"plan" yaml:"plan"`
	Breakdown planner.Breakdown `json:"breakdown" yaml:"breakdown"`
	Changed   bool              `json:"changed" yaml:"changed"`
	Changes   []model.Change    `json:"changes" yaml:"changes"`
	Cost      *aws.CostEstimate `json:"cost,omitempty" yaml:"cost,omitempty"`
	Findings  []aws.Finding     `json:"findings,omitempty" yaml:"findings,omitempty"`
}

func newDocument(r PlanReport) document {
	changes := r.Changes
	if changes == nil {
		changes = []model.Change{}
	}
	return document{
		Meta:      r.Meta,
		Plan:      r.Plan,
		Breakdown: r.Breakdown,
		Changed:   r.Previous == nil || len(r.Changes) > 0,
		Changes:   changes,
		Cost:      r.Cost,
		Findings:  r.Findings,
	}
}

// JSONReporter outputs the plan report as JSON.
type JSONReporter struct {
	w io.Writer
}

func (r *JSONReporter) Report(ctx context.Context, pr PlanReport) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newDocument(pr)); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

// YAMLReporter outputs the plan report as YAML.
type YAMLReporter struct {
	w io.Writer
}

func (r *YAMLReporter) Report(ctx context.Context, pr PlanReport) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(pr)); err != nil {
		return fmt.Errorf("encoding YAML output: %w", err)
	}
	return enc.Close()
}
