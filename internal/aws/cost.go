package aws

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chelma/cloud-demo/internal/model"
)

// HoursPerMonth is the AWS billing convention for a month.
const HoursPerMonth = 730

// LineItem is the cost of one group of identical instances.
type LineItem struct {
	Component    string  `json:"component" yaml:"component"`
	InstanceType string  `json:"instanceType" yaml:"instanceType"`
	Count        int     `json:"count" yaml:"count"`
	HourlyUSD    float64 `json:"hourlyUSD" yaml:"hourlyUSD"`
	MonthlyUSD   float64 `json:"monthlyUSD" yaml:"monthlyUSD"`
}

// CostEstimate is the on-demand compute cost of a plan. Storage and data transfer are
// not included.
type CostEstimate struct {
	Region     string     `json:"region" yaml:"region"`
	Items      []LineItem `json:"items" yaml:"items"`
	MonthlyUSD float64    `json:"monthlyUSD" yaml:"monthlyUSD"`
}

// EstimateCost prices the plan's capture nodes (at desired count), OpenSearch data
// nodes and master nodes. Prices are fetched concurrently.
func (p *Provider) EstimateCost(ctx context.Context, plan model.ClusterPlan) (*CostEstimate, error) {
	var capturePrice, dataPrice, masterPrice float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		capturePrice, err = p.EC2HourlyPrice(gctx, plan.CaptureNodes.InstanceType)
		if err != nil {
			return fmt.Errorf("pricing capture nodes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		dataPrice, err = p.OpenSearchHourlyPrice(gctx, plan.OSDomain.DataNodes.InstanceType)
		if err != nil {
			return fmt.Errorf("pricing data nodes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		masterPrice, err = p.OpenSearchHourlyPrice(gctx, plan.OSDomain.MasterNodes.InstanceType)
		if err != nil {
			return fmt.Errorf("pricing master nodes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	est := BuildEstimate(p.region, plan, capturePrice, dataPrice, masterPrice)
	p.logger.Debug("estimated plan cost",
		zap.String("region", p.region),
		zap.Float64("monthly_usd", est.MonthlyUSD))
	return est, nil
}

// BuildEstimate assembles a CostEstimate from hourly prices.
func BuildEstimate(region string, plan model.ClusterPlan, captureHourly, dataHourly, masterHourly float64) *CostEstimate {
	items := []LineItem{
		lineItem("capture nodes", plan.CaptureNodes.InstanceType, plan.CaptureNodes.DesiredCount, captureHourly),
		lineItem("OpenSearch data nodes", plan.OSDomain.DataNodes.InstanceType, plan.OSDomain.DataNodes.Count, dataHourly),
		lineItem("OpenSearch master nodes", plan.OSDomain.MasterNodes.InstanceType, plan.OSDomain.MasterNodes.Count, masterHourly),
	}

	est := &CostEstimate{Region: region, Items: items}
	for _, it := range items {
		est.MonthlyUSD += it.MonthlyUSD
	}
	return est
}

func lineItem(component, instanceType string, count int, hourly float64) LineItem {
	return LineItem{
		Component:    component,
		InstanceType: instanceType,
		Count:        count,
		HourlyUSD:    hourly,
		MonthlyUSD:   hourly * HoursPerMonth * float64(count),
	}
}
