package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableReporter outputs the plan as sectioned terminal text.
type TableReporter struct {
	w     io.Writer
	title lipgloss.Style
	head  lipgloss.Style
}

// NewTableReporter creates a table reporter. Styling is dropped when w is not a terminal.
func NewTableReporter(w io.Writer) *TableReporter {
	re := lipgloss.NewRenderer(w)
	return &TableReporter{
		w:     w,
		title: re.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		head:  re.NewStyle().Bold(true),
	}
}

func (r *TableReporter) Report(ctx context.Context, pr PlanReport) error {
	w := r.w
	p := pr.Plan
	meta := pr.Meta

	fmt.Fprintf(w, "\n%s\n", r.title.Render("Capture Cluster Plan"))
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 60))
	if meta.ClusterName != "" {
		fmt.Fprintf(w, "Cluster:     %s\n", meta.ClusterName)
	}
	if meta.Region != "" {
		fmt.Fprintf(w, "Region:      %s\n", meta.Region)
	}
	fmt.Fprintf(w, "Traffic:     %g Gbps (%s)\n", meta.Inputs.ExpectedTraffic, meta.TrafficSource)
	fmt.Fprintf(w, "Retention:   %d days SPI, %d replica(s), %d AZs\n",
		meta.Inputs.SPIDays, meta.Inputs.Replicas, meta.Inputs.NumAZs)
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 60))

	r.section("Capture Nodes")
	fmt.Fprintf(w, "  Instance type:  %s\n", p.CaptureNodes.InstanceType)
	fmt.Fprintf(w, "  Count:          %d desired (min %d, max %d)\n",
		p.CaptureNodes.DesiredCount, p.CaptureNodes.MinCount, p.CaptureNodes.MaxCount)
	fmt.Fprintf(w, "  ECS task:       %d CPU units, %d MiB\n", p.EcsResources.CPU, p.EcsResources.Memory)
	fmt.Fprintf(w, "  VPC:            %d AZs\n\n", p.CaptureVpc.NumAzs)

	r.section("OpenSearch Domain")
	fmt.Fprintf(w, "  Data nodes:     %d x %s, %d GiB each\n",
		p.OSDomain.DataNodes.Count, p.OSDomain.DataNodes.InstanceType, p.OSDomain.DataNodes.VolumeSize)
	fmt.Fprintf(w, "  Master nodes:   %d x %s\n", p.OSDomain.MasterNodes.Count, p.OSDomain.MasterNodes.InstanceType)
	fmt.Fprintf(w, "  Storage:        %.1f GiB per replica, %.1f GiB total\n",
		pr.Breakdown.StoragePerReplicaGiB, pr.Breakdown.TotalStorageGiB)
	fmt.Fprintf(w, "  Shards:         %d\n", pr.Breakdown.Shards)
	if pr.Breakdown.QuotaIncreaseNeeded {
		fmt.Fprintf(w, "  Note:           storage exceeds the largest tier, raise the domain node quota\n")
	}
	fmt.Fprintln(w)

	r.section("PCAP Bucket")
	fmt.Fprintf(w, "  Storage class:  %s\n", p.S3.PcapStorageClass)
	fmt.Fprintf(w, "  Retention:      %d days\n\n", p.S3.PcapStorageDays)

	r.section("Viewer Nodes")
	fmt.Fprintf(w, "  Count:          min %d, max %d\n\n", p.ViewerNodes.MinCount, p.ViewerNodes.MaxCount)

	r.section("Changes")
	switch {
	case pr.Previous == nil:
		fmt.Fprintf(w, "  New cluster, no stored plan.\n")
	case len(pr.Changes) == 0:
		fmt.Fprintf(w, "  No changes.\n")
	default:
		for _, c := range pr.Changes {
			fmt.Fprintf(w, "  ~ %s\n", c)
		}
	}

	if pr.Cost != nil {
		fmt.Fprintln(w)
		r.section("Estimated Monthly Cost")
		fmt.Fprintf(w, "  %-24s %-22s %5s %9s %10s\n", "Component", "Instance", "Count", "$/hour", "$/month")
		fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 74))
		for _, it := range pr.Cost.Items {
			fmt.Fprintf(w, "  %-24s %-22s %5d %9.4f %10.2f\n",
				it.Component, it.InstanceType, it.Count, it.HourlyUSD, it.MonthlyUSD)
		}
		fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 74))
		fmt.Fprintf(w, "  %-62s %10.2f\n", "Total (compute only)", pr.Cost.MonthlyUSD)
	}

	if len(pr.Findings) > 0 {
		fmt.Fprintln(w)
		r.section("Findings")
		for _, f := range pr.Findings {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	fmt.Fprintln(w)
	return nil
}

func (r *TableReporter) section(name string) {
	fmt.Fprintf(r.w, "%s\n", r.head.Render(name))
}
