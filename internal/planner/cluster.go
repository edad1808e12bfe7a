package planner

import (
	"fmt"

	"github.com/chelma/cloud-demo/internal/model"
)

// S3Overrides are operator choices for PCAP retention. Zero values keep the defaults.
type S3Overrides struct {
	StorageClass string
	StorageDays  int
}

// PlanS3 returns the PCAP lifecycle plan. Retention is an operator choice; traffic
// plays no part in it.
func PlanS3(o S3Overrides) model.S3Plan {
	plan := model.S3Plan{
		PcapStorageClass: DefaultPcapStorageClass,
		PcapStorageDays:  DefaultPcapStorageDays,
	}
	if o.StorageClass != "" {
		plan.PcapStorageClass = o.StorageClass
	}
	if o.StorageDays > 0 {
		plan.PcapStorageDays = o.StorageDays
	}
	return plan
}

// Input holds everything a cluster plan is computed from.
type Input struct {
	ExpectedTraffic float64 // Gbps
	SPIDays         int
	Replicas        int
	NumAZs          int
	S3              S3Overrides
}

// DefaultInput returns the inputs used when the operator supplies only traffic.
func DefaultInput(trafficGbps float64) Input {
	return Input{
		ExpectedTraffic: trafficGbps,
		SPIDays:         DefaultSPIDays,
		Replicas:        DefaultReplicas,
		NumAZs:          DefaultNumAZs,
	}
}

// Normalize fills unset retention and AZ inputs with their defaults. Zero replicas is a
// valid choice and is kept.
func (in Input) Normalize() Input {
	if in.SPIDays <= 0 {
		in.SPIDays = DefaultSPIDays
	}
	if in.Replicas < 0 {
		in.Replicas = 0
	}
	if in.NumAZs <= 0 {
		in.NumAZs = DefaultNumAZs
	}
	return in
}

// BuildClusterPlan composes the capture, ECS, OpenSearch, S3 and viewer plans. Any
// failure aborts the whole plan.
func BuildClusterPlan(in Input) (model.ClusterPlan, error) {
	in = in.Normalize()

	capture, err := PlanCaptureNodes(in.ExpectedTraffic)
	if err != nil {
		return model.ClusterPlan{}, fmt.Errorf("planning capture nodes: %w", err)
	}

	ecs, err := PlanEcsResources(capture.InstanceType)
	if err != nil {
		return model.ClusterPlan{}, fmt.Errorf("planning ECS resources: %w", err)
	}

	osDomain, err := PlanOSDomain(in.ExpectedTraffic, in.SPIDays, in.Replicas, in.NumAZs)
	if err != nil {
		return model.ClusterPlan{}, fmt.Errorf("planning OpenSearch domain: %w", err)
	}

	return model.ClusterPlan{
		CaptureNodes: capture,
		CaptureVpc:   model.CaptureVpcPlan{NumAzs: in.NumAZs},
		EcsResources: ecs,
		OSDomain:     osDomain,
		S3:           PlanS3(in.S3),
		ViewerNodes:  PlanViewerNodes(in.ExpectedTraffic),
	}, nil
}

// Breakdown exposes the intermediate quantities behind a plan for reporting.
type Breakdown struct {
	EffectiveTraffic     float64 `json:"effectiveTrafficGbps" yaml:"effectiveTrafficGbps"`
	StoragePerReplicaGiB float64 `json:"storagePerReplicaGiB" yaml:"storagePerReplicaGiB"`
	TotalStorageGiB      float64 `json:"totalStorageGiB" yaml:"totalStorageGiB"`
	Shards               int     `json:"shards" yaml:"shards"`
	QuotaIncreaseNeeded  bool    `json:"quotaIncreaseNeeded" yaml:"quotaIncreaseNeeded"`
}

// Explain computes the Breakdown for the given inputs.
func Explain(in Input) Breakdown {
	in = in.Normalize()
	perReplica := StoragePerReplica(in.ExpectedTraffic, in.SPIDays)
	total := TotalStorage(in.ExpectedTraffic, in.SPIDays, in.Replicas)

	largest := dataNodeTiers[len(dataNodeTiers)-1]
	return Breakdown{
		EffectiveTraffic:     clampTraffic(in.ExpectedTraffic),
		StoragePerReplicaGiB: perReplica,
		TotalStorageGiB:      total,
		Shards:               ShardCount(perReplica),
		QuotaIncreaseNeeded:  total > float64(largest.NodeLimit*largest.VolumeSize),
	}
}
