package planner

import (
	"math"

	"github.com/chelma/cloud-demo/internal/model"
)

const (
	// MaxTraffic is the scaling limit of a single traffic-mirroring VPC endpoint, in Gbps.
	MaxTraffic = 100.0

	// MinTraffic is the floor every plan is sized for, in Gbps; it yields a minimal cluster.
	MinTraffic = 0.01

	// MinimumCaptureNodes keeps at least one capture node running.
	MinimumCaptureNodes = 1

	// CapacityBufferFactor is the autoscaling headroom over the desired capture node count.
	CapacityBufferFactor = 1.25

	// MasterNodeCount is the recommended dedicated master quorum.
	MasterNodeCount = model.MasterQuorum
)

// Planning defaults applied when the operator leaves an input unset.
const (
	DefaultSPIDays          = 30  // days of SPI metadata kept in the domain
	DefaultReplicas         = 1   // replicas of that metadata
	DefaultHistoryDays      = 365 // days of viewer user history kept in the domain
	DefaultNumAZs           = 2
	DefaultPcapStorageClass = "STANDARD"
	DefaultPcapStorageDays  = 30
)

// unbounded marks a master candidate with no shard or node ceiling.
const unbounded = math.MaxInt

// CaptureInstance is a candidate instance type for the capture nodes.
type CaptureInstance struct {
	InstanceType string
	MaxTraffic   float64 // Gbps ceiling before the next type is chosen
	TrafficPer   float64 // Gbps one instance sustains
	EcsCPU       int
	EcsMemory    int // MB
}

// MasterInstance is a candidate instance type for the dedicated master nodes.
type MasterInstance struct {
	InstanceType string
	IsArm        bool
	MaxShards    int
	MaxNodes     int
}

// DataNodeTier is a candidate data node type with its per-node storage.
type DataNodeTier struct {
	InstanceType string
	VolumeSize   int  // GiB per node
	NodeLimit    int  // default service quota for this type
	IsArm        bool // selects the master family; families cannot be mixed
}

// Ordered by MaxTraffic. The last entry must cover MaxTraffic.
var captureInstances = []CaptureInstance{
	{InstanceType: "t3.medium", MaxTraffic: 0.5, TrafficPer: 0.25, EcsCPU: 1536, EcsMemory: 3072},
	{InstanceType: "m5.xlarge", MaxTraffic: MaxTraffic, TrafficPer: 2.0, EcsCPU: 3584, EcsMemory: 15360},
}

// Within each family, ordered smallest to largest so the first fit is the cheapest.
var masterInstances = []MasterInstance{
	// non-ARM
	{InstanceType: "t3.small.search", IsArm: false, MaxShards: unbounded, MaxNodes: 3},
	{InstanceType: "t3.medium.search", IsArm: false, MaxShards: unbounded, MaxNodes: 6},
	{InstanceType: "m5.large.search", IsArm: false, MaxShards: unbounded, MaxNodes: unbounded},
	// ARM
	{InstanceType: "m6g.large.search", IsArm: true, MaxShards: 10000, MaxNodes: 10},
	{InstanceType: "c6g.2xlarge.search", IsArm: true, MaxShards: 30000, MaxNodes: 30},
	{InstanceType: "r6g.2xlarge.search", IsArm: true, MaxShards: 75000, MaxNodes: 125},
	{InstanceType: "r6g.4xlarge.search", IsArm: true, MaxShards: unbounded, MaxNodes: unbounded},
}

// OpenSearch Service allows 10 T2/T3 data nodes or 80 of other types by default.
var dataNodeTiers = []DataNodeTier{
	{InstanceType: "t3.small.search", VolumeSize: 100, NodeLimit: 10, IsArm: false},
	{InstanceType: "r6g.large.search", VolumeSize: 1024, NodeLimit: 80, IsArm: true},
	{InstanceType: "r6g.4xlarge.search", VolumeSize: 6 * 1024, NodeLimit: 80, IsArm: true},
	{InstanceType: "r6g.12xlarge.search", VolumeSize: 12 * 1024, NodeLimit: 80, IsArm: true},
}

// CaptureInstances returns a copy of the capture candidate table.
func CaptureInstances() []CaptureInstance {
	return append([]CaptureInstance(nil), captureInstances...)
}

// MasterInstances returns a copy of the master candidate table.
func MasterInstances() []MasterInstance {
	return append([]MasterInstance(nil), masterInstances...)
}

// DataNodeTiers returns a copy of the data node tier table.
func DataNodeTiers() []DataNodeTier {
	return append([]DataNodeTier(nil), dataNodeTiers...)
}

// dataNodeTier finds the tier definition for a data node instance type.
func dataNodeTier(instanceType string) (DataNodeTier, bool) {
	return FirstMatch(dataNodeTiers, func(t DataNodeTier) bool {
		return t.InstanceType == instanceType
	})
}
