package planner

import (
	"errors"
	"math"
	"strings"
	"testing"
	"testing/quick"

	"github.com/chelma/cloud-demo/internal/model"
)

func TestStoragePerReplica(t *testing.T) {
	tests := []struct {
		name    string
		traffic float64
		spiDays int
		want    float64
	}{
		{"1 Gbps for 30 days", 1, 30, 9720},
		{"floor traffic", 0.01, 30, 97.2},
		{"zero traffic", 0, 30, 0},
		{"negative traffic", -5, 30, 0},
		{"NaN traffic", math.NaN(), 30, 0},
		{"one day", 1, 1, 324},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StoragePerReplica(tt.traffic, tt.spiDays)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("StoragePerReplica(%v, %d) = %v, want %v", tt.traffic, tt.spiDays, got, tt.want)
			}
		})
	}
}

func TestTotalStorage(t *testing.T) {
	perReplica := StoragePerReplica(1, 30)
	for _, replicas := range []int{0, 1, 2} {
		got := TotalStorage(1, 30, replicas)
		want := perReplica * float64(1+replicas)
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("TotalStorage(1, 30, %d) = %v, want %v", replicas, got, want)
		}
	}
}

func TestShardCount(t *testing.T) {
	tests := []struct {
		storage float64
		want    int
	}{
		{0, 0},
		{1, 1},
		{50, 1},
		{50.1, 2},
		{97.2, 2},
		{9720, 195},
	}
	for _, tt := range tests {
		if got := ShardCount(tt.storage); got != tt.want {
			t.Errorf("ShardCount(%v) = %d, want %d", tt.storage, got, tt.want)
		}
	}
}

func TestPlanDataNodes(t *testing.T) {
	tests := []struct {
		name   string
		total  float64
		numAZs int
		want   model.DataNodesPlan
	}{
		{"empty domain keeps two nodes", 0, 2, model.DataNodesPlan{Count: 2, InstanceType: "t3.small.search", VolumeSize: 100}},
		{"t3 quota exactly", 1000, 2, model.DataNodesPlan{Count: 10, InstanceType: "t3.small.search", VolumeSize: 100}},
		{"t3 quota exactly, 3 AZs", 1000, 3, model.DataNodesPlan{Count: 10, InstanceType: "t3.small.search", VolumeSize: 100}},
		{"just over t3 quota", 1000.5, 2, model.DataNodesPlan{Count: 2, InstanceType: "r6g.large.search", VolumeSize: 1024}},
		{"odd count rounds up at 2 AZs", 250, 2, model.DataNodesPlan{Count: 4, InstanceType: "t3.small.search", VolumeSize: 100}},
		{"odd count kept at 3 AZs", 250, 3, model.DataNodesPlan{Count: 3, InstanceType: "t3.small.search", VolumeSize: 100}},
		{"r6g.large quota exactly", 81920, 2, model.DataNodesPlan{Count: 80, InstanceType: "r6g.large.search", VolumeSize: 1024}},
		{"just over r6g.large quota", 81921, 2, model.DataNodesPlan{Count: 14, InstanceType: "r6g.4xlarge.search", VolumeSize: 6144}},
		{"50 Gbps total", 972000, 2, model.DataNodesPlan{Count: 80, InstanceType: "r6g.12xlarge.search", VolumeSize: 12288}},
		{"beyond every quota", 2000000, 2, model.DataNodesPlan{Count: 164, InstanceType: "r6g.12xlarge.search", VolumeSize: 12288}},
		{"beyond every quota, 3 AZs", 2000000, 3, model.DataNodesPlan{Count: 163, InstanceType: "r6g.12xlarge.search", VolumeSize: 12288}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanDataNodes(tt.total, tt.numAZs)
			if got != tt.want {
				t.Errorf("PlanDataNodes(%v, %d) = %+v, want %+v", tt.total, tt.numAZs, got, tt.want)
			}
		})
	}
}

func TestPlanDataNodes_Properties(t *testing.T) {
	prop := func(x float64, azs uint8) bool {
		total := math.Mod(math.Abs(x), 3e6)
		numAZs := int(azs%3) + 2
		plan := PlanDataNodes(total, numAZs)
		if plan.Count < 2 {
			return false
		}
		if numAZs == 2 && plan.Count%2 != 0 {
			return false
		}
		return float64(plan.Count*plan.VolumeSize) >= total-1e-6
	}
	if err := quick.Check(prop, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
}

func TestPlanMasterNodes(t *testing.T) {
	tests := []struct {
		name       string
		perReplica float64
		dataNodes  model.DataNodesPlan
		want       string
	}{
		{"small domain", 97.2, model.DataNodesPlan{Count: 2, InstanceType: "t3.small.search", VolumeSize: 100}, "t3.small.search"},
		{"four t3 data nodes", 300, model.DataNodesPlan{Count: 4, InstanceType: "t3.small.search", VolumeSize: 100}, "t3.medium.search"},
		{"ten t3 data nodes", 500, model.DataNodesPlan{Count: 10, InstanceType: "t3.small.search", VolumeSize: 100}, "m5.large.search"},
		{"two r6g.large data nodes", 500, model.DataNodesPlan{Count: 2, InstanceType: "r6g.large.search", VolumeSize: 1024}, "m6g.large.search"},
		{"node count beyond m6g", 40000, model.DataNodesPlan{Count: 14, InstanceType: "r6g.4xlarge.search", VolumeSize: 6144}, "c6g.2xlarge.search"},
		{"shard count beyond m6g", 50 * 10001, model.DataNodesPlan{Count: 2, InstanceType: "r6g.12xlarge.search", VolumeSize: 12288}, "c6g.2xlarge.search"},
		{"50 Gbps domain", 486000, model.DataNodesPlan{Count: 80, InstanceType: "r6g.12xlarge.search", VolumeSize: 12288}, "r6g.2xlarge.search"},
		{"past the default quota", 1000000, model.DataNodesPlan{Count: 200, InstanceType: "r6g.12xlarge.search", VolumeSize: 12288}, "r6g.4xlarge.search"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanMasterNodes(tt.perReplica, tt.dataNodes)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.InstanceType != tt.want {
				t.Errorf("InstanceType = %q, want %q", got.InstanceType, tt.want)
			}
			if got.Count != MasterNodeCount {
				t.Errorf("Count = %d, want %d", got.Count, MasterNodeCount)
			}
		})
	}
}

func TestPlanMasterNodes_UnknownDataNodeType(t *testing.T) {
	_, err := PlanMasterNodes(100, model.DataNodesPlan{Count: 2, InstanceType: "i3.large.search", VolumeSize: 100})
	var unknown *UnknownInstanceTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownInstanceTypeError, got %v", err)
	}
	if unknown.InstanceType != "i3.large.search" {
		t.Errorf("InstanceType = %q", unknown.InstanceType)
	}
}

func TestSelectMaster_Unsatisfiable(t *testing.T) {
	restricted := []MasterInstance{
		{InstanceType: "m6g.large.search", IsArm: true, MaxShards: 10000, MaxNodes: 10},
		{InstanceType: "t3.small.search", IsArm: false, MaxShards: unbounded, MaxNodes: 3},
	}

	if _, ok := selectMaster(restricted, true, 20000, 2); ok {
		t.Error("expected no ARM master for 20000 shards")
	}
	if _, ok := selectMaster(restricted, true, 100, 11); ok {
		t.Error("expected no ARM master for 11 data nodes")
	}
	if got, ok := selectMaster(restricted, false, 20000, 2); !ok || got.InstanceType != "t3.small.search" {
		t.Errorf("selectMaster(non-ARM) = %q, %v", got.InstanceType, ok)
	}

	err := &UnsatisfiableCapacityError{Shards: 20000, DataNodeCount: 2, DataNodeType: "r6g.large.search", Arm: true}
	msg := err.Error()
	for _, want := range []string{"ARM", "20000", "r6g.large.search"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q should contain %q", msg, want)
		}
	}
	if !IsPermanent(err) {
		t.Error("UnsatisfiableCapacityError should be permanent")
	}
}

func TestMasterTable_EachFamilyEndsUnbounded(t *testing.T) {
	for _, arm := range []bool{false, true} {
		var last MasterInstance
		for _, m := range MasterInstances() {
			if m.IsArm == arm {
				last = m
			}
		}
		if last.MaxShards != unbounded || last.MaxNodes != unbounded {
			t.Errorf("largest master for arm=%v is bounded: %+v", arm, last)
		}
	}
}

func TestPlanOSDomain_Properties(t *testing.T) {
	prop := func(x float64, days, azs uint8) bool {
		traffic := math.Mod(math.Abs(x), MaxTraffic)
		spiDays := int(days%120) + 1
		numAZs := int(azs%3) + 2
		plan, err := PlanOSDomain(traffic, spiDays, 1, numAZs)
		if err != nil {
			return false
		}
		if plan.MasterNodes.Count != MasterNodeCount || plan.DataNodes.Count < 2 {
			return false
		}
		if numAZs == 2 && plan.DataNodes.Count%2 != 0 {
			return false
		}
		tier, ok := dataNodeTier(plan.DataNodes.InstanceType)
		if !ok {
			return false
		}
		master, ok := FirstMatch(masterInstances, func(m MasterInstance) bool {
			return m.InstanceType == plan.MasterNodes.InstanceType
		})
		return ok && master.IsArm == tier.IsArm
	}
	if err := quick.Check(prop, &quick.Config{MaxCount: 1000}); err != nil {
		t.Error(err)
	}
}
