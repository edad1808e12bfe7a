package planner

import (
	"math"

	"github.com/chelma/cloud-demo/internal/model"
)

const (
	// StorageKnockdown converts raw captured volume into OpenSearch storage. It folds in
	// the packet-to-metadata ratio, indexing overhead (10%), Linux reserved space (5%) and
	// OpenSearch Service overhead (20%). It is an empirical calibration.
	StorageKnockdown = 0.03

	// StoragePerShardGiB follows the write-heavy shard sizing guidance (30-50 GiB).
	StoragePerShardGiB = 50.0

	secondsPerDay = 24 * 60 * 60
)

// StoragePerReplica predicts the OpenSearch storage for one copy of the SPI data, in GiB.
func StoragePerReplica(trafficGbps float64, spiDays int) float64 {
	if math.IsNaN(trafficGbps) || trafficGbps < 0 {
		trafficGbps = 0
	}
	return float64(spiDays*secondsPerDay) * trafficGbps / 8 * StorageKnockdown
}

// TotalStorage predicts the OpenSearch storage for the primary plus all replicas, in GiB.
func TotalStorage(trafficGbps float64, spiDays, replicas int) float64 {
	return StoragePerReplica(trafficGbps, spiDays) * float64(1+replicas)
}

// ShardCount is the number of primary shards needed for the per-replica storage.
func ShardCount(storagePerReplicaGiB float64) int {
	return int(math.Ceil(storagePerReplicaGiB / StoragePerShardGiB))
}

// PlanDataNodes picks the smallest tier whose default node quota holds the total storage.
// Beyond the largest tier's quota the largest tier keeps growing; the operator raises
// the quota out of band. There are always at least two data nodes, and the count is even
// when the domain spans two AZs.
func PlanDataNodes(totalStorageGiB float64, numAZs int) model.DataNodesPlan {
	tier, ok := FirstMatch(dataNodeTiers, func(t DataNodeTier) bool {
		return totalStorageGiB <= float64(t.NodeLimit*t.VolumeSize)
	})
	if !ok {
		tier = dataNodeTiers[len(dataNodeTiers)-1]
	}

	count := int(math.Ceil(totalStorageGiB / float64(tier.VolumeSize)))
	if count < 2 {
		count = 2
	}
	if numAZs == 2 && count%2 != 0 {
		count++
	}

	return model.DataNodesPlan{
		Count:        count,
		InstanceType: tier.InstanceType,
		VolumeSize:   tier.VolumeSize,
	}
}

// PlanMasterNodes picks the smallest master of the data nodes' family that handles
// both the shard count and the data node count.
func PlanMasterNodes(storagePerReplicaGiB float64, dataNodes model.DataNodesPlan) (model.MasterNodesPlan, error) {
	tier, ok := dataNodeTier(dataNodes.InstanceType)
	if !ok {
		return model.MasterNodesPlan{}, &UnknownInstanceTypeError{InstanceType: dataNodes.InstanceType}
	}

	shards := ShardCount(storagePerReplicaGiB)
	chosen, ok := selectMaster(masterInstances, tier.IsArm, shards, dataNodes.Count)
	if !ok {
		return model.MasterNodesPlan{}, &UnsatisfiableCapacityError{
			Shards:        shards,
			DataNodeCount: dataNodes.Count,
			DataNodeType:  dataNodes.InstanceType,
			Arm:           tier.IsArm,
		}
	}

	return model.MasterNodesPlan{
		Count:        MasterNodeCount,
		InstanceType: chosen.InstanceType,
	}, nil
}

func selectMaster(candidates []MasterInstance, isArm bool, shards, dataNodeCount int) (MasterInstance, bool) {
	return FirstMatch(candidates, func(m MasterInstance) bool {
		return m.IsArm == isArm && shards <= m.MaxShards && dataNodeCount <= m.MaxNodes
	})
}

// PlanOSDomain sizes the OpenSearch domain for the expected traffic and retention.
func PlanOSDomain(trafficGbps float64, spiDays, replicas, numAZs int) (model.OSDomainPlan, error) {
	perReplica := StoragePerReplica(trafficGbps, spiDays)
	total := TotalStorage(trafficGbps, spiDays, replicas)

	dataNodes := PlanDataNodes(total, numAZs)
	masterNodes, err := PlanMasterNodes(perReplica, dataNodes)
	if err != nil {
		return model.OSDomainPlan{}, err
	}

	return model.OSDomainPlan{DataNodes: dataNodes, MasterNodes: masterNodes}, nil
}
