package planner

import (
	"math"

	"github.com/chelma/cloud-demo/internal/model"
)

// clampTraffic treats unset, non-positive and sub-floor traffic as the floor.
func clampTraffic(trafficGbps float64) float64 {
	if math.IsNaN(trafficGbps) || trafficGbps < MinTraffic {
		return MinTraffic
	}
	return trafficGbps
}

// PlanCaptureNodes sizes the capture nodes for the expected traffic in Gbps.
func PlanCaptureNodes(trafficGbps float64) (model.CaptureNodesPlan, error) {
	traffic := clampTraffic(trafficGbps)
	if traffic > MaxTraffic {
		return model.CaptureNodesPlan{}, &TooMuchTrafficError{Traffic: traffic, Limit: MaxTraffic}
	}

	chosen, ok := FirstMatch(captureInstances, func(c CaptureInstance) bool {
		return traffic <= c.MaxTraffic
	})
	if !ok {
		last := captureInstances[len(captureInstances)-1]
		return model.CaptureNodesPlan{}, &TooMuchTrafficError{Traffic: traffic, Limit: last.MaxTraffic}
	}

	desired := int(math.Ceil(traffic / chosen.TrafficPer))

	return model.CaptureNodesPlan{
		InstanceType: chosen.InstanceType,
		DesiredCount: desired,
		MaxCount:     int(math.Ceil(float64(desired) * CapacityBufferFactor)),
		MinCount:     MinimumCaptureNodes,
	}, nil
}

// PlanEcsResources returns the ECS task reservation for a capture instance type.
func PlanEcsResources(instanceType string) (model.EcsSysResourcePlan, error) {
	chosen, ok := FirstMatch(captureInstances, func(c CaptureInstance) bool {
		return c.InstanceType == instanceType
	})
	if !ok {
		return model.EcsSysResourcePlan{}, &UnknownInstanceTypeError{InstanceType: instanceType}
	}
	return model.EcsSysResourcePlan{CPU: chosen.EcsCPU, Memory: chosen.EcsMemory}, nil
}

// PlanViewerNodes sizes the viewer service. Viewer load follows human query volume
// rather than traffic, so this is a two-step default: idle clusters get the small one.
func PlanViewerNodes(trafficGbps float64) model.ViewerNodesPlan {
	if math.IsNaN(trafficGbps) || trafficGbps <= MinTraffic {
		return model.ViewerNodesPlan{MaxCount: 2, MinCount: 1}
	}
	return model.ViewerNodesPlan{MaxCount: 4, MinCount: 2}
}
