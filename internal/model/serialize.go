package model

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// ToMap returns the plan as a plain key-value structure.
func (p CaptureNodesPlan) ToMap() map[string]any {
	return map[string]any{
		"instanceType": p.InstanceType,
		"desiredCount": p.DesiredCount,
		"maxCount":     p.MaxCount,
		"minCount":     p.MinCount,
	}
}

// ToMap returns the plan as a plain key-value structure.
func (p CaptureVpcPlan) ToMap() map[string]any {
	return map[string]any{
		"numAzs": p.NumAzs,
	}
}

// ToMap returns the plan as a plain key-value structure.
func (p EcsSysResourcePlan) ToMap() map[string]any {
	return map[string]any{
		"cpu":    p.CPU,
		"memory": p.Memory,
	}
}

// ToMap returns the plan as a plain key-value structure.
func (p DataNodesPlan) ToMap() map[string]any {
	return map[string]any{
		"count":        p.Count,
		"instanceType": p.InstanceType,
		"volumeSize":   p.VolumeSize,
	}
}

// ToMap returns the plan as a plain key-value structure.
func (p MasterNodesPlan) ToMap() map[string]any {
	return map[string]any{
		"count":        p.Count,
		"instanceType": p.InstanceType,
	}
}

// ToMap returns the plan as a plain key-value structure with nested sub-plans.
func (p OSDomainPlan) ToMap() map[string]any {
	return map[string]any{
		"dataNodes":   p.DataNodes.ToMap(),
		"masterNodes": p.MasterNodes.ToMap(),
	}
}

// ToMap returns the plan as a plain key-value structure.
func (p S3Plan) ToMap() map[string]any {
	return map[string]any{
		"pcapStorageClass": p.PcapStorageClass,
		"pcapStorageDays":  p.PcapStorageDays,
	}
}

// ToMap returns the plan as a plain key-value structure.
func (p ViewerNodesPlan) ToMap() map[string]any {
	return map[string]any{
		"maxCount": p.MaxCount,
		"minCount": p.MinCount,
	}
}

// ToMap returns the plan as a plain key-value structure with nested sub-plans.
func (p ClusterPlan) ToMap() map[string]any {
	return map[string]any{
		"captureNodes": p.CaptureNodes.ToMap(),
		"captureVpc":   p.CaptureVpc.ToMap(),
		"ecsResources": p.EcsResources.ToMap(),
		"osDomain":     p.OSDomain.ToMap(),
		"s3":           p.S3.ToMap(),
		"viewerNodes":  p.ViewerNodes.ToMap(),
	}
}

// requiredClusterKeys are the sub-plans a persisted plan must carry. viewerNodes is
// absent from plans written before viewer sizing existed.
var requiredClusterKeys = []string{"captureNodes", "captureVpc", "ecsResources", "osDomain", "s3"}

// ClusterPlanFromMap rebuilds a ClusterPlan from its key-value form. A missing
// viewerNodes entry yields DefaultViewerNodesPlan. Unknown keys are ignored.
func ClusterPlanFromMap(m map[string]any) (ClusterPlan, error) {
	for _, k := range requiredClusterKeys {
		if _, ok := m[k]; !ok {
			return ClusterPlan{}, fmt.Errorf("cluster plan: missing key %q", k)
		}
	}

	var p ClusterPlan
	if err := decodeInto(m["captureNodes"], &p.CaptureNodes); err != nil {
		return ClusterPlan{}, fmt.Errorf("cluster plan: captureNodes: %w", err)
	}
	if err := decodeInto(m["captureVpc"], &p.CaptureVpc); err != nil {
		return ClusterPlan{}, fmt.Errorf("cluster plan: captureVpc: %w", err)
	}
	if err := decodeInto(m["ecsResources"], &p.EcsResources); err != nil {
		return ClusterPlan{}, fmt.Errorf("cluster plan: ecsResources: %w", err)
	}
	osDomain, err := OSDomainPlanFromMap(asMap(m["osDomain"]))
	if err != nil {
		return ClusterPlan{}, fmt.Errorf("cluster plan: %w", err)
	}
	p.OSDomain = osDomain
	if err := decodeInto(m["s3"], &p.S3); err != nil {
		return ClusterPlan{}, fmt.Errorf("cluster plan: s3: %w", err)
	}

	if raw, ok := m["viewerNodes"]; ok && raw != nil {
		viewer, err := ViewerNodesPlanFromMap(asMap(raw))
		if err != nil {
			return ClusterPlan{}, fmt.Errorf("cluster plan: %w", err)
		}
		p.ViewerNodes = viewer
	} else {
		p.ViewerNodes = DefaultViewerNodesPlan()
	}

	return p, nil
}

// OSDomainPlanFromMap rebuilds an OSDomainPlan from its key-value form.
func OSDomainPlanFromMap(m map[string]any) (OSDomainPlan, error) {
	var p OSDomainPlan
	if err := decodeInto(m, &p); err != nil {
		return OSDomainPlan{}, fmt.Errorf("osDomain: %w", err)
	}
	return p, nil
}

// ViewerNodesPlanFromMap rebuilds a ViewerNodesPlan from its key-value form.
func ViewerNodesPlanFromMap(m map[string]any) (ViewerNodesPlan, error) {
	var p ViewerNodesPlan
	if err := decodeInto(m, &p); err != nil {
		return ViewerNodesPlan{}, fmt.Errorf("viewerNodes: %w", err)
	}
	return p, nil
}

// UnmarshalJSON decodes a plan, defaulting viewerNodes when the document predates it.
func (p *ClusterPlan) UnmarshalJSON(data []byte) error {
	type plain ClusterPlan
	out := plain{ViewerNodes: DefaultViewerNodesPlan()}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = ClusterPlan(out)
	return nil
}

// decodeInto maps a key-value structure onto a plan struct using its json tags.
// Every field must be present; extra keys are ignored.
func decodeInto(input any, out any) error {
	if input == nil {
		return fmt.Errorf("no value")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		ErrorUnset: true,
		Result:     out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
