package model

import (
	"errors"
	"fmt"
)

// CaptureNodesPlan sizes the autoscaling group of capture instances.
type CaptureNodesPlan struct {
	InstanceType string `json:"instanceType" yaml:"instanceType"`
	DesiredCount int    `json:"desiredCount" yaml:"desiredCount"`
	MaxCount     int    `json:"maxCount" yaml:"maxCount"`
	MinCount     int    `json:"minCount" yaml:"minCount"`
}

// CaptureVpcPlan describes the capture VPC layout.
type CaptureVpcPlan struct {
	NumAzs int `json:"numAzs" yaml:"numAzs"`
}

// EcsSysResourcePlan is the CPU/memory reservation of the capture ECS task.
type EcsSysResourcePlan struct {
	CPU    int `json:"cpu" yaml:"cpu"`       // 1024 units per vCPU
	Memory int `json:"memory" yaml:"memory"` // MB
}

// DataNodesPlan sizes the OpenSearch data nodes.
type DataNodesPlan struct {
	Count        int    `json:"count" yaml:"count"`
	InstanceType string `json:"instanceType" yaml:"instanceType"`
	VolumeSize   int    `json:"volumeSize" yaml:"volumeSize"` // GiB per node
}

// MasterNodesPlan sizes the dedicated OpenSearch master nodes.
type MasterNodesPlan struct {
	Count        int    `json:"count" yaml:"count"`
	InstanceType string `json:"instanceType" yaml:"instanceType"`
}

// OSDomainPlan is the OpenSearch domain layout. Master nodes are derived from data nodes.
type OSDomainPlan struct {
	DataNodes   DataNodesPlan   `json:"dataNodes" yaml:"dataNodes"`
	MasterNodes MasterNodesPlan `json:"masterNodes" yaml:"masterNodes"`
}

// S3Plan governs lifecycle of the raw PCAP objects.
type S3Plan struct {
	PcapStorageClass string `json:"pcapStorageClass" yaml:"pcapStorageClass"`
	PcapStorageDays  int    `json:"pcapStorageDays" yaml:"pcapStorageDays"`
}

// ViewerNodesPlan sizes the viewer service.
type ViewerNodesPlan struct {
	MaxCount int `json:"maxCount" yaml:"maxCount"`
	MinCount int `json:"minCount" yaml:"minCount"`
}

// DefaultViewerNodesPlan is substituted for plans persisted before viewer sizing existed.
func DefaultViewerNodesPlan() ViewerNodesPlan {
	return ViewerNodesPlan{MaxCount: 4, MinCount: 2}
}

// ClusterPlan is the complete sizing of one capture cluster.
type ClusterPlan struct {
	CaptureNodes CaptureNodesPlan   `json:"captureNodes" yaml:"captureNodes"`
	CaptureVpc   CaptureVpcPlan     `json:"captureVpc" yaml:"captureVpc"`
	EcsResources EcsSysResourcePlan `json:"ecsResources" yaml:"ecsResources"`
	OSDomain     OSDomainPlan       `json:"osDomain" yaml:"osDomain"`
	S3           S3Plan             `json:"s3" yaml:"s3"`
	ViewerNodes  ViewerNodesPlan    `json:"viewerNodes" yaml:"viewerNodes"`
}

// MasterQuorum is the number of dedicated master nodes every domain runs.
const MasterQuorum = 3

// Validate re-checks the sizing invariants. Plans produced by the planner always pass;
// this exists for plans loaded back from a store.
func (p ClusterPlan) Validate() error {
	var errs []error

	cn := p.CaptureNodes
	if cn.InstanceType == "" {
		errs = append(errs, errors.New("captureNodes.instanceType is empty"))
	}
	if cn.MinCount < 1 {
		errs = append(errs, fmt.Errorf("captureNodes.minCount must be at least 1, got %d", cn.MinCount))
	}
	if cn.MaxCount < cn.DesiredCount {
		errs = append(errs, fmt.Errorf("captureNodes.maxCount (%d) is below desiredCount (%d)", cn.MaxCount, cn.DesiredCount))
	}

	if p.CaptureVpc.NumAzs < 1 {
		errs = append(errs, fmt.Errorf("captureVpc.numAzs must be at least 1, got %d", p.CaptureVpc.NumAzs))
	}

	if p.EcsResources.CPU <= 0 || p.EcsResources.Memory <= 0 {
		errs = append(errs, fmt.Errorf("ecsResources must be positive, got cpu=%d memory=%d", p.EcsResources.CPU, p.EcsResources.Memory))
	}

	dn := p.OSDomain.DataNodes
	if dn.Count < 2 {
		errs = append(errs, fmt.Errorf("osDomain.dataNodes.count must be at least 2, got %d", dn.Count))
	}
	if p.CaptureVpc.NumAzs == 2 && dn.Count%2 != 0 {
		errs = append(errs, fmt.Errorf("osDomain.dataNodes.count must be even across 2 AZs, got %d", dn.Count))
	}
	if p.OSDomain.MasterNodes.Count != MasterQuorum {
		errs = append(errs, fmt.Errorf("osDomain.masterNodes.count must be %d, got %d", MasterQuorum, p.OSDomain.MasterNodes.Count))
	}

	if p.S3.PcapStorageDays < 1 {
		errs = append(errs, fmt.Errorf("s3.pcapStorageDays must be at least 1, got %d", p.S3.PcapStorageDays))
	}

	if p.ViewerNodes.MinCount < 1 || p.ViewerNodes.MaxCount < p.ViewerNodes.MinCount {
		errs = append(errs, fmt.Errorf("viewerNodes bounds invalid: min=%d max=%d", p.ViewerNodes.MinCount, p.ViewerNodes.MaxCount))
	}

	return errors.Join(errs...)
}
