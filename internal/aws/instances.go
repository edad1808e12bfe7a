package aws

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/chelma/cloud-demo/internal/model"
)

// ecsCPUUnitsPerVCPU is how ECS counts CPU reservations.
const ecsCPUUnitsPerVCPU = 1024

// ecsAgentReservedMiB is held back from the ECS task for the agent and the OS.
const ecsAgentReservedMiB = 256

// InstanceInfo is the subset of an EC2 instance type description that matters for capture.
type InstanceInfo struct {
	InstanceType       string   `json:"instanceType"`
	VCPUs              int32    `json:"vcpus"`
	MemoryMiB          int64    `json:"memoryMiB"`
	NetworkPerformance string   `json:"networkPerformance"`
	Architectures      []string `json:"architectures"`
	CurrentGeneration  bool     `json:"currentGeneration"`
}

// DescribeInstances looks up the given instance types in the provider's region. Types
// the region does not offer are absent from the result.
func (p *Provider) DescribeInstances(ctx context.Context, instanceTypes []string) (map[string]InstanceInfo, error) {
	sorted := append([]string(nil), instanceTypes...)
	sort.Strings(sorted)
	key := fmt.Sprintf("ec2-%s-%s", p.region, strings.Join(sorted, "+"))

	return cached(p.cache, key, instanceCacheTTL, func() (map[string]InstanceInfo, error) {
		return p.describeInstances(ctx, sorted)
	})
}

func (p *Provider) describeInstances(ctx context.Context, instanceTypes []string) (map[string]InstanceInfo, error) {
	wanted := make([]ec2types.InstanceType, 0, len(instanceTypes))
	for _, t := range instanceTypes {
		wanted = append(wanted, ec2types.InstanceType(t))
	}

	result := make(map[string]InstanceInfo, len(instanceTypes))
	var nextToken *string

	for {
		output, err := p.ec2Client.DescribeInstanceTypes(ctx, &ec2.DescribeInstanceTypesInput{
			InstanceTypes: wanted,
			NextToken:     nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("describing instance types: %w", err)
		}

		for _, it := range output.InstanceTypes {
			info := convertInstanceType(it)
			result[info.InstanceType] = info
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	if len(result) == 0 {
		return nil, ErrNoInstanceTypes
	}
	return result, nil
}

// convertInstanceType maps an EC2 InstanceTypeInfo to our InstanceInfo.
func convertInstanceType(it ec2types.InstanceTypeInfo) InstanceInfo {
	info := InstanceInfo{InstanceType: string(it.InstanceType)}

	if it.VCpuInfo != nil {
		info.VCPUs = aws.ToInt32(it.VCpuInfo.DefaultVCpus)
	}
	if it.MemoryInfo != nil {
		info.MemoryMiB = aws.ToInt64(it.MemoryInfo.SizeInMiB)
	}
	if it.NetworkInfo != nil {
		info.NetworkPerformance = aws.ToString(it.NetworkInfo.NetworkPerformance)
	}
	if it.ProcessorInfo != nil {
		for _, arch := range it.ProcessorInfo.SupportedArchitectures {
			info.Architectures = append(info.Architectures, string(arch))
		}
	}
	info.CurrentGeneration = aws.ToBool(it.CurrentGeneration)

	return info
}

// Severity of a Finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem CheckCaptureFit found with a plan.
type Finding struct {
	Severity     Severity `json:"severity"`
	InstanceType string   `json:"instanceType"`
	Message      string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.InstanceType, f.Message)
}

// CheckCaptureFit verifies that the plan's capture ECS task fits on its instance type.
// info is the output of DescribeInstances for the plan's capture type.
func CheckCaptureFit(plan model.ClusterPlan, info map[string]InstanceInfo) []Finding {
	instanceType := plan.CaptureNodes.InstanceType
	it, ok := info[instanceType]
	if !ok {
		return []Finding{{
			Severity:     SeverityError,
			InstanceType: instanceType,
			Message:      "instance type is not offered in this region",
		}}
	}

	var findings []Finding
	add := func(s Severity, format string, args ...any) {
		findings = append(findings, Finding{Severity: s, InstanceType: instanceType, Message: fmt.Sprintf(format, args...)})
	}

	cpuUnits := int(it.VCPUs) * ecsCPUUnitsPerVCPU
	if plan.EcsResources.CPU > cpuUnits {
		add(SeverityError, "ECS task reserves %d CPU units but the instance has %d", plan.EcsResources.CPU, cpuUnits)
	}

	if int64(plan.EcsResources.Memory) > it.MemoryMiB {
		add(SeverityError, "ECS task reserves %d MiB but the instance has %d MiB", plan.EcsResources.Memory, it.MemoryMiB)
	} else if int64(plan.EcsResources.Memory) > it.MemoryMiB-ecsAgentReservedMiB {
		add(SeverityWarning, "ECS task leaves less than %d MiB for the agent and OS", ecsAgentReservedMiB)
	}

	x86 := false
	for _, a := range it.Architectures {
		if a == string(ec2types.ArchitectureTypeX8664) {
			x86 = true
		}
	}
	if !x86 {
		add(SeverityWarning, "capture image is built for x86_64, instance supports %v", it.Architectures)
	}

	if !it.CurrentGeneration {
		add(SeverityWarning, "instance type is previous generation")
	}

	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
