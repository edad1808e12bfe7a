// Package cdk renders cluster plans into the context variables the CDK app reads.
package cdk

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kballard/go-shellquote"

	"github.com/chelma/cloud-demo/internal/model"
)

// Context variable names and commands understood by the CDK app.
const (
	ContextCmdVar    = "ARKIME_CMD"
	ContextParamsVar = "ARKIME_PARAMS"

	CmdCreateCluster  = "create-cluster"
	CmdDestroyCluster = "destroy-cluster"
)

// UserConfig records the operator inputs a plan was computed from.
type UserConfig struct {
	SpiDays         int     `json:"spiDays"`
	HistoryDays     int     `json:"historyDays"`
	Replicas        int     `json:"replicas"`
	ExpectedTraffic float64 `json:"expectedTraffic"`
	PcapDays        int     `json:"pcapDays"`
}

// Params is the JSON document passed in ARKIME_PARAMS.
type Params struct {
	NameCluster               string             `json:"nameCluster"`
	NameCaptureBucketStack    string             `json:"nameCaptureBucketStack"`
	NameCaptureBucketSsmParam string             `json:"nameCaptureBucketSsmParam"`
	NameCaptureNodesStack     string             `json:"nameCaptureNodesStack"`
	NameCaptureVpcStack       string             `json:"nameCaptureVpcStack"`
	NameOSDomainStack         string             `json:"nameOSDomainStack"`
	NameOSDomainSsmParam      string             `json:"nameOSDomainSsmParam"`
	NameViewerNodesStack      string             `json:"nameViewerNodesStack"`
	PlanCluster               *model.ClusterPlan `json:"planCluster,omitempty"`
	UserConfig                *UserConfig        `json:"userConfig,omitempty"`
}

// CreateClusterContext returns the context for deploying cluster with plan.
func CreateClusterContext(cluster string, plan model.ClusterPlan, user UserConfig) (map[string]string, error) {
	params := baseParams(cluster)
	params.PlanCluster = &plan
	params.UserConfig = &user
	return render(CmdCreateCluster, params)
}

// DestroyClusterContext returns the context for tearing cluster down.
func DestroyClusterContext(cluster string) (map[string]string, error) {
	return render(CmdDestroyCluster, baseParams(cluster))
}

func baseParams(cluster string) Params {
	return Params{
		NameCluster:               cluster,
		NameCaptureBucketStack:    CaptureBucketStackName(cluster),
		NameCaptureBucketSsmParam: CaptureBucketSsmParamName(cluster),
		NameCaptureNodesStack:     CaptureNodesStackName(cluster),
		NameCaptureVpcStack:       CaptureVpcStackName(cluster),
		NameOSDomainStack:         OSDomainStackName(cluster),
		NameOSDomainSsmParam:      OSDomainSsmParamName(cluster),
		NameViewerNodesStack:      ViewerNodesStackName(cluster),
	}
}

func render(cmd string, params Params) (map[string]string, error) {
	if err := model.ValidateClusterName(params.NameCluster); err != nil {
		return nil, err
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshaling cdk params: %w", err)
	}
	return map[string]string{
		ContextCmdVar:    cmd,
		ContextParamsVar: shellquote.Join(string(data)),
	}, nil
}

// Args flattens a context into cdk command-line arguments, sorted by key.
func Args(ctx map[string]string) []string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, "--context", fmt.Sprintf("%s=%s", k, ctx[k]))
	}
	return args
}

// DecodeParams reverses the quoting of an ARKIME_PARAMS value.
func DecodeParams(quoted string) (Params, error) {
	words, err := shellquote.Split(quoted)
	if err != nil {
		return Params{}, fmt.Errorf("unquoting cdk params: %w", err)
	}
	if len(words) != 1 {
		return Params{}, fmt.Errorf("cdk params: expected one word, got %d", len(words))
	}
	var p Params
	if err := json.Unmarshal([]byte(words[0]), &p); err != nil {
		return Params{}, fmt.Errorf("parsing cdk params: %w", err)
	}
	return p, nil
}
