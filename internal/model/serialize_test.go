package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.yaml.in/yaml/v3"
)

func samplePlan() ClusterPlan {
	return ClusterPlan{
		CaptureNodes: CaptureNodesPlan{InstanceType: "m5.xlarge", DesiredCount: 5, MaxCount: 7, MinCount: 1},
		CaptureVpc:   CaptureVpcPlan{NumAzs: 2},
		EcsResources: EcsSysResourcePlan{CPU: 3584, Memory: 15360},
		OSDomain: OSDomainPlan{
			DataNodes:   DataNodesPlan{Count: 4, InstanceType: "r6g.large.search", VolumeSize: 1024},
			MasterNodes: MasterNodesPlan{Count: 3, InstanceType: "m6g.large.search"},
		},
		S3:          S3Plan{PcapStorageClass: "STANDARD", PcapStorageDays: 30},
		ViewerNodes: ViewerNodesPlan{MaxCount: 4, MinCount: 2},
	}
}

func TestClusterPlan_ToMap(t *testing.T) {
	m := samplePlan().ToMap()

	for _, k := range []string{"captureNodes", "captureVpc", "ecsResources", "osDomain", "s3", "viewerNodes"} {
		if _, ok := m[k]; !ok {
			t.Errorf("ToMap() missing key %q", k)
		}
	}

	osDomain := m["osDomain"].(map[string]any)
	dataNodes := osDomain["dataNodes"].(map[string]any)
	if dataNodes["instanceType"] != "r6g.large.search" || dataNodes["count"] != 4 {
		t.Errorf("osDomain.dataNodes = %v", dataNodes)
	}
	if got := m["ecsResources"].(map[string]any)["cpu"]; got != 3584 {
		t.Errorf("ecsResources.cpu = %v, want 3584", got)
	}
}

func TestClusterPlan_MapRoundTrip(t *testing.T) {
	want := samplePlan()
	got, err := ClusterPlanFromMap(want.ToMap())
	if err != nil {
		t.Fatalf("ClusterPlanFromMap: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got != want {
		t.Error("round-tripped plan is not equal")
	}
}

func TestClusterPlanFromMap_DefaultsViewerNodes(t *testing.T) {
	plan := samplePlan()
	plan.ViewerNodes = ViewerNodesPlan{MaxCount: 2, MinCount: 1}

	for _, tc := range []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"absent", func(m map[string]any) { delete(m, "viewerNodes") }},
		{"null", func(m map[string]any) { m["viewerNodes"] = nil }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := plan.ToMap()
			tc.mutate(m)
			got, err := ClusterPlanFromMap(m)
			if err != nil {
				t.Fatalf("ClusterPlanFromMap: %v", err)
			}
			if got.ViewerNodes != DefaultViewerNodesPlan() {
				t.Errorf("ViewerNodes = %+v, want default %+v", got.ViewerNodes, DefaultViewerNodesPlan())
			}
		})
	}
}

func TestClusterPlanFromMap_MissingKey(t *testing.T) {
	for _, key := range requiredClusterKeys {
		t.Run(key, func(t *testing.T) {
			m := samplePlan().ToMap()
			delete(m, key)
			_, err := ClusterPlanFromMap(m)
			if err == nil {
				t.Fatalf("expected error when %q is missing", key)
			}
			if !strings.Contains(err.Error(), key) {
				t.Errorf("error %q should name %q", err, key)
			}
		})
	}
}

func TestClusterPlanFromMap_MissingField(t *testing.T) {
	m := samplePlan().ToMap()
	delete(m["captureNodes"].(map[string]any), "desiredCount")

	if _, err := ClusterPlanFromMap(m); err == nil {
		t.Fatal("expected error for missing captureNodes.desiredCount")
	}
}

func TestClusterPlanFromMap_IgnoresUnknownKeys(t *testing.T) {
	m := samplePlan().ToMap()
	m["comment"] = "sized for the lab"
	m["s3"].(map[string]any)["bucketPrefix"] = "pcap"

	got, err := ClusterPlanFromMap(m)
	if err != nil {
		t.Fatalf("ClusterPlanFromMap: %v", err)
	}
	if got != samplePlan() {
		t.Errorf("unknown keys changed the plan: %+v", got)
	}
}

func TestClusterPlan_JSONRoundTrip(t *testing.T) {
	want := samplePlan()
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got ClusterPlan
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON round trip mismatch (-want +got):\n%s", diff)
	}

	// The JSON form decodes through the map path as well, with float64 numbers.
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("Unmarshal generic: %v", err)
	}
	fromMap, err := ClusterPlanFromMap(generic)
	if err != nil {
		t.Fatalf("ClusterPlanFromMap: %v", err)
	}
	if fromMap != want {
		t.Errorf("map decode of JSON = %+v, want %+v", fromMap, want)
	}
}

func TestClusterPlan_UnmarshalJSONWithoutViewerNodes(t *testing.T) {
	doc := `{
		"captureNodes": {"instanceType": "t3.medium", "desiredCount": 1, "maxCount": 2, "minCount": 1},
		"captureVpc": {"numAzs": 2},
		"ecsResources": {"cpu": 1536, "memory": 3072},
		"osDomain": {
			"dataNodes": {"count": 2, "instanceType": "t3.small.search", "volumeSize": 100},
			"masterNodes": {"count": 3, "instanceType": "t3.small.search"}
		},
		"s3": {"pcapStorageClass": "STANDARD", "pcapStorageDays": 30}
	}`

	var p ClusterPlan
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.ViewerNodes != DefaultViewerNodesPlan() {
		t.Errorf("ViewerNodes = %+v, want default", p.ViewerNodes)
	}
	if p.CaptureNodes.InstanceType != "t3.medium" {
		t.Errorf("CaptureNodes.InstanceType = %q", p.CaptureNodes.InstanceType)
	}
}

func TestClusterPlan_YAMLRoundTrip(t *testing.T) {
	want := samplePlan()
	data, err := yaml.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), "pcapStorageClass: STANDARD") {
		t.Errorf("YAML should use camelCase keys:\n%s", data)
	}

	var got ClusterPlan
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != want {
		t.Errorf("YAML round trip = %+v, want %+v", got, want)
	}
}

func TestSubPlanFromMap(t *testing.T) {
	viewer, err := ViewerNodesPlanFromMap(map[string]any{"maxCount": 6, "minCount": 3})
	if err != nil {
		t.Fatalf("ViewerNodesPlanFromMap: %v", err)
	}
	if viewer != (ViewerNodesPlan{MaxCount: 6, MinCount: 3}) {
		t.Errorf("viewer = %+v", viewer)
	}

	if _, err := ViewerNodesPlanFromMap(map[string]any{"maxCount": 6}); err == nil {
		t.Error("expected error for missing minCount")
	}

	domain := samplePlan().OSDomain
	got, err := OSDomainPlanFromMap(domain.ToMap())
	if err != nil {
		t.Fatalf("OSDomainPlanFromMap: %v", err)
	}
	if got != domain {
		t.Errorf("osDomain = %+v, want %+v", got, domain)
	}
}
