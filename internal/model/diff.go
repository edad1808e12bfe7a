package model

import (
	"fmt"
	"reflect"
	"sort"
)

// Change is a single field that differs between two plans.
type Change struct {
	Path string `json:"path" yaml:"path"` // dotted key path, e.g. "osDomain.dataNodes.count"
	Old  any    `json:"old" yaml:"old"`
	New  any    `json:"new" yaml:"new"`
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %v -> %v", c.Path, c.Old, c.New)
}

// Diff returns the fields that changed going from prev to p, sorted by path.
// An empty result means nothing has to be redeployed.
func (p ClusterPlan) Diff(prev ClusterPlan) []Change {
	before := make(map[string]any)
	after := make(map[string]any)
	flatten("", prev.ToMap(), before)
	flatten("", p.ToMap(), after)

	var changes []Change
	for path, newVal := range after {
		oldVal := before[path]
		if !reflect.DeepEqual(oldVal, newVal) {
			changes = append(changes, Change{Path: path, Old: oldVal, New: newVal})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	return changes
}

func flatten(prefix string, m map[string]any, out map[string]any) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(path, nested, out)
			continue
		}
		out[path] = v
	}
}
