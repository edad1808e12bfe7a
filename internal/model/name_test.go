package model

import (
	"strings"
	"testing"
)

func TestValidateClusterName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"lab", true},
		{"MyCluster-01", true},
		{"a", true},
		{"", false},
		{"1cluster", false},
		{"-cluster", false},
		{"my_cluster", false},
		{"my cluster", false},
		{"a/b", false},
		{strings.Repeat("a", 64), true},
		{strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		if err := ValidateClusterName(tt.name); (err == nil) != tt.valid {
			t.Errorf("ValidateClusterName(%q) = %v, want valid=%v", tt.name, err, tt.valid)
		}
	}
}
