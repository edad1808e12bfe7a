package model

import (
	"fmt"
	"regexp"
)

// Cluster names become part of CloudFormation stack names, SSM parameter paths and S3
// keys, so they are limited to what all three accept.
var clusterNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]{0,63}$`)

// ValidateClusterName reports whether name can identify a capture cluster.
func ValidateClusterName(name string) error {
	if !clusterNamePattern.MatchString(name) {
		return fmt.Errorf("invalid cluster name %q: must start with a letter and contain only letters, digits and hyphens (max 64)", name)
	}
	return nil
}
