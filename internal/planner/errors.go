package planner

import (
	"errors"
	"fmt"
)

// TooMuchTrafficError is returned when the expected traffic exceeds what one cluster
// can capture. The operator must split the traffic across clusters.
type TooMuchTrafficError struct {
	Traffic float64 // Gbps requested
	Limit   float64 // Gbps ceiling
}

func (e *TooMuchTrafficError) Error() string {
	return fmt.Sprintf("expected traffic (%g Gbps) exceeds the limit of a single cluster (%g Gbps)", e.Traffic, e.Limit)
}

// UnknownInstanceTypeError is returned when an instance type has no entry in the
// capture table, usually because a persisted plan references a retired type.
type UnknownInstanceTypeError struct {
	InstanceType string
}

func (e *UnknownInstanceTypeError) Error() string {
	return fmt.Sprintf("unknown instance type: %s", e.InstanceType)
}

// UnsatisfiableCapacityError is returned when no master candidate handles the shard
// and data node counts. Raising the OpenSearch quotas out of band is the way forward.
type UnsatisfiableCapacityError struct {
	Shards        int
	DataNodeCount int
	DataNodeType  string
	Arm           bool
}

func (e *UnsatisfiableCapacityError) Error() string {
	family := "non-ARM"
	if e.Arm {
		family = "ARM"
	}
	return fmt.Sprintf("no %s master instance supports %d shards across %d %s data nodes",
		family, e.Shards, e.DataNodeCount, e.DataNodeType)
}

// IsPermanent reports whether err is a planning failure. Planning is deterministic, so
// these never succeed on retry.
func IsPermanent(err error) bool {
	var tooMuch *TooMuchTrafficError
	var unknown *UnknownInstanceTypeError
	var unsat *UnsatisfiableCapacityError
	return errors.As(err, &tooMuch) || errors.As(err, &unknown) || errors.As(err, &unsat)
}
