// Package store persists the last applied ClusterPlan of each capture cluster so a new
// plan can be diffed against it.
package store

import (
	"context"
	"errors"

	"github.com/chelma/cloud-demo/internal/model"
)

// ErrNotFound is returned when no plan has been stored for a cluster.
var ErrNotFound = errors.New("no stored plan for cluster")

// PlanStore loads and saves cluster plans by cluster name.
type PlanStore interface {
	Get(ctx context.Context, cluster string) (*model.ClusterPlan, error)
	Put(ctx context.Context, cluster string, plan model.ClusterPlan) error
}

// Lister is implemented by stores that can enumerate the clusters they hold.
type Lister interface {
	Clusters() ([]string, error)
}
