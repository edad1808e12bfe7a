package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/chelma/cloud-demo/internal/model"
)

// FileStore keeps one JSON document per cluster in a local directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created on first Put.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Get loads the stored plan for cluster.
func (s *FileStore) Get(ctx context.Context, cluster string) (*model.ClusterPlan, error) {
	if err := model.ValidateClusterName(cluster); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(cluster))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading plan file: %w", err)
	}

	var plan model.ClusterPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing plan file: %w", err)
	}
	return &plan, nil
}

// Put writes the plan for cluster, replacing any previous one atomically.
func (s *FileStore) Put(ctx context.Context, cluster string, plan model.ClusterPlan) error {
	if err := model.ValidateClusterName(cluster); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, cluster+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating plan file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing plan file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing plan file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(cluster)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing plan file: %w", err)
	}
	return nil
}

// Clusters lists the clusters that have a stored plan.
func (s *FileStore) Clusters() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name()[:len(e.Name())-len(".json")])
	}
	return names, nil
}

func (s *FileStore) path(cluster string) string {
	return filepath.Join(s.dir, cluster+".json")
}
