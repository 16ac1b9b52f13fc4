package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
)

// RunInfo is one run directory found under a catalog root.
type RunInfo struct {
	Dir string
	// Manifest is nil for runs that never completed.
	Manifest *Manifest
}

func (ri RunInfo) Complete() bool { return ri.Manifest != nil }

// List scans the immediate subdirectories of root for runs, identified by a
// metadata stream. A missing root is an empty catalog. Completed runs sort
// by creation time, incomplete ones last by name.
func List(root string) ([]RunInfo, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []RunInfo{}, nil
		}
		return nil, err
	}

	runs := make([]RunInfo, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, MetaFile)); err != nil {
			continue
		}
		ri := RunInfo{Dir: dir}
		if m, err := ReadManifest(dir); err == nil {
			ri.Manifest = m
		}
		runs = append(runs, ri)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		a, b := runs[i], runs[j]
		if a.Complete() != b.Complete() {
			return a.Complete()
		}
		if a.Complete() && !a.Manifest.CreatedAt.Equal(b.Manifest.CreatedAt) {
			return a.Manifest.CreatedAt.Before(b.Manifest.CreatedAt)
		}
		return a.Dir < b.Dir
	})
	return runs, nil
}
