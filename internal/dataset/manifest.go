package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/diffgen/internal/config"
)

// Manifest is written last, after every stream is flushed and closed. A run
// directory without one is incomplete.
type Manifest struct {
	RunID        string         `json:"run_id"`
	CreatedAt    time.Time      `json:"created_at"`
	Config       *config.Config `json:"config"`
	Samples      uint64         `json:"samples"`
	Trajectories int            `json:"trajectories"`
	N            int            `json:"n"`
	RecordBytes  int            `json:"record_bytes"`
	Files        []string       `json:"files"`
}

func NewManifest(cfg *config.Config, samples uint64, trajectories int) *Manifest {
	return &Manifest{
		RunID:        uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Config:       cfg,
		Samples:      samples,
		Trajectories: trajectories,
		N:            cfg.N,
		RecordBytes:  RecordBytes(cfg.N),
		Files:        []string{InputFile, TargetFile, MetaFile},
	}
}

// RecordBytes is the size of one binary record for an n x n grid.
func RecordBytes(n int) int { return 4 * n * n }

func WriteManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("dataset: write manifest: %w", err)
	}
	return nil
}

func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("dataset: parse manifest: %w", err)
	}
	return &m, nil
}
