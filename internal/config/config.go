package config

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSplit     = "train"
	DefaultN         = 64
	DefaultTrajCount = 100
	DefaultTSteps    = 8
	DefaultAlphaMin  = 0.05
	DefaultAlphaMax  = 0.5
	DefaultMuSet     = "2,5,10,20"
	DefaultSRef      = 0.4
	DefaultSeed      = 123
	DefaultWorkers   = 1
)

// Config is the full generation schema. Field names follow the CLI flags.
type Config struct {
	Out       string  `yaml:"out" json:"out"`
	Split     string  `yaml:"split" json:"split"`
	N         int     `yaml:"n" json:"n"`
	TrajStart int     `yaml:"traj_start" json:"traj_start"`
	TrajCount int     `yaml:"traj_count" json:"traj_count"`
	TSteps    int     `yaml:"t_steps" json:"t_steps"`
	AlphaMin  float32 `yaml:"alpha_min" json:"alpha_min"`
	AlphaMax  float32 `yaml:"alpha_max" json:"alpha_max"`
	MuSet     string  `yaml:"mu_set" json:"mu_set"`
	SRef      float32 `yaml:"s_ref" json:"s_ref"`
	Seed      uint64  `yaml:"seed" json:"seed"`
	Workers   int     `yaml:"workers" json:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Split:     DefaultSplit,
		N:         DefaultN,
		TrajCount: DefaultTrajCount,
		TSteps:    DefaultTSteps,
		AlphaMin:  DefaultAlphaMin,
		AlphaMax:  DefaultAlphaMax,
		MuSet:     DefaultMuSet,
		SRef:      DefaultSRef,
		Seed:      DefaultSeed,
		Workers:   DefaultWorkers,
	}
}

// Load overlays a yaml file on the defaults.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads the yaml file at path on top of a copy of base; keys absent
// from the file keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every option that would otherwise fail after output has
// been created. It returns the first failure.
func (c *Config) Validate() error {
	if c.N < 3 {
		return &ValidationError{Field: "n", Wrapped: fmt.Errorf("%w, got %d", ErrGridSize, c.N)}
	}
	if c.TrajStart < 0 || c.TrajCount < 0 || c.TSteps < 0 {
		return &ValidationError{Field: "traj_start/traj_count/t_steps", Wrapped: fmt.Errorf("must be non-negative")}
	}
	if !(c.AlphaMax > c.AlphaMin) {
		return &ValidationError{Field: "alpha_max", Wrapped: fmt.Errorf("%w, got [%g, %g)", ErrAlphaRange, c.AlphaMin, c.AlphaMax)}
	}
	if _, err := ParseMuSet(c.MuSet); err != nil {
		return &ValidationError{Field: "mu_set", Wrapped: err}
	}
	if c.Workers < 1 {
		return &ValidationError{Field: "workers", Wrapped: fmt.Errorf("must be >= 1, got %d", c.Workers)}
	}
	return nil
}

// MuValues returns the parsed mu set.
func (c *Config) MuValues() ([]float32, error) {
	return ParseMuSet(c.MuSet)
}

// ParseMuSet parses a comma-separated list of non-negative numbers into an
// ascending set without duplicates. Empty items are skipped.
func ParseMuSet(s string) ([]float32, error) {
	var out []float32
	for _, part := range strings.Split(s, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, fmt.Errorf("config: mu_set item %q: %w", p, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("config: mu_set item %q is not finite", p)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: %q", ErrNegativeMu, p)
		}
		out = append(out, float32(v))
	}
	if len(out) == 0 {
		return nil, ErrEmptyMuSet
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
