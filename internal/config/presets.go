package config

import "sort"

// Presets pin the trajectory range of each split so that splits generated
// from the same base seed never share a trajectory index.
var Presets = map[string]*Config{
	"train": {Split: "train", TrajStart: 0, TrajCount: 1000},
	"val":   {Split: "val", TrajStart: 1_000_000, TrajCount: 100},
	"test":  {Split: "test", TrajStart: 2_000_000, TrajCount: 100},
	"ood": {
		Split: "ood", TrajStart: 3_000_000, TrajCount: 100,
		AlphaMin: 0.5, AlphaMax: 1.0, MuSet: "40,80",
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Split = p.Split
	cfg.TrajStart = p.TrajStart
	cfg.TrajCount = p.TrajCount
	if p.AlphaMax > 0 {
		cfg.AlphaMin, cfg.AlphaMax = p.AlphaMin, p.AlphaMax
	}
	if p.MuSet != "" {
		cfg.MuSet = p.MuSet
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
