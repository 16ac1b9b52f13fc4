package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "train", cfg.Split)
	assert.Equal(t, 64, cfg.N)
	assert.Equal(t, uint64(123), cfg.Seed)
	require.NoError(t, cfg.Validate())
}

func TestParseMuSet(t *testing.T) {
	tests := []struct {
		in      string
		want    []float32
		wantErr error
	}{
		{in: "10,2,2,5", want: []float32{2, 5, 10}},
		{in: " 20 , 5,, 2 ", want: []float32{2, 5, 20}},
		{in: "0", want: []float32{0}},
		{in: "2.5,2.5", want: []float32{2.5}},
		{in: "-1", wantErr: ErrNegativeMu},
		{in: "3,-0.5", wantErr: ErrNegativeMu},
		{in: "", wantErr: ErrEmptyMuSet},
		{in: " , ,", wantErr: ErrEmptyMuSet},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMuSet(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMuSet_Malformed(t *testing.T) {
	for _, in := range []string{"abc", "1,two", "NaN", "inf"} {
		_, err := ParseMuSet(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"grid too small", func(c *Config) { c.N = 2 }, ErrGridSize},
		{"alpha equal", func(c *Config) { c.AlphaMin, c.AlphaMax = 0.3, 0.3 }, ErrAlphaRange},
		{"alpha inverted", func(c *Config) { c.AlphaMin, c.AlphaMax = 0.5, 0.1 }, ErrAlphaRange},
		{"empty mu", func(c *Config) { c.MuSet = "" }, ErrEmptyMuSet},
		{"negative mu", func(c *Config) { c.MuSet = "1,-2" }, ErrNegativeMu},
		{"negative count", func(c *Config) { c.TrajCount = -1 }, ErrInvalidConfig},
		{"no workers", func(c *Config) { c.Workers = 0 }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen.yaml")

	cfg := DefaultConfig()
	cfg.Out = "data/val"
	cfg.N = 32
	cfg.MuSet = "1,3"
	cfg.Seed = 1 << 63
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("n: 16\nsplit: val\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.N)
	assert.Equal(t, "val", cfg.Split)
	assert.Equal(t, DefaultMuSet, cfg.MuSet)
	assert.Equal(t, float32(DefaultSRef), cfg.SRef)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("n: [1, 2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("val")
	require.NotNil(t, cfg)
	assert.Equal(t, "val", cfg.Split)
	assert.Equal(t, 1_000_000, cfg.TrajStart)
	assert.Equal(t, DefaultMuSet, cfg.MuSet)
	require.NoError(t, cfg.Validate())

	ood := GetPreset("ood")
	require.NotNil(t, ood)
	assert.Equal(t, float32(0.5), ood.AlphaMin)
	assert.Equal(t, "40,80", ood.MuSet)
	require.NoError(t, ood.Validate())

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestPresets_DisjointRanges(t *testing.T) {
	names := ListPresets()
	require.Equal(t, []string{"ood", "test", "train", "val"}, names)

	for i, a := range names {
		for _, b := range names[i+1:] {
			pa, pb := GetPreset(a), GetPreset(b)
			overlap := pa.TrajStart < pb.TrajStart+pb.TrajCount && pb.TrajStart < pa.TrajStart+pa.TrajCount
			assert.False(t, overlap, "%s and %s overlap", a, b)
		}
	}
}

func TestLoadOver_KeepsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("n: 32\nseed: 9\n"), 0644))

	base := GetPreset("val")
	cfg, err := LoadOver(path, base)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.N)
	assert.Equal(t, uint64(9), cfg.Seed)
	assert.Equal(t, "val", cfg.Split)
	assert.Equal(t, 1_000_000, cfg.TrajStart)
	assert.Equal(t, DefaultN, base.N)
}
