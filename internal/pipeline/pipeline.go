// Package pipeline turns a generation config into paired (input, target)
// samples.
//
// Each trajectory owns a fresh solver and a random stream seeded only from
// the base seed and its absolute index, so trajectories are independent and
// any index range can be regenerated on its own. Samples are emitted in
// trajectory order, then step order, with contiguous global indices starting
// at zero, whether trajectories are computed sequentially or by a worker
// pool.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/san-kum/diffgen/internal/config"
	"github.com/san-kum/diffgen/internal/dataset"
	"github.com/san-kum/diffgen/internal/ic"
	"github.com/san-kum/diffgen/internal/solver"
	"go.uber.org/zap"
)

// SeedMixer is the odd constant multiplied into trajectory indices before
// they are xor-ed into the base seed (2^64 divided by the golden ratio).
const SeedMixer uint64 = 0x9E3779B97F4A7C15

// TrajectorySeed derives the seed of trajectory idx.
func TrajectorySeed(base uint64, idx int) uint64 {
	return base ^ (uint64(idx) * SeedMixer)
}

// NewRand returns the random stream for a trajectory seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, SeedMixer))
}

// Trajectory is one simulation run and the parameters that produced it.
type Trajectory struct {
	Index   int
	Seed    uint64
	Alpha   float32
	Variant ic.Variant
	IC      []float32
}

// Sample is one emitted pair with its provenance.
type Sample struct {
	Record dataset.Record
	Input  []float32
	Target []float32
}

// SampleWriter receives samples in emission order. *dataset.Writer
// satisfies it.
type SampleWriter interface {
	Write(rec dataset.Record, input, target []float32) error
}

// Observer is notified from the emitting goroutine only, so implementations
// need no locking.
type Observer interface {
	OnTrajectory(tr *Trajectory)
	OnSample(s *Sample)
}

type Stats struct {
	Trajectories int
	Samples      uint64
	Substeps     uint64
	Elapsed      time.Duration
}

type Option func(*Generator)

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

func WithObserver(o Observer) Option {
	return func(g *Generator) { g.observers = append(g.observers, o) }
}

type Generator struct {
	cfg       config.Config
	mu        []float32
	logger    *zap.Logger
	observers []Observer
}

// New validates cfg. Configuration errors surface here, before any solver
// is built or any file is touched.
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mu, err := cfg.MuValues()
	if err != nil {
		return nil, err
	}

	g := &Generator{cfg: *cfg, mu: mu, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generator) MuValues() []float32 { return g.mu }

// Run generates every configured trajectory into w. On cancellation it
// stops between samples and returns ctx.Err(); samples already handed to w
// are complete.
func (g *Generator) Run(ctx context.Context, w SampleWriter) (Stats, error) {
	start := time.Now()
	e := &emitter{g: g, w: w}

	var err error
	if g.cfg.Workers > 1 {
		err = g.runParallel(ctx, e)
	} else {
		err = g.runSequential(ctx, e)
	}

	e.stats.Elapsed = time.Since(start)
	if err != nil {
		return e.stats, err
	}
	g.logger.Info("generation complete",
		zap.Int("trajectories", e.stats.Trajectories),
		zap.Uint64("samples", e.stats.Samples),
		zap.Uint64("substeps", e.stats.Substeps),
		zap.Duration("elapsed", e.stats.Elapsed),
	)
	return e.stats, nil
}

func (g *Generator) runSequential(ctx context.Context, e *emitter) error {
	for local := 0; local < g.cfg.TrajCount; local++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := g.Simulate(g.cfg.TrajStart+local, e.startTrajectory, func(s *Sample) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return e.emit(s)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Simulate runs trajectory idx: seed, alpha, initial condition, then
// t_steps reference steps with a freshly drawn mu each. start is called once
// the solver is seeded; emit once per step. Global indices are left for the
// caller to assign.
func (g *Generator) Simulate(idx int, start func(*Trajectory), emit func(*Sample) error) (*Trajectory, error) {
	n := g.cfg.N
	seed := TrajectorySeed(g.cfg.Seed, idx)
	r := NewRand(seed)

	alpha := sampleHalfOpen(r, g.cfg.AlphaMin, g.cfg.AlphaMax)
	variant := ic.SampleVariant(r)
	field := ic.Generate(r, n, variant)

	s, err := solver.New(n)
	if err != nil {
		return nil, fmt.Errorf("pipeline: trajectory %d: %w", idx, err)
	}
	s.SetAlpha(alpha)
	s.SetSRef(g.cfg.SRef)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			s.SetCell(x, y, field[y*n+x])
		}
	}
	s.FinalizeIC()

	tr := &Trajectory{Index: idx, Seed: seed, Alpha: alpha, Variant: variant, IC: field}
	if start != nil {
		start(tr)
	}

	for step := 0; step < g.cfg.TSteps; step++ {
		mu := g.mu[r.IntN(len(g.mu))]
		s.SetMu(mu)

		input := s.CloneField()
		k, tau := s.StepTauRef()
		target := s.CloneField()

		sample := &Sample{
			Record: dataset.Record{
				Split:    g.cfg.Split,
				TrajIdx:  idx,
				StepIdx:  step,
				BaseSeed: g.cfg.Seed,
				TrajSeed: seed,
				N:        n,
				Dx:       s.Dx(),
				Alpha:    s.Alpha(),
				Mu:       s.Mu(),
				Tau:      tau,
				SRef:     s.SRef(),
				KUsedRef: k,
				ICType:   variant.String(),
			},
			Input:  input,
			Target: target,
		}
		if err := emit(sample); err != nil {
			return tr, err
		}
	}
	return tr, nil
}

// sampleHalfOpen draws from [lo, hi), guarding against float32 rounding
// landing on hi.
func sampleHalfOpen(r *rand.Rand, lo, hi float32) float32 {
	v := lo + (hi-lo)*r.Float32()
	if v >= hi {
		v = math.Nextafter32(hi, lo)
	}
	return v
}

// emitter is the single serializing writer. It assigns global indices.
type emitter struct {
	g     *Generator
	w     SampleWriter
	stats Stats
}

func (e *emitter) startTrajectory(tr *Trajectory) {
	e.stats.Trajectories++
	e.g.logger.Debug("trajectory",
		zap.Int("traj_idx", tr.Index),
		zap.Uint64("traj_seed", tr.Seed),
		zap.Float32("alpha", tr.Alpha),
		zap.Stringer("ic_type", tr.Variant),
	)
	for _, o := range e.g.observers {
		o.OnTrajectory(tr)
	}
}

func (e *emitter) emit(s *Sample) error {
	s.Record.GlobalSampleIdx = e.stats.Samples
	if err := e.w.Write(s.Record, s.Input, s.Target); err != nil {
		return fmt.Errorf("pipeline: sample %d: %w", s.Record.GlobalSampleIdx, err)
	}
	e.stats.Samples++
	e.stats.Substeps += uint64(s.Record.KUsedRef)
	for _, o := range e.g.observers {
		o.OnSample(s)
	}
	return nil
}
