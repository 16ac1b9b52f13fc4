package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/diffgen/internal/analysis"
	"github.com/san-kum/diffgen/internal/config"
	"github.com/san-kum/diffgen/internal/dataset"
	"github.com/san-kum/diffgen/internal/pipeline"
)

type memWriter struct {
	records []dataset.Record
	inputs  [][]float32
	targets [][]float32
	failAt  int
}

func (m *memWriter) Write(rec dataset.Record, input, target []float32) error {
	if m.failAt > 0 && len(m.records) == m.failAt {
		return errors.New("disk full")
	}
	m.records = append(m.records, rec)
	m.inputs = append(m.inputs, input)
	m.targets = append(m.targets, target)
	return nil
}

// cancellingWriter cancels its context once it has accepted after samples.
type cancellingWriter struct {
	memWriter
	after  int
	cancel context.CancelFunc
}

func (c *cancellingWriter) Write(rec dataset.Record, input, target []float32) error {
	if err := c.memWriter.Write(rec, input, target); err != nil {
		return err
	}
	if len(c.records) == c.after {
		c.cancel()
	}
	return nil
}

type countingObserver struct {
	trajectories []int
	samples      int
}

func (c *countingObserver) OnTrajectory(tr *pipeline.Trajectory) {
	c.trajectories = append(c.trajectories, tr.Index)
}
func (c *countingObserver) OnSample(*pipeline.Sample) { c.samples++ }

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.N = 12
	cfg.TrajStart = 5
	cfg.TrajCount = 4
	cfg.TSteps = 3
	cfg.MuSet = "1,2,5"
	return cfg
}

func generate(cfg *config.Config) *memWriter {
	g, err := pipeline.New(cfg)
	Expect(err).NotTo(HaveOccurred())
	w := &memWriter{}
	_, err = g.Run(context.Background(), w)
	Expect(err).NotTo(HaveOccurred())
	return w
}

func writeRun(dir string, cfg *config.Config) {
	g, err := pipeline.New(cfg)
	Expect(err).NotTo(HaveOccurred())
	w, err := dataset.Create(dir, cfg.N)
	Expect(err).NotTo(HaveOccurred())
	_, err = g.Run(context.Background(), w)
	Expect(err).NotTo(HaveOccurred())
	Expect(w.Close()).To(Succeed())
}

var _ = Describe("TrajectorySeed", func() {
	It("is the base seed at index zero", func() {
		Expect(pipeline.TrajectorySeed(123, 0)).To(Equal(uint64(123)))
	})

	It("mixes the index with the golden-ratio constant", func() {
		Expect(pipeline.TrajectorySeed(0, 1)).To(Equal(uint64(0x9E3779B97F4A7C15)))
		mix := pipeline.SeedMixer
		Expect(pipeline.TrajectorySeed(123, 2)).To(Equal(uint64(123) ^ (2 * mix)))
	})
})

var _ = Describe("Generator", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = smallConfig()
	})

	Context("configuration", func() {
		It("rejects an empty mu set", func() {
			cfg.MuSet = " , "
			_, err := pipeline.New(cfg)
			Expect(err).To(MatchError(config.ErrEmptyMuSet))
			Expect(err).To(MatchError(config.ErrInvalidConfig))
		})

		It("rejects an inverted alpha range", func() {
			cfg.AlphaMin, cfg.AlphaMax = 0.5, 0.5
			_, err := pipeline.New(cfg)
			Expect(err).To(MatchError(config.ErrInvalidConfig))
		})

		It("exposes the parsed mu set", func() {
			g, err := pipeline.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(g.MuValues()).To(Equal([]float32{1, 2, 5}))
		})
	})

	Context("sequential run", func() {
		It("emits trajectory-major samples with contiguous global indices", func() {
			w := generate(cfg)
			Expect(w.records).To(HaveLen(12))
			for k, rec := range w.records {
				Expect(rec.GlobalSampleIdx).To(Equal(uint64(k)))
				Expect(rec.TrajIdx).To(Equal(cfg.TrajStart + k/3))
				Expect(rec.StepIdx).To(Equal(k % 3))
				Expect(rec.TrajSeed).To(Equal(pipeline.TrajectorySeed(cfg.Seed, rec.TrajIdx)))
				Expect(rec.Split).To(Equal("train"))
				Expect(rec.N).To(Equal(12))
			}
		})

		It("records parameters within their configured ranges", func() {
			w := generate(cfg)
			for _, rec := range w.records {
				Expect(rec.Alpha).To(BeNumerically(">=", cfg.AlphaMin))
				Expect(rec.Alpha).To(BeNumerically("<", cfg.AlphaMax))
				Expect(rec.Mu).To(BeElementOf(float32(1), float32(2), float32(5)))
				Expect(rec.Tau).To(BeNumerically("~", rec.Mu*rec.Dx*rec.Dx/rec.Alpha, 1e-6))
				Expect(rec.KUsedRef).To(BeNumerically(">=", 1))
				Expect(rec.SRef).To(Equal(cfg.SRef))
				Expect(rec.ICType).To(BeElementOf("gaussians", "rectangles", "smooth_noise", "gradient_mix"))
			}
		})

		It("keeps alpha and the initial condition fixed within a trajectory", func() {
			w := generate(cfg)
			for k := 1; k < len(w.records); k++ {
				if w.records[k].TrajIdx == w.records[k-1].TrajIdx {
					Expect(w.records[k].Alpha).To(Equal(w.records[k-1].Alpha))
					Expect(w.records[k].ICType).To(Equal(w.records[k-1].ICType))
					Expect(w.inputs[k]).To(Equal(w.targets[k-1]))
				}
			}
		})

		It("produces bounded fields with a zero border", func() {
			w := generate(cfg)
			for k := range w.records {
				Expect(analysis.IsBorderZero(w.inputs[k], cfg.N)).To(BeTrue())
				Expect(analysis.IsBorderZero(w.targets[k], cfg.N)).To(BeTrue())
				for _, v := range w.targets[k] {
					Expect(v).To(And(BeNumerically(">=", 0), BeNumerically("<=", 1)))
				}
				Expect(analysis.Mass(w.targets[k])).To(BeNumerically("<=", analysis.Mass(w.inputs[k])+1e-4))
			}
		})

		It("notifies observers once per trajectory and sample", func() {
			obs := &countingObserver{}
			g, err := pipeline.New(cfg, pipeline.WithObserver(obs))
			Expect(err).NotTo(HaveOccurred())
			stats, err := g.Run(context.Background(), &memWriter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.trajectories).To(Equal([]int{5, 6, 7, 8}))
			Expect(obs.samples).To(Equal(12))
			Expect(stats.Trajectories).To(Equal(4))
			Expect(stats.Samples).To(Equal(uint64(12)))
			Expect(stats.Substeps).To(BeNumerically(">=", uint64(12)))
		})

		It("emits nothing for zero trajectories or zero steps", func() {
			cfg.TrajCount = 0
			Expect(generate(cfg).records).To(BeEmpty())
			cfg.TrajCount, cfg.TSteps = 3, 0
			Expect(generate(cfg).records).To(BeEmpty())
		})
	})

	Context("determinism", func() {
		It("writes byte-identical runs for the same config", func() {
			root := GinkgoT().TempDir()
			a, b := filepath.Join(root, "a"), filepath.Join(root, "b")
			writeRun(a, cfg)
			writeRun(b, cfg)
			for _, name := range []string{dataset.InputFile, dataset.TargetFile, dataset.MetaFile} {
				da, err := os.ReadFile(filepath.Join(a, name))
				Expect(err).NotTo(HaveOccurred())
				db, err := os.ReadFile(filepath.Join(b, name))
				Expect(err).NotTo(HaveOccurred())
				Expect(da).To(Equal(db), name)
			}
		})

		It("regenerates a trajectory independently of the range it was part of", func() {
			full := generate(cfg)

			cfg.TrajStart, cfg.TrajCount = 7, 1
			one := generate(cfg)
			Expect(one.records).To(HaveLen(3))
			Expect(one.targets).To(Equal(full.targets[6:9]))
			Expect(one.records[0].GlobalSampleIdx).To(BeZero())
		})

		It("changes with the base seed", func() {
			a := generate(cfg)
			cfg.Seed++
			b := generate(cfg)
			Expect(a.inputs[0]).NotTo(Equal(b.inputs[0]))
		})
	})

	Context("worker pool", func() {
		It("matches the sequential output exactly", func() {
			cfg.TrajCount = 9
			seq := generate(cfg)
			cfg.Workers = 4
			par := generate(cfg)
			Expect(par.records).To(Equal(seq.records))
			Expect(par.inputs).To(Equal(seq.inputs))
			Expect(par.targets).To(Equal(seq.targets))
		})

		It("keeps order when the result ring wraps several times", func() {
			cfg.TrajCount = 13
			seq := generate(cfg)
			cfg.Workers = 2
			par := generate(cfg)
			Expect(par.records).To(Equal(seq.records))
			Expect(par.targets).To(Equal(seq.targets))
		})

		It("propagates writer errors", func() {
			cfg.Workers = 3
			g, err := pipeline.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			w := &memWriter{failAt: 4}
			_, err = g.Run(context.Background(), w)
			Expect(err).To(MatchError(ContainSubstring("disk full")))
			Expect(w.records).To(HaveLen(4))
		})
	})

	Context("failures", func() {
		It("wraps writer errors with the global sample index", func() {
			g, err := pipeline.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			w := &memWriter{failAt: 2}
			stats, err := g.Run(context.Background(), w)
			Expect(err).To(MatchError(ContainSubstring("sample 2")))
			Expect(stats.Samples).To(Equal(uint64(2)))
		})

		It("stops on a cancelled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			g, err := pipeline.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			w := &memWriter{}
			_, err = g.Run(ctx, w)
			Expect(err).To(MatchError(context.Canceled))
			Expect(w.records).To(BeEmpty())

			cfg.Workers = 2
			g, err = pipeline.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			_, err = g.Run(ctx, w)
			Expect(err).To(MatchError(context.Canceled))
		})

		DescribeTable("stops between samples when cancelled mid-run",
			func(workers int) {
				cfg.TrajCount = 50
				cfg.TSteps = 4
				cfg.Workers = workers
				g, err := pipeline.New(cfg)
				Expect(err).NotTo(HaveOccurred())

				ctx, cancel := context.WithCancel(context.Background())
				defer cancel()
				w := &cancellingWriter{after: 7, cancel: cancel}
				stats, err := g.Run(ctx, w)
				Expect(err).To(MatchError(context.Canceled))
				Expect(w.records).To(HaveLen(7))
				Expect(stats.Samples).To(Equal(uint64(7)))
			},
			Entry("sequential", 1),
			Entry("two workers", 2),
			Entry("four workers", 4),
		)
	})
})

var _ = Describe("Estimate", func() {
	It("sizes a run from the config alone", func() {
		cfg := smallConfig()
		cfg.SRef = 0.5
		g, err := pipeline.New(cfg)
		Expect(err).NotTo(HaveOccurred())

		e := g.Estimate()
		Expect(e.Samples).To(Equal(uint64(12)))
		Expect(e.StreamBytes).To(Equal(uint64(2 * 12 * 4 * 12 * 12)))
		Expect(e.SortedMu()).To(Equal([]float32{1, 2, 5}))
		Expect(e.Substeps[1]).To(BeNumerically("~", 8, 1))
		Expect(e.Substeps[5]).To(BeNumerically("~", 40, 1))
		Expect(e.CellUpdates).To(BeNumerically("~", e.ExpectedSubsteps*100, 1e-6))
	})

	It("matches the substeps actually taken", func() {
		cfg := smallConfig()
		cfg.MuSet = "5"
		g, err := pipeline.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		e := g.Estimate()

		stats, err := g.Run(context.Background(), &memWriter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(float64(stats.Substeps)).To(BeNumerically("~", e.ExpectedSubsteps, float64(stats.Samples)))
	})
})
