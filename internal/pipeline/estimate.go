package pipeline

import (
	"slices"

	"github.com/san-kum/diffgen/internal/dataset"
	"github.com/san-kum/diffgen/internal/solver"
)

// Estimate sizes a run without simulating it.
type Estimate struct {
	Samples uint64
	// StreamBytes covers both binary streams.
	StreamBytes uint64
	// Substeps maps each mu to its reference substep count. The ratio
	// tau/dt reduces to 4*mu/s_ref, so alpha and n do not enter.
	Substeps map[float32]int
	// ExpectedSubsteps assumes mu is drawn uniformly from the set.
	ExpectedSubsteps float64
	// CellUpdates is ExpectedSubsteps times the interior cell count.
	CellUpdates float64
}

func (g *Generator) Estimate() Estimate {
	n := g.cfg.N
	e := Estimate{
		Samples:  uint64(g.cfg.TrajCount) * uint64(g.cfg.TSteps),
		Substeps: make(map[float32]int, len(g.mu)),
	}
	e.StreamBytes = 2 * e.Samples * uint64(dataset.RecordBytes(n))

	s, err := solver.New(n)
	if err != nil {
		return e
	}
	s.SetAlpha(g.cfg.AlphaMin)
	s.SetSRef(g.cfg.SRef)

	var sum float64
	for _, mu := range g.mu {
		s.SetMu(mu)
		k := s.SubstepsRef()
		e.Substeps[mu] = k
		sum += float64(k)
	}
	if len(g.mu) > 0 {
		e.ExpectedSubsteps = float64(e.Samples) * sum / float64(len(g.mu))
	}
	e.CellUpdates = e.ExpectedSubsteps * float64((n-2)*(n-2))
	return e
}

// SortedMu returns the keys of Substeps in ascending order.
func (e Estimate) SortedMu() []float32 {
	out := make([]float32, 0, len(e.Substeps))
	for mu := range e.Substeps {
		out = append(out, mu)
	}
	slices.Sort(out)
	return out
}
