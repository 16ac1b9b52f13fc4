package solver

import (
	"fmt"
	"math"
)

const (
	DefaultAlpha = 0.2
	DefaultMu    = 10.0
	DefaultSRun  = 0.8
	DefaultSRef  = 0.35

	MinAlpha  = 1e-8
	MinMargin = 0.05
	MaxMargin = 0.99
)

// Solver owns an n x n field and a scratch buffer of the same size.
type Solver struct {
	n     int
	alpha float32
	mu    float32
	sRun  float32
	sRef  float32
	dx    float32
	field []float32
	next  []float32
}

// New returns a solver with a zero field and default parameters.
func New(n int) (*Solver, error) {
	if n < 3 {
		return nil, fmt.Errorf("%w, got %d", ErrGridTooSmall, n)
	}
	return &Solver{
		n:     n,
		alpha: DefaultAlpha,
		mu:    DefaultMu,
		sRun:  DefaultSRun,
		sRef:  DefaultSRef,
		dx:    1 / float32(n-1),
		field: make([]float32, n*n),
		next:  make([]float32, n*n),
	}, nil
}

func (s *Solver) SetAlpha(v float32) { s.alpha = floor(v, MinAlpha) }
func (s *Solver) SetMu(v float32)    { s.mu = floor(v, 0) }
func (s *Solver) SetSRun(v float32)  { s.sRun = clamp(v, MinMargin, MaxMargin) }
func (s *Solver) SetSRef(v float32)  { s.sRef = clamp(v, MinMargin, MaxMargin) }

func (s *Solver) N() int         { return s.n }
func (s *Solver) Alpha() float32 { return s.alpha }
func (s *Solver) Mu() float32    { return s.mu }
func (s *Solver) SRun() float32  { return s.sRun }
func (s *Solver) SRef() float32  { return s.sRef }
func (s *Solver) Dx() float32    { return s.dx }

// Tau returns the macro interval for the current mu and alpha.
func (s *Solver) Tau() float32 {
	return (s.mu * s.dx * s.dx) / s.alpha
}

// SetCell stores a clamped value. The boundary is not re-applied; call
// FinalizeIC after bulk loading.
func (s *Solver) SetCell(x, y int, v float32) {
	if !s.inBounds(x, y) {
		return
	}
	s.field[y*s.n+x] = clamp(v, 0, 1)
}

// AddHotspot adds v to a cell, clamps it, and re-applies the boundary.
func (s *Solver) AddHotspot(x, y int, v float32) {
	if !s.inBounds(x, y) {
		return
	}
	i := y*s.n + x
	s.field[i] = clamp(s.field[i]+v, 0, 1)
	s.applyBoundary()
}

func (s *Solver) FinalizeIC() { s.applyBoundary() }

func (s *Solver) Clear() {
	clear(s.field)
	clear(s.next)
}

// CloneField returns a copy of the field that does not alias solver state.
func (s *Solver) CloneField() []float32 {
	c := make([]float32, len(s.field))
	copy(c, s.field)
	return c
}

// Field exposes the live buffer for renderers. Callers must not modify it,
// and it is invalidated by the next step.
func (s *Solver) Field() []float32 { return s.field }

// StepTauRun advances by one tau using the run margin.
func (s *Solver) StepTauRun() (k int, tau float32) {
	return s.stepTau(s.sRun)
}

// StepTauRef advances by one tau using the reference margin.
func (s *Solver) StepTauRef() (k int, tau float32) {
	return s.stepTau(s.sRef)
}

// SubstepsRef is the substep count the next StepTauRef will take.
func (s *Solver) SubstepsRef() int { return s.substeps(s.sRef) }

func (s *Solver) substeps(margin float32) int {
	dtMax := (s.dx * s.dx) / (4 * s.alpha)
	dt := margin * dtMax
	return max(1, int(math.Ceil(float64(s.Tau()/dt))))
}

func (s *Solver) stepTau(margin float32) (int, float32) {
	k := s.substeps(margin)
	tau := s.Tau()
	sub := tau / float32(k)

	for range k {
		s.explicitStep(sub)
	}
	return k, tau
}

func (s *Solver) explicitStep(dt float32) {
	n := s.n
	c := s.alpha * dt / (s.dx * s.dx)

	for y := 1; y < n-1; y++ {
		row := y * n
		for x := 1; x < n-1; x++ {
			i := row + x
			u := s.field[i]
			lap := (s.field[i-n] + s.field[i+n] + s.field[i-1] + s.field[i+1]) - 4*u
			s.next[i] = clamp(u+c*lap, 0, 1)
		}
	}

	s.swapBuffers()
	s.applyBoundary()
}

func (s *Solver) swapBuffers() {
	s.field, s.next = s.next, s.field
	clear(s.next)
}

func (s *Solver) applyBoundary() {
	n := s.n
	last := (n - 1) * n
	for x := 0; x < n; x++ {
		s.field[x] = 0
		s.field[last+x] = 0
	}
	for y := 0; y < n; y++ {
		s.field[y*n] = 0
		s.field[y*n+n-1] = 0
	}
}

func (s *Solver) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.n && y < s.n
}

// floor and clamp map NaN to the lower bound.
func floor(v, lo float32) float32 {
	if !(v >= lo) {
		return lo
	}
	return v
}

func clamp(v, lo, hi float32) float32 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
