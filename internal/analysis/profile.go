package analysis

import (
	"fmt"

	"github.com/san-kum/diffgen/internal/dataset"
)

// Point summarizes one sample of a trajectory.
type Point struct {
	Step       int
	Mu         float32
	Tau        float32
	KUsedRef   int
	InputMass  float64
	TargetMass float64
	Peak       float32
}

// Trajectories lists the distinct trajectory indices of a run in the order
// they first appear.
func Trajectories(r *dataset.Reader) []int {
	seen := make(map[int]bool)
	var out []int
	for _, rec := range r.Records()[:r.Len()] {
		if !seen[rec.TrajIdx] {
			seen[rec.TrajIdx] = true
			out = append(out, rec.TrajIdx)
		}
	}
	return out
}

// DecayProfile reads every sample of trajectory traj in step order.
func DecayProfile(r *dataset.Reader, traj int) ([]Point, error) {
	var points []Point
	for k, rec := range r.Records()[:r.Len()] {
		if rec.TrajIdx != traj {
			continue
		}
		in, err := r.Input(k)
		if err != nil {
			return nil, err
		}
		tgt, err := r.Target(k)
		if err != nil {
			return nil, err
		}
		peak, _, _ := Peak(tgt, r.N())
		points = append(points, Point{
			Step:       rec.StepIdx,
			Mu:         rec.Mu,
			Tau:        rec.Tau,
			KUsedRef:   rec.KUsedRef,
			InputMass:  Mass(in),
			TargetMass: Mass(tgt),
			Peak:       peak,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("analysis: trajectory %d not found", traj)
	}
	return points, nil
}

// Monotone reports whether mass never grows across any step, within a small
// float32 tolerance.
func Monotone(points []Point) bool {
	for _, p := range points {
		if p.TargetMass > p.InputMass+1e-4 {
			return false
		}
	}
	return true
}

// Series splits a profile into plottable target mass and peak series.
func Series(points []Point) (mass, peak []float64) {
	mass = make([]float64, len(points))
	peak = make([]float64, len(points))
	for i, p := range points {
		mass[i] = p.TargetMass
		peak[i] = float64(p.Peak)
	}
	return mass, peak
}
