// Package analysis summarizes diffusion fields and generated runs.
//
//   - [Mass] and [Peak]: scalar summaries of a single field
//   - [BorderMax]: largest magnitude on the Dirichlet border
//   - [DecayProfile]: per-step mass and peak along one trajectory of a run
//
// With a zero boundary and clamping to [0, 1], mass never increases across a
// step, so a profile whose mass grows points at a corrupted run:
//
//	points, err := analysis.DecayProfile(r, 0)
//	if err == nil && !analysis.Monotone(points) {
//	    // inspect the run
//	}
package analysis
