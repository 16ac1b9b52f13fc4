// Package solver advances a bounded scalar field under 2D linear isotropic
// diffusion on a uniform square grid with zero Dirichlet boundary.
//
// The field lives on an n x n row-major grid with spacing dx = 1/(n-1). Each
// call to [Solver.StepTauRun] or [Solver.StepTauRef] advances the field by
// one macro interval
//
//	tau = mu * dx^2 / alpha
//
// using k explicit 5-point stencil substeps of equal length tau/k, where k is
// the smallest count that keeps each substep below s * dx^2/(4*alpha) for the
// chosen stability margin s.
//
// # Clamping
//
// Parameters and cell values are sanitized silently: alpha is floored at a
// small epsilon, mu at zero, margins are clamped to [0.05, 0.99] and cells to
// [0, 1]. Out-of-range coordinates are ignored. Only [New] can fail.
//
// # Thread Safety
//
// Solver instances are NOT thread-safe. Give each goroutine its own solver.
package solver
