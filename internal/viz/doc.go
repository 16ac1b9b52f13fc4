// Package viz renders a live diffusion field in the terminal.
//
// [Run] starts a [Model] that drives a solver with the run margin, one macro
// step per tick, and draws the field as a heatmap using half-block cells (two
// grid rows per terminal row). It is the interactive counterpart of dataset
// generation: the same initial-condition variants, the same mu set, a looser
// margin.
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	N / P - Next / previous mu in the set
//	+ / - - Raise / lower the run margin
//	R     - New random initial condition
//	C     - Clear the field
//	T     - Cycle color themes
//	Click - Add a hotspot to both grid rows under the cursor
//	Q     - Quit
package viz
