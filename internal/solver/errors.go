package solver

import "errors"

// ErrGridTooSmall indicates a grid with no interior cells.
var ErrGridTooSmall = errors.New("solver: grid size must be >= 3")
