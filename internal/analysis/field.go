package analysis

import "math"

// Mass is the sum of all cells, accumulated in float64.
func Mass(field []float32) float64 {
	var m float64
	for _, v := range field {
		m += float64(v)
	}
	return m
}

// Peak returns the largest cell value and its (x, y) position. An empty
// field yields (0, -1, -1).
func Peak(field []float32, n int) (float32, int, int) {
	best, at := float32(math.Inf(-1)), -1
	for i, v := range field {
		if v > best {
			best, at = v, i
		}
	}
	if at < 0 || n <= 0 {
		return 0, -1, -1
	}
	return best, at % n, at / n
}

// BorderMax is the largest absolute value on the outer ring of an n x n field.
func BorderMax(field []float32, n int) float32 {
	var m float32
	check := func(i int) {
		v := field[i]
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	for i := 0; i < n; i++ {
		check(i)
		check((n-1)*n + i)
		check(i * n)
		check(i*n + n - 1)
	}
	return m
}

func IsBorderZero(field []float32, n int) bool {
	return BorderMax(field, n) == 0
}
