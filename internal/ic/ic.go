// Package ic synthesizes normalized initial-condition fields for the
// diffusion solver.
//
// Every generator is a pure function of the random stream it is given and
// the grid size, so a fixed seed reproduces a field bit for bit. The numeric
// ranges below are the ones existing datasets were generated with; changing
// any of them changes every field downstream.
package ic

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Variant selects the family of initial condition.
type Variant int

const (
	Gaussians Variant = iota
	Rectangles
	SmoothNoise
	GradientMix
)

// Variants lists every variant in sampling order.
var Variants = []Variant{Gaussians, Rectangles, SmoothNoise, GradientMix}

var variantNames = map[Variant]string{
	Gaussians:   "gaussians",
	Rectangles:  "rectangles",
	SmoothNoise: "smooth_noise",
	GradientMix: "gradient_mix",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// ParseVariant maps a metadata tag back to its Variant.
func ParseVariant(s string) (Variant, error) {
	for v, name := range variantNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("ic: unknown variant %q", s)
}

// Generator constants.
const (
	GaussMinBlobs  = 1
	GaussMaxBlobs  = 3
	GaussCenterLo  = 0.15
	GaussCenterHi  = 0.85
	GaussSigmaLo   = 1.5
	GaussSigmaHi   = 6.0
	GaussAmpLo     = 0.6
	GaussAmpHi     = 1.0
	RectMinCount   = 1
	RectMaxCount   = 4
	RectValueLo    = 0.5
	RectValueHi    = 1.0
	SmoothPasses   = 2
	RampScale      = 0.6
	BumpCenterLo   = 0.2
	BumpCenterHi   = 0.8
	BumpSigmaLo    = 2.0
	BumpSigmaHi    = 7.0
	BumpAmpLo      = 0.4
	BumpAmpHi      = 0.9
	variantChoices = 4
)

// SampleVariant draws a variant with equal probability.
func SampleVariant(r *rand.Rand) Variant {
	return Variants[r.IntN(variantChoices)]
}

// Generate returns an n*n row-major field in [0,1]. Border cells are left as
// generated; the solver zeroes them on FinalizeIC.
func Generate(r *rand.Rand, n int, v Variant) []float32 {
	f := make([]float32, n*n)

	switch v {
	case Gaussians:
		blobs := intRange(r, GaussMinBlobs, GaussMaxBlobs+1)
		for range blobs {
			cx := floatRange(r, GaussCenterLo, GaussCenterHi) * float32(n-1)
			cy := floatRange(r, GaussCenterLo, GaussCenterHi) * float32(n-1)
			sigma := floatRange(r, GaussSigmaLo, GaussSigmaHi)
			amp := floatRange(r, GaussAmpLo, GaussAmpHi)
			addGaussian(f, n, cx, cy, sigma, amp)
		}

	case Rectangles:
		rects := intRange(r, RectMinCount, RectMaxCount+1)
		for range rects {
			x0 := intRange(r, 1, n/2)
			y0 := intRange(r, 1, n/2)
			w := intRange(r, 2, n/2)
			h := intRange(r, 2, n/2)
			val := floatRange(r, RectValueLo, RectValueHi)

			x1 := min(x0+w, n-2)
			y1 := min(y0+h, n-2)
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					f[y*n+x] = max(f[y*n+x], val)
				}
			}
		}

	case SmoothNoise:
		for i := range f {
			f[i] = r.Float32()
		}
		f = BoxBlur(f, n, SmoothPasses)

	case GradientMix:
		dir := r.IntN(4)
		span := float32(n - 1)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				var t float32
				switch dir {
				case 0:
					t = float32(x) / span
				case 1:
					t = float32(y) / span
				case 2:
					t = 1 - float32(x)/span
				default:
					t = 1 - float32(y)/span
				}
				f[y*n+x] = RampScale * t
			}
		}
		cx := floatRange(r, BumpCenterLo, BumpCenterHi) * span
		cy := floatRange(r, BumpCenterLo, BumpCenterHi) * span
		sigma := floatRange(r, BumpSigmaLo, BumpSigmaHi)
		amp := floatRange(r, BumpAmpLo, BumpAmpHi)
		addGaussian(f, n, cx, cy, sigma, amp)
	}

	Normalize(f)
	return f
}

// Normalize divides by the global maximum when it is positive, then clamps
// to [0,1]. An all-zero field is left unchanged.
func Normalize(f []float32) {
	var mx float32
	for _, v := range f {
		if v > mx {
			mx = v
		}
	}
	if mx <= 0 {
		return
	}
	for i, v := range f {
		f[i] = min(max(v/mx, 0), 1)
	}
}

// BoxBlur applies passes of a 3x3 mean filter. Cells near the edge average
// only their in-bounds neighbors.
func BoxBlur(src []float32, n, passes int) []float32 {
	cur := make([]float32, len(src))
	copy(cur, src)
	tmp := make([]float32, len(src))

	for range passes {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				var sum, cnt float32
				for yy := max(y-1, 0); yy <= min(y+1, n-1); yy++ {
					for xx := max(x-1, 0); xx <= min(x+1, n-1); xx++ {
						sum += cur[yy*n+xx]
						cnt++
					}
				}
				tmp[y*n+x] = sum / cnt
			}
		}
		cur, tmp = tmp, cur
	}
	return cur
}

func addGaussian(f []float32, n int, cx, cy, sigma, amp float32) {
	inv := -0.5 / (sigma * sigma)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dx := float32(x) - cx
			dy := float32(y) - cy
			r2 := dx*dx + dy*dy
			f[y*n+x] += amp * float32(math.Exp(float64(r2*inv)))
		}
	}
}

// floatRange draws uniformly from [lo, hi).
func floatRange(r *rand.Rand, lo, hi float32) float32 {
	return lo + (hi-lo)*r.Float32()
}

// intRange draws uniformly from [lo, hi). An empty range yields lo, which
// only happens for grids too small to fit the nominal rectangle sizes.
func intRange(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo)
}
