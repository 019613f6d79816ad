package integrators

import (
	"math"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
)

// segment is one accepted integration step with derivatives at both
// ends, enough for cubic Hermite interpolation inside it.
type segment struct {
	t0, t1 float64
	y0, y1 hybrid.State
	f0, f1 hybrid.State
}

// interp evaluates the cubic Hermite interpolant at t in [t0, t1].
func (s segment) interp(t float64) hybrid.State {
	h := s.t1 - s.t0
	if h == 0 {
		return s.y1.Clone()
	}
	x := (t - s.t0) / h
	x2 := x * x
	x3 := x2 * x

	h00 := 2*x3 - 3*x2 + 1
	h10 := x3 - 2*x2 + x
	h01 := -2*x3 + 3*x2
	h11 := x3 - x2

	y := make(hybrid.State, len(s.y0))
	for i := range y {
		y[i] = h00*s.y0[i] + h10*h*s.f0[i] + h01*s.y1[i] + h11*h*s.f1[i]
	}
	return y
}

// crossings returns the ascending indices whose guard value went from
// non-positive to positive between gA and gB. strict demands a strictly
// negative start, which keeps a guard that is exactly zero at the
// beginning of a segment (it typically just fired there) from
// re-triggering immediately.
func crossings(gA, gB []float64, strict bool) []int {
	var fired []int
	for i := range gB {
		if gB[i] <= 0 {
			continue
		}
		if gA[i] < 0 || (!strict && gA[i] == 0) {
			fired = append(fired, i)
		}
	}
	return fired
}

// localize narrows the first positive-going crossing inside seg down by
// bisecting the Hermite interpolant. gA and gB are the guard values at
// the segment ends, with at least one crossing between them. It returns
// the crossing time, the interpolated state there, and every guard
// index that crossed at that time.
func localize(g hybrid.EventFunc, seg segment, gA, gB []float64, strict bool) (float64, hybrid.State, []int, error) {
	lo, hi := seg.t0, seg.t1
	tol := 1e-12 * math.Max(1, math.Abs(seg.t1))

	for iter := 0; iter < 64 && hi-lo > tol; iter++ {
		mid := 0.5 * (lo + hi)
		gMid, err := g(mid, seg.interp(mid))
		if err != nil {
			return 0, nil, nil, err
		}
		if len(crossings(gA, gMid, strict)) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}

	yE := seg.interp(hi)
	gE, err := g(hi, yE)
	if err != nil {
		return 0, nil, nil, err
	}
	fired := crossings(gA, gE, strict)
	if len(fired) == 0 {
		// Interpolation noise pushed the guard back below zero at hi;
		// fall back to the step endpoint where the crossing is certain.
		return seg.t1, seg.y1.Clone(), crossings(gA, gB, strict), nil
	}
	return hi, yE, fired, nil
}
