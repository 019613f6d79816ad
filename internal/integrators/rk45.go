package integrators

import (
	"fmt"
	"math"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is an adaptive Dormand-Prince 5(4) integrator with cubic
// Hermite dense output and guard-crossing localization.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
	maxSteps int
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		maxSteps: 2_000_000,
	}
}

func (r *RK45) Integrate(f hybrid.Derivative, g hybrid.EventFunc, t0, t1 float64, y0 hybrid.State, opt hybrid.StepOptions, out hybrid.StepFunc) (hybrid.Solution, error) {
	sol := hybrid.Solution{T: t0, Y: y0.Clone()}
	if t1 <= t0 {
		return sol, nil
	}

	n := len(y0)
	y := y0.Clone()
	t := t0

	k1, err := f(t, y)
	sol.Evals++
	if err != nil {
		return sol, err
	}

	var gPrev []float64
	if g != nil {
		gPrev, err = g(t, y)
		if err != nil {
			return sol, err
		}
	}
	// A guard sitting exactly at zero at the segment start just fired
	// there; demand a strictly negative start until the first step lands.
	strict := true

	h := 1e-2
	if span := t1 - t0; !math.IsInf(span, 1) {
		h = span / 100
	}
	if opt.MaxStep > 0 && h > opt.MaxStep {
		h = opt.MaxStep
	}

	emit := newEmitter(out, opt.OutputStep, t0)

	x2 := make(hybrid.State, n)
	x3 := make(hybrid.State, n)
	x4 := make(hybrid.State, n)
	x5 := make(hybrid.State, n)
	x6 := make(hybrid.State, n)

	for {
		if sol.Steps+sol.Rejected >= r.maxSteps {
			return sol, fmt.Errorf("%w: %d steps at t=%.6g", hybrid.ErrMaxSteps, r.maxSteps, t)
		}

		if opt.MaxStep > 0 && h > opt.MaxStep {
			h = opt.MaxStep
		}
		last := false
		if !math.IsInf(t1, 1) && t+h >= t1 {
			h = t1 - t
			last = true
		}

		for i := 0; i < n; i++ {
			x2[i] = y[i] + h*b21*k1[i]
		}
		k2, err := f(t+a2*h, x2)
		sol.Evals++
		if err != nil {
			return sol, err
		}

		for i := 0; i < n; i++ {
			x3[i] = y[i] + h*(b31*k1[i]+b32*k2[i])
		}
		k3, err := f(t+a3*h, x3)
		sol.Evals++
		if err != nil {
			return sol, err
		}

		for i := 0; i < n; i++ {
			x4[i] = y[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
		}
		k4, err := f(t+a4*h, x4)
		sol.Evals++
		if err != nil {
			return sol, err
		}

		for i := 0; i < n; i++ {
			x5[i] = y[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
		}
		k5, err := f(t+a5*h, x5)
		sol.Evals++
		if err != nil {
			return sol, err
		}

		for i := 0; i < n; i++ {
			x6[i] = y[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
		}
		k6, err := f(t+h, x6)
		sol.Evals++
		if err != nil {
			return sol, err
		}

		yNew := make(hybrid.State, n)
		for i := 0; i < n; i++ {
			yNew[i] = y[i] + h*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
		}

		k7, err := f(t+h, yNew)
		sol.Evals++
		if err != nil {
			return sol, err
		}

		errRatio := 0.0
		for i := 0; i < n; i++ {
			errEst := h * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
			sc := opt.Abs + opt.Rel*math.Max(math.Abs(y[i]), math.Abs(yNew[i]))
			errRatio = math.Max(errRatio, math.Abs(errEst)/sc)
		}

		if errRatio > 1 {
			sol.Rejected++
			scale := math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
			h *= scale
			if opt.MinStep > 0 && h < opt.MinStep {
				return sol, fmt.Errorf("%w: h=%.3g at t=%.6g", hybrid.ErrStepTooSmall, h, t)
			}
			continue
		}

		tNew := t + h
		if last {
			tNew = t1
		}
		if !yNew.IsValid() {
			return sol, fmt.Errorf("%w at t=%.6g", hybrid.ErrInvalidState, tNew)
		}

		seg := segment{t0: t, t1: tNew, y0: y.Clone(), y1: yNew, f0: k1, f1: k7}

		if g != nil {
			gNew, err := g(tNew, yNew)
			if err != nil {
				return sol, err
			}
			if fired := crossings(gPrev, gNew, strict); len(fired) > 0 {
				tE, yE, fired, err := localize(g, seg, gPrev, gNew, strict)
				if err != nil {
					return sol, err
				}
				if err := emit.upTo(seg, tE); err != nil {
					return sol, err
				}
				if out != nil {
					if err := out(tE, yE.Clone()); err != nil {
						return sol, err
					}
				}
				sol.Steps++
				sol.T = tE
				sol.Y = yE
				sol.Fired = fired
				return sol, nil
			}
			gPrev = gNew
		}
		strict = false

		if err := emit.accepted(seg); err != nil {
			return sol, err
		}

		sol.Steps++
		t = tNew
		y = yNew
		k1 = k7

		if last {
			sol.T = t
			sol.Y = y.Clone()
			return sol, nil
		}

		if errRatio > 0 {
			h *= math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
		} else {
			h *= r.maxScale
		}
	}
}
