package integrators

import (
	"fmt"
	"math"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
)

// stepKernel advances one fixed step of size h. f0 is the derivative
// at (t, y), already evaluated by the surrounding loop.
type stepKernel func(f hybrid.Derivative, t float64, y, f0 hybrid.State, h float64) (hybrid.State, int, error)

// RK4 is a fixed-step classical Runge-Kutta integrator. Guard
// crossings are still localized exactly, via the Hermite interpolant
// over the crossing step.
type RK4 struct {
	Dt       float64
	maxSteps int
}

func NewRK4(dt float64) *RK4 {
	return &RK4{Dt: dt, maxSteps: 2_000_000}
}

func (r *RK4) Integrate(f hybrid.Derivative, g hybrid.EventFunc, t0, t1 float64, y0 hybrid.State, opt hybrid.StepOptions, out hybrid.StepFunc) (hybrid.Solution, error) {
	if r.Dt <= 0 {
		return hybrid.Solution{T: t0, Y: y0.Clone()}, fmt.Errorf("integrators: rk4 needs a positive step, got %g", r.Dt)
	}
	return fixedIntegrate(rk4Kernel, r.Dt, r.maxSteps, f, g, t0, t1, y0, opt, out)
}

func rk4Kernel(f hybrid.Derivative, t float64, y, f0 hybrid.State, h float64) (hybrid.State, int, error) {
	n := len(y)
	scratch := make(hybrid.State, n)

	k1 := f0
	for i := 0; i < n; i++ {
		scratch[i] = y[i] + h*0.5*k1[i]
	}
	k2, err := f(t+h*0.5, scratch)
	if err != nil {
		return nil, 1, err
	}
	for i := 0; i < n; i++ {
		scratch[i] = y[i] + h*0.5*k2[i]
	}
	k3, err := f(t+h*0.5, scratch)
	if err != nil {
		return nil, 2, err
	}
	for i := 0; i < n; i++ {
		scratch[i] = y[i] + h*k3[i]
	}
	k4, err := f(t+h, scratch)
	if err != nil {
		return nil, 3, err
	}

	result := make(hybrid.State, n)
	h6 := h / 6.0
	for i := 0; i < n; i++ {
		result[i] = y[i] + h6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result, 3, nil
}

// Euler is a fixed-step forward Euler integrator, mostly useful as a
// cheap baseline in tests and benchmarks.
type Euler struct {
	Dt       float64
	maxSteps int
}

func NewEuler(dt float64) *Euler {
	return &Euler{Dt: dt, maxSteps: 2_000_000}
}

func (e *Euler) Integrate(f hybrid.Derivative, g hybrid.EventFunc, t0, t1 float64, y0 hybrid.State, opt hybrid.StepOptions, out hybrid.StepFunc) (hybrid.Solution, error) {
	if e.Dt <= 0 {
		return hybrid.Solution{T: t0, Y: y0.Clone()}, fmt.Errorf("integrators: euler needs a positive step, got %g", e.Dt)
	}
	return fixedIntegrate(eulerKernel, e.Dt, e.maxSteps, f, g, t0, t1, y0, opt, out)
}

func eulerKernel(_ hybrid.Derivative, _ float64, y, f0 hybrid.State, h float64) (hybrid.State, int, error) {
	result := make(hybrid.State, len(y))
	for i := range y {
		result[i] = y[i] + h*f0[i]
	}
	return result, 0, nil
}

func fixedIntegrate(kernel stepKernel, dt float64, maxSteps int, f hybrid.Derivative, g hybrid.EventFunc, t0, t1 float64, y0 hybrid.State, opt hybrid.StepOptions, out hybrid.StepFunc) (hybrid.Solution, error) {
	sol := hybrid.Solution{T: t0, Y: y0.Clone()}
	if t1 <= t0 {
		return sol, nil
	}

	y := y0.Clone()
	t := t0

	fPrev, err := f(t, y)
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
	strict := true

	h := dt
	if opt.MaxStep > 0 && h > opt.MaxStep {
		h = opt.MaxStep
	}

	emit := newEmitter(out, opt.OutputStep, t0)

	for {
		if sol.Steps >= maxSteps {
			return sol, fmt.Errorf("%w: %d steps at t=%.6g", hybrid.ErrMaxSteps, maxSteps, t)
		}

		step := h
		last := false
		if !math.IsInf(t1, 1) && t+step >= t1 {
			step = t1 - t
			last = true
		}

		yNew, evals, err := kernel(f, t, y, fPrev, step)
		sol.Evals += evals
		if err != nil {
			return sol, err
		}

		tNew := t + step
		if last {
			tNew = t1
		}
		if !yNew.IsValid() {
			return sol, fmt.Errorf("%w at t=%.6g", hybrid.ErrInvalidState, tNew)
		}

		fNew, err := f(tNew, yNew)
		sol.Evals++
		if err != nil {
			return sol, err
		}

		seg := segment{t0: t, t1: tNew, y0: y, y1: yNew, f0: fPrev, f1: fNew}

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
		fPrev = fNew

		if last {
			sol.T = t
			sol.Y = y.Clone()
			return sol, nil
		}
	}
}
