package hybrid

import (
	"context"
	"fmt"
)

// TimeoutSentinel is the Result.T value of a run that exhausted its
// time budget without reaching a terminal event.
const TimeoutSentinel = -1.0

// Result is the termination record of one run.
type Result struct {
	Y State
	Z Discrete
	P Params

	// T is the time of the terminal event, or TimeoutSentinel when the
	// time budget ran out first.
	T float64

	Steps    int
	Rejected int
	Evals    int
	Jumps    int
}

func (r *Result) TimedOut() bool { return r.T == TimeoutSentinel }

// Simulator owns the outer hybrid loop: integrate the continuous flow
// until the first guard crossing, apply the discrete jump, repeat.
type Simulator struct {
	model  Model
	integ  Integrator
	excite Excitation
	rec    Recorder
}

// New creates a simulator for the given model. excite may be nil for
// unexcited systems.
func New(model Model, integ Integrator, excite Excitation) *Simulator {
	return &Simulator{model: model, integ: integ, excite: excite}
}

// SetRecorder attaches an output recorder. Pass nil to run headless.
func (s *Simulator) SetRecorder(rec Recorder) { s.rec = rec }

// Output returns the attached recorder, or ErrNoRecorder if the run
// was headless.
func (s *Simulator) Output() (Recorder, error) {
	if s.rec == nil {
		return nil, ErrNoRecorder
	}
	return s.rec, nil
}

func (s *Simulator) input(t float64, y State, z Discrete) Input {
	if s.excite == nil {
		return nil
	}
	return s.excite.Input(t, y, z)
}

// Run simulates from (y0, z0, p0) until a terminal jump, the time
// budget cfg.TMax, or ctx cancellation. The context is checked once
// per outer-loop iteration; on cancellation the last computed state is
// returned together with the context error. Plugin and integration
// failures abort the run with a nil result.
func (s *Simulator) Run(ctx context.Context, y0 State, z0 Discrete, p0 Params, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if s.model == nil || s.integ == nil {
		return nil, fmt.Errorf("hybrid: simulator needs a model and an integrator")
	}
	if !y0.IsValid() {
		return nil, ErrInvalidState
	}

	y := y0.Clone()
	z := z0.Clone()
	p := p0.Clone()
	t := cfg.TStart
	res := &Result{}

	nY := len(y)
	nP := len(p)
	nE := -1 // guard vector length, captured on first Events call

	f := func(t float64, y State) (State, error) {
		u := s.input(t, y, z)
		dy, pNext, err := s.model.Flow(t, y, z, p, u)
		if err != nil {
			return nil, pluginErr(StageFlow, t, err)
		}
		if len(dy) != nY {
			return nil, fmt.Errorf("%w: flow returned %d derivatives for %d states", ErrDimensionMismatch, len(dy), nY)
		}
		if pNext != nil {
			if len(pNext) != nP {
				return nil, fmt.Errorf("%w: parameter vector %d -> %d", ErrShapeChanged, nP, len(pNext))
			}
			p = pNext
		}
		return dy, nil
	}

	g := func(t float64, y State) ([]float64, error) {
		u := s.input(t, y, z)
		e, err := s.model.Events(t, y, z, p, u)
		if err != nil {
			return nil, pluginErr(StageEvents, t, err)
		}
		if nE < 0 {
			nE = len(e)
		} else if len(e) != nE {
			return nil, fmt.Errorf("%w: event vector %d -> %d", ErrShapeChanged, nE, len(e))
		}
		return e, nil
	}

	var out StepFunc
	if s.rec != nil {
		out = func(t float64, y State) error {
			u := s.input(t, y, z)
			if err := s.rec.Record(Sample{T: t, Y: y.Clone(), Z: z.Clone(), U: u}); err != nil {
				return pluginErr(StageRecorder, t, err)
			}
			return nil
		}
	}

	opt := cfg.stepOptions()

	if out != nil {
		if err := out(t, y); err != nil {
			return nil, err
		}
	}

	for {
		select {
		case <-ctx.Done():
			res.Y, res.Z, res.P, res.T = y, z, p, t
			return res, ctx.Err()
		default:
		}

		if t >= cfg.TMax {
			res.Y, res.Z, res.P, res.T = y, z, p, TimeoutSentinel
			return res, nil
		}

		sol, err := s.integ.Integrate(f, g, t, cfg.TMax, y, opt, out)
		res.Steps += sol.Steps
		res.Rejected += sol.Rejected
		res.Evals += sol.Evals
		if err != nil {
			return nil, err
		}

		if sol.Fired == nil {
			// Time budget exhausted; z stays untouched.
			res.Y, res.Z, res.P, res.T = sol.Y, z, p, TimeoutSentinel
			return res, nil
		}

		t = sol.T
		u := s.input(t, sol.Y, z)
		yPlus, zPlus, terminal, err := s.model.Jump(t, sol.Y, z, p, u, sol.Fired)
		if err != nil {
			return nil, pluginErr(StageJump, t, err)
		}
		if len(yPlus) != nY {
			return nil, fmt.Errorf("%w: jump returned %d states for %d", ErrDimensionMismatch, len(yPlus), nY)
		}
		y, z = yPlus, zPlus
		res.Jumps++

		if s.rec != nil {
			uPlus := s.input(t, y, z)
			if err := s.rec.Record(Sample{T: t, Y: y.Clone(), Z: z.Clone(), U: uPlus, Event: true}); err != nil {
				return nil, pluginErr(StageRecorder, t, err)
			}
		}

		if terminal {
			res.Y, res.Z, res.P, res.T = y, z, p, t
			return res, nil
		}

		if cfg.MaxJumps > 0 && res.Jumps >= cfg.MaxJumps {
			return nil, fmt.Errorf("hybrid: jump budget of %d exhausted at t=%.6g", cfg.MaxJumps, t)
		}
	}
}
