package hybrid

import (
	"fmt"
	"math"
)

// Config controls one simulation run. Immutable for the duration of
// the run.
type Config struct {
	TStart float64 // simulation start time
	TMax   float64 // time budget; +Inf means run until a terminal event

	Rel     float64 // relative integration tolerance
	Abs     float64 // absolute integration tolerance
	MaxStep float64 // largest integrator step, 0 = unbounded
	MinStep float64 // smallest integrator step

	// OutputStep > 0 records interpolated samples at this spacing;
	// 0 records one sample per accepted integrator step.
	OutputStep float64

	// MaxJumps bounds the number of discrete transitions, 0 = unbounded.
	// A Zeno-prone model without its own stopping rule hits ErrMaxSteps
	// through the integrator eventually; this bound fails faster.
	MaxJumps int
}

func DefaultConfig() Config {
	return Config{
		TStart:  0,
		TMax:    math.Inf(1),
		Rel:     1e-8,
		Abs:     1e-10,
		MaxStep: 0,
		MinStep: 1e-12,
	}
}

func (c Config) validate() error {
	if c.TMax <= c.TStart {
		return fmt.Errorf("hybrid: tMax (%g) must exceed tStart (%g)", c.TMax, c.TStart)
	}
	if c.Rel <= 0 || c.Abs <= 0 {
		return fmt.Errorf("hybrid: tolerances must be positive, got rel=%g abs=%g", c.Rel, c.Abs)
	}
	if c.MaxStep < 0 || c.MinStep < 0 || c.OutputStep < 0 {
		return fmt.Errorf("hybrid: step sizes must be non-negative")
	}
	if c.MaxJumps < 0 {
		return fmt.Errorf("hybrid: max jumps must be non-negative, got %d", c.MaxJumps)
	}
	return nil
}

func (c Config) stepOptions() StepOptions {
	return StepOptions{
		Rel:        c.Rel,
		Abs:        c.Abs,
		MaxStep:    c.MaxStep,
		MinStep:    c.MinStep,
		OutputStep: c.OutputStep,
	}
}
