package hybrid

import "math"

// State is the continuous state vector y of a hybrid system.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Discrete is the discrete state vector z. It changes only inside Jump;
// continuous flow never touches it.
type Discrete []float64

func (d Discrete) Clone() Discrete {
	c := make(Discrete, len(d))
	copy(c, d)
	return c
}

// Params is the parameter vector p. It is piecewise constant between
// Flow-driven self-updates and read-only for everything else.
type Params []float64

func (p Params) Clone() Params {
	c := make(Params, len(p))
	copy(c, p)
	return c
}

// Input is the external excitation vector u.
type Input []float64

// Model is the plugin contract of a hybrid dynamical system: continuous
// flow, the guard functions whose positive-going zero crossings trigger
// jumps, and the discrete transition applied at a crossing.
type Model interface {
	// Flow returns dy/dt at (t, y) under discrete state z, parameters p,
	// and excitation u. It may return an updated parameter vector; the
	// simulator threads pNext into every subsequent evaluation. Returning
	// p unchanged is allowed and is the common case.
	Flow(t float64, y State, z Discrete, p Params, u Input) (dy State, pNext Params, err error)

	// Events returns the guard vector e. Component i fires when it
	// crosses zero going positive. The length of e must not change
	// within a run.
	Events(t float64, y State, z Discrete, p Params, u Input) ([]float64, error)

	// Jump maps the pre-event state to the post-event state. fired holds
	// every guard index that crossed at the localized event time, in
	// ascending order; the model decides priority when there is more
	// than one. terminal true stops the run at this event.
	Jump(t float64, y State, z Discrete, p Params, u Input, fired []int) (yPlus State, zPlus Discrete, terminal bool, err error)
}

// Excitation maps the current state to an external input vector.
type Excitation interface {
	Input(t float64, y State, z Discrete) Input
}

// Sample is one recorded point of a run. Event marks the discrete
// sample emitted right after a jump, as opposed to continuous flow
// samples.
type Sample struct {
	T     float64
	Y     State
	Z     Discrete
	U     Input
	Event bool
}

// Recorder receives samples during a run. Recording never influences
// the trajectory; a recorder error aborts the run.
type Recorder interface {
	Record(Sample) error
}

// Derivative is the right-hand side handed to an integrator.
type Derivative func(t float64, y State) (State, error)

// EventFunc evaluates the guard vector for event localization.
type EventFunc func(t float64, y State) ([]float64, error)

// StepFunc receives accepted integration samples in time order.
// Returning an error aborts the integration.
type StepFunc func(t float64, y State) error

// Solution is the outcome of one integration segment. Fired is nil when
// the segment ran to its end time without a crossing; otherwise it
// holds the ascending indices of every guard component that crossed
// zero going positive at time T.
type Solution struct {
	T     float64
	Y     State
	Fired []int

	Steps    int
	Rejected int
	Evals    int
}

// Integrator advances y' = f(t, y) from t0 to t1 and stops early at the
// first positive-going zero crossing of any component of g. Both f and
// g may report errors, which abort integration. out may be nil.
type Integrator interface {
	Integrate(f Derivative, g EventFunc, t0, t1 float64, y0 State, opt StepOptions, out StepFunc) (Solution, error)
}

// StepOptions carries the per-segment numeric controls of an
// integration call.
type StepOptions struct {
	Rel     float64 // relative tolerance
	Abs     float64 // absolute tolerance
	MaxStep float64 // largest step size, 0 = unbounded
	MinStep float64 // smallest step size before ErrStepTooSmall
	// OutputStep > 0 emits interpolated samples at this spacing instead
	// of one sample per accepted step.
	OutputStep float64
}
