package hybrid

import (
	"errors"
	"fmt"
)

// Domain errors for hybrid simulation.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("hybrid: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates a derivative whose length differs
	// from the state vector.
	ErrDimensionMismatch = errors.New("hybrid: dimension mismatch between state and derivative")

	// ErrShapeChanged indicates an event or parameter vector whose
	// length changed between plugin calls within one run.
	ErrShapeChanged = errors.New("hybrid: plugin vector length changed during run")

	// ErrNoRecorder indicates recorded output was requested from a
	// simulator that has no recorder attached.
	ErrNoRecorder = errors.New("hybrid: no recorder attached")

	// ErrStepTooSmall indicates the adaptive step fell below the minimum.
	ErrStepTooSmall = errors.New("hybrid: adaptive step below minimum")

	// ErrMaxSteps indicates the integrator exhausted its step budget
	// before reaching the end of the segment.
	ErrMaxSteps = errors.New("hybrid: maximum step count exceeded")
)

// Plugin stages, used to identify the offending plugin in a
// PluginError.
const (
	StageFlow       = "flow"
	StageEvents     = "events"
	StageJump       = "jump"
	StageExcitation = "excitation"
	StageRecorder   = "recorder"
)

// PluginError wraps a failure raised inside a model, excitation, or
// recorder plugin. The core never recovers from these; they abort the
// run and surface to the caller.
type PluginError struct {
	Stage   string
	Time    float64
	Wrapped error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("hybrid: %s plugin failed at t=%.6g: %v", e.Stage, e.Time, e.Wrapped)
}

func (e *PluginError) Unwrap() error {
	return e.Wrapped
}

func pluginErr(stage string, t float64, err error) error {
	return &PluginError{Stage: stage, Time: t, Wrapped: err}
}
