package integrators

import "github.com/RenardDesNeiges/hopsim/internal/hybrid"

// emitter forwards accepted-step samples to the caller's StepFunc,
// either one per step or interpolated at a fixed spacing.
type emitter struct {
	out  hybrid.StepFunc
	step float64
	next float64
}

func newEmitter(out hybrid.StepFunc, step, t0 float64) *emitter {
	if out == nil {
		return nil
	}
	return &emitter{out: out, step: step, next: t0 + step}
}

// accepted emits the samples owed for a completed step.
func (e *emitter) accepted(seg segment) error {
	if e == nil {
		return nil
	}
	if e.step <= 0 {
		return e.out(seg.t1, seg.y1.Clone())
	}
	for e.next <= seg.t1 {
		if err := e.out(e.next, seg.interp(e.next)); err != nil {
			return err
		}
		e.next += e.step
	}
	return nil
}

// upTo emits interpolated samples strictly before tEnd, for the
// truncated step that ends at an event.
func (e *emitter) upTo(seg segment, tEnd float64) error {
	if e == nil || e.step <= 0 {
		return nil
	}
	for e.next < tEnd {
		if err := e.out(e.next, seg.interp(e.next)); err != nil {
			return err
		}
		e.next += e.step
	}
	return nil
}
