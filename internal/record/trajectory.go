package record

import "github.com/RenardDesNeiges/hopsim/internal/hybrid"

// Trajectory is an in-memory recorder that keeps every sample of a run.
type Trajectory struct {
	Samples []hybrid.Sample
}

func NewTrajectory() *Trajectory {
	return &Trajectory{Samples: make([]hybrid.Sample, 0, 1024)}
}

func (tr *Trajectory) Record(s hybrid.Sample) error {
	tr.Samples = append(tr.Samples, s)
	return nil
}

func (tr *Trajectory) Len() int { return len(tr.Samples) }

// Times returns the sample times in order.
func (tr *Trajectory) Times() []float64 {
	ts := make([]float64, len(tr.Samples))
	for i, s := range tr.Samples {
		ts[i] = s.T
	}
	return ts
}

// Component returns the i-th continuous state component over time.
func (tr *Trajectory) Component(i int) []float64 {
	vs := make([]float64, len(tr.Samples))
	for j, s := range tr.Samples {
		if i < len(s.Y) {
			vs[j] = s.Y[i]
		}
	}
	return vs
}

// EventSamples returns only the jump samples, in order.
func (tr *Trajectory) EventSamples() []hybrid.Sample {
	var ev []hybrid.Sample
	for _, s := range tr.Samples {
		if s.Event {
			ev = append(ev, s)
		}
	}
	return ev
}

// Multi fans samples out to several recorders.
type Multi []hybrid.Recorder

func (m Multi) Record(s hybrid.Sample) error {
	for _, r := range m {
		if err := r.Record(s); err != nil {
			return err
		}
	}
	return nil
}
