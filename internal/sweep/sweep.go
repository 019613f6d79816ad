// Package sweep runs families of simulations across a parameter range,
// one goroutine per run. Models and integrators are stateless, so the
// runs share nothing but the read-only base vectors.
package sweep

import (
	"context"
	"sync"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
	"github.com/RenardDesNeiges/hopsim/internal/record"
)

// Point is the outcome of one run of a sweep.
type Point struct {
	Value float64 // the swept parameter value
	Res   *hybrid.Result
	Traj  *record.Trajectory // nil unless the runner records
}

// Runner sweeps one slot of the parameter vector across a set of
// values.
type Runner struct {
	Model  hybrid.Model
	Excite hybrid.Excitation

	// NewIntegrator builds a fresh integrator per run; integrators are
	// cheap and this keeps any internal scratch state per goroutine.
	NewIntegrator func() hybrid.Integrator

	Y0    hybrid.State
	Z0    hybrid.Discrete
	P0    hybrid.Params
	Index int // parameter slot to sweep

	// Record attaches a trajectory recorder to every run, for analyses
	// that need more than the termination record.
	Record bool
}

// Run simulates once per value. Runs execute concurrently; the first
// error wins and discards the batch.
func (r *Runner) Run(ctx context.Context, values []float64, cfg hybrid.Config) ([]Point, error) {
	points := make([]Point, len(values))
	errs := make([]error, len(values))

	var wg sync.WaitGroup
	for i, v := range values {
		wg.Add(1)
		go func(idx int, val float64) {
			defer wg.Done()

			p := r.P0.Clone()
			p[r.Index] = val

			sim := hybrid.New(r.Model, r.NewIntegrator(), r.Excite)
			var tr *record.Trajectory
			if r.Record {
				tr = record.NewTrajectory()
				sim.SetRecorder(tr)
			}
			res, err := sim.Run(ctx, r.Y0.Clone(), r.Z0.Clone(), p, cfg)
			points[idx] = Point{Value: val, Res: res, Traj: tr}
			errs[idx] = err
		}(i, v)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return points, nil
}

// Range spaces n values evenly over [lo, hi] inclusive.
func Range(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	vs := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range vs {
		vs[i] = lo + float64(i)*step
	}
	return vs
}
