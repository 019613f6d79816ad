package record

import (
	"context"
	"time"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
)

// Pacer wraps another recorder and delays each sample until wall-clock
// time catches up with sample time scaled by Factor, so a downstream
// view plays the run back in (scaled) real time. A Factor of 0 or less
// disables pacing entirely; headless runs pay nothing.
//
// The wait is a plain cancellable sleep local to the recorder; it never
// blocks anything but the single simulation goroutine that owns it.
type Pacer struct {
	Next   hybrid.Recorder
	Factor float64 // wall seconds per simulated second

	ctx   context.Context
	start time.Time
	base  float64 // sample time of the first sample
	begun bool
}

func NewPacer(ctx context.Context, next hybrid.Recorder, factor float64) *Pacer {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Pacer{Next: next, Factor: factor, ctx: ctx}
}

func (p *Pacer) Record(s hybrid.Sample) error {
	if p.Factor > 0 {
		if !p.begun {
			p.start = time.Now()
			p.base = s.T
			p.begun = true
		} else {
			target := time.Duration((s.T - p.base) * p.Factor * float64(time.Second))
			if wait := target - time.Since(p.start); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-p.ctx.Done():
					timer.Stop()
					return p.ctx.Err()
				case <-timer.C:
				}
			}
		}
	}
	if p.Next == nil {
		return nil
	}
	return p.Next.Record(s)
}
