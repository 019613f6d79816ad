// Package record provides output recorders for simulation runs:
// in-memory trajectories, a real-time pacing wrapper for playback, a
// fan-out combinator, and a batched SQLite sink. Recorders observe the
// run; they never influence it.
package record
