// Package viz renders recorded runs in the terminal: asciigraph time
// series, a braille-canvas scene of the hopper, and a bubbletea
// playback view. Visualization consumes trajectories after the fact
// and never touches the simulation loop.
package viz
