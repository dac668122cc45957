// Package viz renders box model runs in the terminal.
//
//   - [Chart] and [Overlay]: asciigraph line charts of mass series
//   - [Replay]: a Bubble Tea program that steps through a stored run
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	[ ]   - Step back/forward one sample
//	< >   - Halve/double playback speed
//	Tab   - Cycle the charted box
//	R     - Rewind to the first sample
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
