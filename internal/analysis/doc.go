// Package analysis inspects box model behavior beyond plain trajectories:
//
//   - [Modes]: relaxation modes of the rate matrix and their e-folding times
//   - [Spectrum] and [DominantPeriod]: frequency content of a detrended series
//   - [PhasePortrait]: one box plotted against another as ASCII
//
// A conserving topology always has one zero mode, the total mass; every
// other mode decays:
//
//	modes, _ := analysis.Modes(topo.Rates())
//	for _, m := range modes[1:] {
//	    fmt.Println(m.Timescale)
//	}
package analysis
