// Package carbon implements the box model of the carbon cycle: reference
// topologies, the flux to rate coefficient derivation, and the forced linear
// system dM/dt = K·M evaluated by the integrators.
//
// Box order is fixed by each [Topology]; nothing is selected from the length
// of a mass vector.
package carbon
