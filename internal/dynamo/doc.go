// Package dynamo provides core primitives shared by the integrators and the
// box model.
//
//   - [State]: vector of [Scalar] values, real or complex
//   - [Func]: right-hand side of dy/dt = f(t, y)
//   - [Stepper]: one fixed step of a numerical method
//   - [Trajectory]: the (T, Y) output of a run
//   - [Metric]: observer over a finished trajectory
//
// Errors follow a small taxonomy: [ShapeError], [DomainError] and
// [ConfigError], each matching its sentinel through errors.Is.
//
// # Example
//
//	f := func(t float64, y dynamo.State[float64]) (dynamo.State[float64], error) {
//		return dynamo.State[float64]{-y[0]}, nil
//	}
//	tr, err := integrators.Integrate(ctx, integrators.NewRK4[float64](), f, 0, 1, dynamo.State[float64]{1}, 1000)
package dynamo
