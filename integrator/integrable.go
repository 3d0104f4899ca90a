// Package integrator provides adaptive numerical propagation of ordinary
// differential equations for mission simulation.
package integrator

// Func computes the derivative dydt of the state y at time t. Returning a
// non-nil error aborts the propagation.
type Func func(t float64, y, dydt []float64) error

// Solution holds every accepted sample of a propagation, including the
// initial condition.
type Solution struct {
	Times  []float64
	States [][]float64
}

// Len returns the number of accepted samples.
func (s Solution) Len() int {
	return len(s.Times)
}

// At returns the i-th sample time and state.
func (s Solution) At(i int) (float64, []float64) {
	return s.Times[i], s.States[i]
}
