package interstellar

import "math"

// DefaultExhaustVelocity is the exhaust velocity assumed for a fusion
// torch when none is given, in m/s.
const DefaultExhaustVelocity = 500e3

// Engine is one named reaction-mass thrust channel. It assumes constant
// acceleration and nonrelativistic speeds.
type Engine struct {
	Name            string
	FuelMass        float64 // kg, non-increasing across burns
	ExhaustVelocity float64 // m/s, constant after construction
}

// NewEngine returns a named engine. A non-positive exhaustVelocity selects
// DefaultExhaustVelocity.
func NewEngine(name string, fuelMass, exhaustVelocity float64) *Engine {
	if exhaustVelocity <= 0 {
		exhaustVelocity = DefaultExhaustVelocity
	}
	return &Engine{Name: name, FuelMass: fuelMass, ExhaustVelocity: exhaustVelocity}
}

// DeltaV returns the change in velocity from burning burntFuelMass for
// payload starshipMass without committing the burn (Tsiolkovsky rocket
// equation).
func (e *Engine) DeltaV(burntFuelMass, starshipMass float64) (float64, error) {
	if burntFuelMass > e.FuelMass {
		return 0, InsufficientFuelError{Requested: burntFuelMass, Available: e.FuelMass}
	}
	totalMass := starshipMass + e.FuelMass
	return e.ExhaustVelocity * math.Log(totalMass/(totalMass-burntFuelMass)), nil
}

// BurnFuel commits a burn of burntFuelMass and returns the achieved Δv.
// An insufficient reservoir fails the burn and leaves the engine untouched.
func (e *Engine) BurnFuel(burntFuelMass, starshipMass float64) (float64, error) {
	deltaV, err := e.DeltaV(burntFuelMass, starshipMass)
	if err != nil {
		return 0, err
	}
	e.FuelMass -= burntFuelMass
	return deltaV, nil
}

// SetTargetDeltaV burns exactly the fuel needed to change the velocity of
// starshipMass by deltaV and returns the fuel mass spent. The sufficiency
// check happens before any fuel is drawn.
func (e *Engine) SetTargetDeltaV(deltaV, starshipMass float64) (float64, error) {
	finalMass := starshipMass * math.Exp(-math.Abs(deltaV)/e.ExhaustVelocity)
	burnt := starshipMass - finalMass
	if _, err := e.BurnFuel(burnt, starshipMass); err != nil {
		return 0, err
	}
	return burnt, nil
}
