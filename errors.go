package interstellar

import (
	"errors"
	"fmt"
)

var (
	// ErrNotMoving is returned by Cruise when the ship has no velocity.
	ErrNotMoving = errors.New("the starship is not moving, cannot cruise")
	// ErrNoSolarSail is returned by Sail when no sail is attached.
	ErrNoSolarSail = errors.New("this starship has no solar sail, cannot sail")
	// ErrNoSwimmer is returned by Swim when no SWIMMER drive is attached.
	ErrNoSwimmer = errors.New("this starship has no SWIMMER engine, cannot swim")
	// ErrNumericalInstability is returned when an equation of motion
	// observes a non-finite position or velocity.
	ErrNumericalInstability = errors.New("non-finite values in equation of motion")
)

// InsufficientFuelError reports a burn or electricity draw exceeding the
// available fuel. All masses in kg.
type InsufficientFuelError struct {
	Requested float64
	Available float64
}

func (e InsufficientFuelError) Error() string {
	return fmt.Sprintf("not enough fuel for this maneuver: requested %g kg of %g kg", e.Requested, e.Available)
}

// UnreachableVelocityError reports a sail target beyond the velocity
// achievable from the current distance. Velocities in m/s.
type UnreachableVelocityError struct {
	Target float64
	Max    float64
}

func (e UnreachableVelocityError) Error() string {
	return fmt.Sprintf("unable to achieve velocity %gc through sailing, maximum achievable velocity is %gc",
		e.Target/SpeedOfLight, e.Max/SpeedOfLight)
}

// RelativisticSpeedError reports a maneuver that would push the ship past
// the supported kinematic regime.
type RelativisticSpeedError struct {
	Velocity float64 // m/s
}

func (e RelativisticSpeedError) Error() string {
	return fmt.Sprintf("velocity %gc is relativistic, this regime is not supported", e.Velocity/SpeedOfLight)
}

// StuckLoopError reports that the electricity-generation fuel distribution
// did not converge within its iteration budget.
type StuckLoopError struct {
	Iterations int
	Remaining  float64 // kg of fuel still to draw
}

func (e StuckLoopError) Error() string {
	return fmt.Sprintf("stuck drawing fuel from engines for electricity after %d iterations (%g kg remaining)",
		e.Iterations, e.Remaining)
}
