package interstellar

import "math"

// Defaults describing the pusher plate and the ambient interstellar
// medium: protons at 0.07 cm⁻³.
const (
	DefaultPusherArealDensity = 1.0              // kg/m²
	ProtonMass                = 1.67262192369e-27 // kg
	DefaultIonDensity         = 0.07e6            // m⁻³
)

// Swimmer is a SWIMMER drive: an electrostatically charged pusher plate
// exchanging momentum with interstellar medium ions. The drive is
// propellantless and needs only electrical power, which can be beamed or
// produced on board.
//
// Reference: Brisbin, Spacecraft With Interstellar Medium Momentum
// Exchange Reactions, https://arxiv.org/abs/1808.02019
type Swimmer struct {
	PusherArea         float64 // m², mass can be shed by reducing it
	PusherArealDensity float64 // kg/m²
	IonMass            float64 // kg
	IonDensity         float64 // m⁻³
}

// NewSwimmer returns a swimmer with the given plate area, riding the
// default interstellar medium (overridable through conf.toml).
func NewSwimmer(pusherArea float64) *Swimmer {
	sw := &Swimmer{
		PusherArea:         pusherArea,
		PusherArealDensity: DefaultPusherArealDensity,
		IonMass:            ProtonMass,
		IonDensity:         DefaultIonDensity,
	}
	if d := impConfig().ionDensity; d > 0 {
		sw.IonDensity = d
	}
	return sw
}

// ShedArea removes the specified amount of area from the pusher plate to
// shed mass. The caller keeps the area non-negative.
func (sw *Swimmer) ShedArea(deltaArea float64) {
	sw.PusherArea -= deltaArea
}

// PusherMass returns the mass of the pusher plate, in kg.
func (sw *Swimmer) PusherMass() float64 {
	return sw.PusherArea * sw.PusherArealDensity
}

// Acceleration returns the drive's acceleration along the direction of
// motion, in m/s². absVelocity must be a magnitude; braking reverses the
// thrust. The force solves the energy/momentum balance of the intercepted
// ion flux.
func (sw *Swimmer) Acceleration(powerDelivered, absVelocity, totalMass float64, braking bool) float64 {
	sign := 1.0
	if braking {
		sign = -1.0
	}
	exposure := sw.PusherArea * sw.IonMass * sw.IonDensity * absVelocity
	force := sign*math.Sqrt(exposure*(2*powerDelivered+exposure*absVelocity*absVelocity)) -
		exposure*absVelocity
	return force / totalMass
}
