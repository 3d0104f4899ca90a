package interstellar

import "math"

// DefaultReflectivity of a freshly deployed sail.
const DefaultReflectivity = 0.9

// SolarSail models thrust from stellar radiation pressure on a circular
// sail.
type SolarSail struct {
	SailMass          float64 // kg
	SailRadius        float64 // m
	Reflectivity      float64 // dimensionless, 0–1
	StellarLuminosity float64 // W
}

// NewSolarSail returns a sail with the default reflectivity, lit by a
// Sol-like star.
func NewSolarSail(sailMass, sailRadius float64) *SolarSail {
	return &SolarSail{
		SailMass:          sailMass,
		SailRadius:        sailRadius,
		Reflectivity:      DefaultReflectivity,
		StellarLuminosity: SolarLuminosity,
	}
}

// RadiationPressure1AU returns the radiation pressure this sail sees at
// 1 AU from its star, in Pa.
func (ss *SolarSail) RadiationPressure1AU() float64 {
	return (1 + ss.Reflectivity) * ss.StellarLuminosity / (4 * math.Pi * AU * AU * SpeedOfLight)
}

// idealPressure1AU is the 1 AU radiation pressure on a perfectly
// reflective sail, the reference the characteristic acceleration is
// defined against.
func (ss *SolarSail) idealPressure1AU() float64 {
	return 2 * ss.StellarLuminosity / (4 * math.Pi * AU * AU * SpeedOfLight)
}

// CharacteristicAcceleration returns the sail's reference acceleration at
// 1 AU for the given payload mass, in m/s².
//
// See Spieth & Zubrin, Ultra-Thin Solar Sails for Interstellar Travel,
// 1999.
func (ss *SolarSail) CharacteristicAcceleration(payloadMass float64) float64 {
	totalMass := ss.SailMass + payloadMass
	return ss.Reflectivity * ss.idealPressure1AU() * math.Pi * ss.SailRadius * ss.SailRadius / totalMass
}

// Acceleration returns the instantaneous acceleration at a signed distance
// from the star, in m/s². The thrust always points away from the star
// along the position axis. A maxAccel > 0 caps the magnitude: the sail is
// assumed partly furled to limit the acceleration.
//
// See page 94 of the Starflight Handbook, Mallove and Matloff.
func (ss *SolarSail) Acceleration(relPosition, payloadMass, maxAccel float64) float64 {
	totalMass := ss.SailMass + payloadMass
	accel := (1 + ss.Reflectivity) * ss.StellarLuminosity * ss.SailRadius * ss.SailRadius /
		(4 * SpeedOfLight * totalMass * relPosition * relPosition)
	if maxAccel > 0 {
		accel = math.Min(accel, math.Abs(maxAccel))
	}
	return accel * Sign(relPosition)
}

// FinalVelocity returns the asymptotic velocity reachable from rest at the
// given starting distance, in m/s. Only the magnitude of the distance
// matters.
func (ss *SolarSail) FinalVelocity(payloadMass, initialDistance float64) float64 {
	charAccel := ss.CharacteristicAcceleration(payloadMass)
	return 548e3 * math.Sqrt(charAccel/(math.Abs(initialDistance)/AU))
}
