package interstellar

// Physical constants, SI units.
const (
	// SpeedOfLight in m/s.
	SpeedOfLight = 299792458.0
	// GravConst is the gravitational constant in m³/(kg·s²).
	GravConst = 6.674e-11
	// SolarMass in kg.
	SolarMass = 1.98847e30
	// SolarLuminosity in W.
	SolarLuminosity = 3.846e26
	// StdGravity is the standard gravity in m/s².
	StdGravity = 9.81
	// AU is the astronomical unit in m.
	AU = 1.495978707e11
	// LightYear in m.
	LightYear = 9.4607304725808e15
	// Day in s.
	Day = 86400.0
	// Year is the Julian year in s.
	Year = 365.25 * Day
	// MeV in J.
	MeV = 1.602176634e-13
)

// Bookkeeping for the ³He + ²H → p + ⁴He reaction used for on-board
// electricity generation. Reactant and product masses are derived from
// their rest energies in MeV/c².
const (
	// FusionEnergy is the energy released per reaction, in J.
	FusionEnergy = 18.354 * MeV

	Mass3He    = 2809.41 * MeV / (SpeedOfLight * SpeedOfLight)
	Mass2H     = 1876.12 * MeV / (SpeedOfLight * SpeedOfLight)
	MassProton = 938.27 * MeV / (SpeedOfLight * SpeedOfLight)
	Mass4He    = 3728.40 * MeV / (SpeedOfLight * SpeedOfLight)
)
