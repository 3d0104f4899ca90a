// Package interstellar models the kinematics and propellant economics of
// an interstellar spacecraft under several propulsion modes: reaction
// engines, solar sails, and a propellantless momentum-exchange (SWIMMER)
// drive. A mission is a sequence of maneuvers against one Starship; each
// maneuver mutates the ship's scalar state and appends to its log.
package interstellar

import (
	"errors"
	"fmt"
	"math"
	"os"

	kitlog "github.com/go-kit/kit/log"

	"github.com/QEDan/interstellar-mission-planning/integrator"
)

// Mission defaults.
const (
	// DefaultDestination is the distance to Proxima Centauri, in m.
	DefaultDestination = 4.244 * LightYear
	// DefaultElectricalPower is the hotel load drawn while a maneuver
	// generates electricity, in W.
	DefaultElectricalPower = 1.5e11
	// DefaultEfficiency of converting fusion energy to electricity.
	DefaultEfficiency = 0.7
	// DefaultMaxSailTime is the default sailing horizon, in s.
	DefaultMaxSailTime = 14 * Day
	// MaxVelocityRatio caps |velocity|/c: beyond it the kinematics here
	// stop being meaningful.
	MaxVelocityRatio = 0.5
)

const (
	electricityTolerance = 1e-6
	electricityMaxPasses = 100
)

// State is one mission log snapshot, SI units.
type State struct {
	Time     float64 // s
	Position float64 // m
	Velocity float64 // m/s
	FuelMass float64 // kg
}

// Starship owns the mission state: named engines, an optional solar sail
// and SWIMMER drive, the 1-D position/velocity/time tuple, and the
// append-only mission log. Maneuver methods validate their inputs before
// touching any state, so a failed maneuver leaves the ship as it was.
type Starship struct {
	PayloadMass         float64 // kg, grows as fusion by-products are retained
	Velocity            float64 // m/s, signed
	Position            float64 // m, signed
	Time                float64 // s
	DestinationDistance float64 // m
	ElectricalPower     float64 // W
	SolarSail           *SolarSail
	Swimmer             *Swimmer

	engines     map[string]*Engine
	engineOrder []string
	history     []State
	messages    []string
	logger      kitlog.Logger
}

// NewStarship returns a ship at the origin at rest with the given engines
// attached, mission defaults set, and log entry zero recorded.
func NewStarship(payloadMass float64, engines ...*Engine) *Starship {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	s := &Starship{
		PayloadMass:         payloadMass,
		DestinationDistance: DefaultDestination,
		ElectricalPower:     DefaultElectricalPower,
		engines:             make(map[string]*Engine),
		logger:              kitlog.With(logger, "subsys", "ship"),
	}
	for _, e := range engines {
		s.AddEngine(e)
	}
	s.LogEntry("")
	return s
}

// SetLogger changes the destination of maneuver log messages.
func (s *Starship) SetLogger(logger kitlog.Logger) {
	s.logger = logger
}

// AddEngine attaches an engine under its name. Re-adding a name replaces
// the engine but keeps its position in the fuel-draw order.
func (s *Starship) AddEngine(e *Engine) {
	if _, ok := s.engines[e.Name]; !ok {
		s.engineOrder = append(s.engineOrder, e.Name)
	}
	s.engines[e.Name] = e
}

// Engine returns the named engine, if attached.
func (s *Starship) Engine(name string) (*Engine, bool) {
	e, ok := s.engines[name]
	return e, ok
}

// TotalMass returns payload plus fuel plus attached sail and pusher
// masses, in kg.
func (s *Starship) TotalMass() float64 {
	total := s.PayloadMass + s.FuelMass()
	if s.SolarSail != nil {
		total += s.SolarSail.SailMass
	}
	if s.Swimmer != nil {
		total += s.Swimmer.PusherMass()
	}
	return total
}

// FuelMass returns the fuel remaining across all engines, in kg.
func (s *Starship) FuelMass() float64 {
	var mass float64
	for _, e := range s.engines {
		mass += e.FuelMass
	}
	return mass
}

// LogEntry appends the current state and a message to the mission log.
func (s *Starship) LogEntry(message string) {
	s.history = append(s.history, State{
		Time:     s.Time,
		Position: s.Position,
		Velocity: s.Velocity,
		FuelMass: s.FuelMass(),
	})
	s.messages = append(s.messages, message)
	if message != "" {
		s.logger.Log("year", fmt.Sprintf("%0.1f", s.Time/Year), "msg", message)
	}
}

// History returns the mission log snapshots in order.
func (s *Starship) History() []State {
	return s.history
}

// Messages returns the log messages, parallel to History.
func (s *Starship) Messages() []string {
	return s.messages
}

// LogStatus emits the current state on the ship's logger.
func (s *Starship) LogStatus() {
	s.logger.Log("year", fmt.Sprintf("%0.1f", s.Time/Year),
		"position", fmt.Sprintf("%0.4e ly", s.Position/LightYear),
		"velocity", fmt.Sprintf("%0.4e c", s.Velocity/SpeedOfLight),
		"fuel", fmt.Sprintf("%0.4e kg", s.FuelMass()))
}

// ParseLogs projects the mission log into four parallel sequences:
// position in light-years, velocity in units of c, fuel mass in kg, time
// in years.
func (s *Starship) ParseLogs() (positions, velocities, fuels, times []float64) {
	positions = make([]float64, len(s.history))
	velocities = make([]float64, len(s.history))
	fuels = make([]float64, len(s.history))
	times = make([]float64, len(s.history))
	for i, log := range s.history {
		positions[i] = log.Position / LightYear
		velocities[i] = log.Velocity / SpeedOfLight
		fuels[i] = log.FuelMass
		times[i] = log.Time / Year
	}
	return
}

// GenerateElectricity draws energyNeeded joules from the engines by
// converting fuel through the ³He + ²H → p + ⁴He reaction at the given
// efficiency (DefaultEfficiency if non-positive). Reaction products stay
// aboard as payload mass. The fuel loss is distributed across engines in
// attachment order: each engine that can afford the per-engine quota pays
// it, and the quota halves after every full pass until the remaining
// deficit is negligible.
func (s *Starship) GenerateElectricity(energyNeeded, efficiency float64) error {
	if efficiency <= 0 {
		efficiency = DefaultEfficiency
	}
	numReactions := energyNeeded / (efficiency * FusionEnergy)
	required := numReactions * (Mass3He + Mass2H)
	if s.FuelMass() < required {
		return InsufficientFuelError{Requested: required, Available: s.FuelMass()}
	}
	gained := numReactions * (MassProton + Mass4He)

	remaining := required
	quota := required / float64(len(s.engineOrder))
	idx, iters := 0, 0
	for remaining > electricityTolerance*required {
		e := s.engines[s.engineOrder[idx]]
		if e.FuelMass > quota {
			e.FuelMass -= quota
			remaining -= quota
		}
		idx++
		iters++
		if idx >= len(s.engineOrder) {
			idx = 0
			quota /= 2
		}
		if iters > electricityMaxPasses*len(s.engineOrder) {
			return StuckLoopError{Iterations: iters, Remaining: remaining}
		}
	}
	s.PayloadMass += gained
	return nil
}

// AccelerateWithFuel burns exactly fuelMass on the named engine at the
// given constant acceleration (StdGravity if non-positive) along
// direction, and returns the new velocity. The burn fails whole: an
// insufficient reservoir or a relativistic result leaves the ship
// untouched.
func (s *Starship) AccelerateWithFuel(engineName string, fuelMass float64, direction int, accel float64) (float64, error) {
	engine, ok := s.engines[engineName]
	if !ok {
		return s.Velocity, fmt.Errorf("no engine named %q", engineName)
	}
	if accel <= 0 {
		accel = StdGravity
	}
	deltaV, err := engine.DeltaV(fuelMass, s.TotalMass())
	if err != nil {
		return s.Velocity, err
	}
	newVelocity := s.Velocity + float64(direction)*deltaV
	if math.Abs(newVelocity)/SpeedOfLight > MaxVelocityRatio {
		return s.Velocity, RelativisticSpeedError{Velocity: newVelocity}
	}
	if _, err = engine.BurnFuel(fuelMass, s.TotalMass()); err != nil {
		return s.Velocity, err
	}

	deltaT := math.Abs(deltaV) / accel
	startYear := s.Time / Year
	s.Time += deltaT
	s.Position += s.Velocity*deltaT + float64(direction)*0.5*accel*deltaT*deltaT
	s.Velocity = newVelocity
	s.logManeuver(startYear, accel, deltaT)
	return s.Velocity, nil
}

// AccelerateToVelocity burns whatever fuel the named engine needs to reach
// targetVelocity exactly, at the given constant acceleration (StdGravity
// if non-positive) along direction. When generateElectricity is set, the
// hotel load for the burn duration is drawn as well. Returns the new
// velocity.
func (s *Starship) AccelerateToVelocity(engineName string, targetVelocity float64, direction int, accel float64, generateElectricity bool) (float64, error) {
	engine, ok := s.engines[engineName]
	if !ok {
		return s.Velocity, fmt.Errorf("no engine named %q", engineName)
	}
	if accel <= 0 {
		accel = StdGravity
	}
	if math.Abs(targetVelocity)/SpeedOfLight > MaxVelocityRatio {
		return s.Velocity, RelativisticSpeedError{Velocity: targetVelocity}
	}
	if _, err := engine.SetTargetDeltaV(s.Velocity-targetVelocity, s.TotalMass()); err != nil {
		return s.Velocity, err
	}

	deltaV := targetVelocity - s.Velocity
	deltaT := math.Abs(deltaV) / accel
	startYear := s.Time / Year
	s.Time += deltaT
	s.Position += s.Velocity*deltaT + float64(direction)*0.5*accel*deltaT*deltaT
	s.Velocity = targetVelocity
	if generateElectricity {
		if err := s.GenerateElectricity(s.ElectricalPower*deltaT, DefaultEfficiency); err != nil {
			return s.Velocity, err
		}
	}
	s.logManeuver(startYear, accel, deltaT)
	return s.Velocity, nil
}

func (s *Starship) logManeuver(startYear, accel, deltaT float64) {
	s.LogEntry(fmt.Sprintf(
		"year %0.1f - Acceleration: %0.4f g for %0.2e years. New velocity is %0.2e c. %0.2e kg of fuel remaining.",
		startYear, accel/StdGravity, deltaT/Year, s.Velocity/SpeedOfLight, s.FuelMass()))
}

// Cruise coasts the given distance along the current direction of motion.
// The ship must be moving.
func (s *Starship) Cruise(distance float64, generateElectricity bool) error {
	if s.Velocity == 0 {
		return ErrNotMoving
	}
	deltaT := math.Abs(distance / s.Velocity)
	if generateElectricity {
		if err := s.GenerateElectricity(s.ElectricalPower*deltaT, DefaultEfficiency); err != nil {
			return err
		}
	}
	startYear := s.Time / Year
	s.Position += distance * Sign(s.Velocity)
	s.Time += deltaT
	s.LogEntry(fmt.Sprintf("year %0.1f - Cruise: %0.2e years to complete. Distance=%0.2e lightyears",
		startYear, deltaT/Year, distance/LightYear))
	return nil
}

// Wait passes the given duration with no thrust, coasting at the current
// velocity.
func (s *Starship) Wait(duration float64, generateElectricity bool) error {
	if generateElectricity {
		if err := s.GenerateElectricity(s.ElectricalPower*duration, DefaultEfficiency); err != nil {
			return err
		}
	}
	startYear := s.Time / Year
	distance := s.Velocity * duration
	s.Time += duration
	s.Position += distance
	s.LogEntry(fmt.Sprintf("year %0.1f - Waited: %0.2e years. Distance=%0.2e lightyears",
		startYear, duration/Year, distance/LightYear))
	return nil
}

// Sail rides the attached solar sail's radiation pressure for up to
// maxSailTime seconds (DefaultMaxSailTime if non-positive). targetVelocity
// is a pointer so that nil means "infer": decelerate to rest when moving
// toward the star, otherwise accelerate to 90% of the maximum achievable
// velocity away from it. A maxAccel > 0 partially furls the sail to cap
// the acceleration magnitude. One log entry is appended per accepted
// integration step, plus a final summary.
func (s *Starship) Sail(targetVelocity *float64, positionOfStar, maxAccel, maxSailTime float64, generateElectricity bool) error {
	if s.SolarSail == nil {
		return ErrNoSolarSail
	}
	if maxSailTime <= 0 {
		maxSailTime = DefaultMaxSailTime
	}
	relPosition := s.Position - positionOfStar
	payloadMass := s.TotalMass() - s.SolarSail.SailMass
	maxVelocity := s.SolarSail.FinalVelocity(payloadMass, relPosition)
	var target float64
	if targetVelocity == nil {
		if Sign(relPosition) == -Sign(s.Velocity) && s.Velocity != 0 {
			// Moving toward the star: brake to rest.
			target = 0
		} else {
			target = 0.90 * maxVelocity * Sign(relPosition)
		}
	} else {
		target = *targetVelocity
	}
	if math.Abs(target) > math.Abs(maxVelocity) {
		return UnreachableVelocityError{Target: target, Max: maxVelocity}
	}

	sail := s.SolarSail
	totalMass := s.TotalMass()
	eom := func(t float64, y, dydt []float64) error {
		if !isFinite(y[0]) || !isFinite(y[1]) {
			return ErrNumericalInstability
		}
		dydt[0] = y[1]
		dydt[1] = sail.Acceleration(y[0], totalMass-sail.SailMass, maxAccel)
		return nil
	}
	sol, err := integrator.NewRK45().Solve(eom, 0, maxSailTime, []float64{relPosition, s.Velocity})
	if err != nil {
		if errors.Is(err, integrator.ErrDiverged) {
			return ErrNumericalInstability
		}
		return err
	}

	initialPosition := s.Position
	var sailingTime float64
	for i := 1; i < sol.Len(); i++ {
		t, y := sol.At(i)
		tPrev, yPrev := sol.At(i - 1)
		deltaT := t - tPrev
		s.Time += deltaT
		s.Position = initialPosition + y[0] - relPosition
		s.Velocity = y[1]
		accel := (y[1] - yPrev[1]) / deltaT
		s.LogEntry(fmt.Sprintf("year %0.1f - Sailing with velocity %g m/s with acceleration %gg.",
			s.Time/Year, s.Velocity, accel/StdGravity))
		sailingTime = t
		if target == 0 && Sign(s.Velocity) != Sign(yPrev[1]) {
			// Brake complete, within one integration step of rest.
			s.Velocity = 0
			break
		}
		if Sign(relPosition) == Sign(s.Velocity) && math.Abs(s.Velocity) >= math.Abs(target) {
			break
		}
		if generateElectricity {
			if err := s.GenerateElectricity(s.ElectricalPower*deltaT, DefaultEfficiency); err != nil {
				return err
			}
		}
	}
	s.LogEntry(fmt.Sprintf(
		"year %0.1f - Finished sailing. velocity %g m/s. Traveling at %0.1f%% of maximum sail velocity. Sailing time was %g days.",
		s.Time/Year, s.Velocity, s.Velocity/maxVelocity*100, sailingTime/Day))
	return nil
}

// Swim runs the attached SWIMMER drive at powerDelivered watts for
// swimTime seconds. direction selects thrust (+1) along or (-1) against
// the direction of motion; the drive brakes whenever the thrust opposes
// the instantaneous velocity. One log entry is appended per accepted
// integration step, plus a final summary.
func (s *Starship) Swim(powerDelivered, swimTime float64, direction int, generateElectricity bool) error {
	if s.Swimmer == nil {
		return ErrNoSwimmer
	}
	if swimTime <= 0 {
		return fmt.Errorf("swim time must be positive, got %g s", swimTime)
	}

	swimmer := s.Swimmer
	totalMass := s.TotalMass()
	eom := func(t float64, y, dydt []float64) error {
		if !isFinite(y[0]) || !isFinite(y[1]) {
			return ErrNumericalInstability
		}
		vel := y[1]
		braking := Sign(vel) != float64(direction)
		accel := swimmer.Acceleration(powerDelivered, math.Abs(vel), totalMass, braking)
		axis := Sign(vel)
		if axis == 0 {
			axis = float64(direction)
		}
		dydt[0] = vel
		dydt[1] = axis * accel
		return nil
	}
	sol, err := integrator.NewRK45().Solve(eom, 0, swimTime, []float64{s.Position, s.Velocity})
	if err != nil {
		if errors.Is(err, integrator.ErrDiverged) {
			return ErrNumericalInstability
		}
		return err
	}

	var swimmingTime float64
	for i := 1; i < sol.Len(); i++ {
		t, y := sol.At(i)
		tPrev, yPrev := sol.At(i - 1)
		deltaT := t - tPrev
		s.Time += deltaT
		s.Position = y[0]
		s.Velocity = y[1]
		accel := (y[1] - yPrev[1]) / deltaT
		s.LogEntry(fmt.Sprintf("year %0.1f - Swimming with velocity %g m/s with acceleration %gg.",
			s.Time/Year, s.Velocity, accel/StdGravity))
		swimmingTime = t
		if generateElectricity {
			if err := s.GenerateElectricity(s.ElectricalPower*deltaT, DefaultEfficiency); err != nil {
				return err
			}
		}
	}
	s.LogEntry(fmt.Sprintf("year %0.1f - Finished swimming. velocity %g m/s. Swimming time was %g days.",
		s.Time/Year, s.Velocity, swimmingTime/Day))
	return nil
}
