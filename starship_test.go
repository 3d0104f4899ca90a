package interstellar

import (
	"errors"
	"math"
	"testing"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/floats"
)

const (
	testFuelMass    = 1.0e10
	testPayloadMass = 50.0
)

func testShip() *Starship {
	s := NewStarship(testPayloadMass, NewEngine("main", testFuelMass, 500e3))
	s.SetLogger(kitlog.NewNopLogger())
	return s
}

// testSail is sized for carbon nanotube sheets at 3e-5 kg/m².
func testSail() *SolarSail {
	const arealDensity = 0.00003
	const radius = 6000e3
	sail := NewSolarSail(radius*radius*math.Pi*arealDensity, radius)
	sail.Reflectivity = 0.98
	return sail
}

func checkLogParallel(t *testing.T, s *Starship) {
	t.Helper()
	if len(s.History()) != len(s.Messages()) {
		t.Fatalf("history has %d entries but messages has %d", len(s.History()), len(s.Messages()))
	}
}

func TestStarshipLogEntry(t *testing.T) {
	s := testShip()
	s.LogEntry("test1")
	s.LogEntry("test2")
	if len(s.Messages()) != 3 || len(s.History()) != 3 {
		t.Fatalf("expected 3 log entries, got %d messages and %d states", len(s.Messages()), len(s.History()))
	}
	if s.Messages()[1] != "test1" {
		t.Fatalf("message 1 = %q", s.Messages()[1])
	}
	if s.History()[0].FuelMass != testFuelMass {
		t.Fatalf("entry 0 fuel = %g kg", s.History()[0].FuelMass)
	}
}

func TestStarshipMasses(t *testing.T) {
	s := testShip()
	if s.FuelMass() != testFuelMass {
		t.Fatalf("fuel mass = %g kg", s.FuelMass())
	}
	if s.TotalMass() != testPayloadMass+testFuelMass {
		t.Fatalf("total mass = %g kg", s.TotalMass())
	}
	s.SolarSail = testSail()
	s.Swimmer = NewSwimmer(2.0e19)
	want := testPayloadMass + testFuelMass + s.SolarSail.SailMass + s.Swimmer.PusherMass()
	if s.TotalMass() != want {
		t.Fatalf("total mass with sail and swimmer = %g kg, expected %g", s.TotalMass(), want)
	}
	if _, ok := s.Engine("main"); !ok {
		t.Fatal("main engine not attached")
	}
	if _, ok := s.Engine("aux"); ok {
		t.Fatal("phantom engine attached")
	}
}

func TestGenerateElectricity(t *testing.T) {
	s := testShip()
	initialPayload := s.PayloadMass
	initialFuel := s.FuelMass()
	if err := s.GenerateElectricity(s.ElectricalPower*Year, 0); err != nil {
		t.Fatalf("err: %+v", err)
	}
	if s.PayloadMass <= initialPayload {
		t.Fatal("payload mass did not grow from retained reaction products")
	}
	if s.FuelMass() >= initialFuel {
		t.Fatal("fuel mass did not shrink")
	}
	defect := (initialFuel + initialPayload) - (s.FuelMass() + s.PayloadMass)
	if defect <= 0 {
		t.Fatalf("mass defect = %g kg, expected > 0", defect)
	}
	// Retained mass over spent fuel follows the reaction stoichiometry.
	gained := s.PayloadMass - initialPayload
	lost := initialFuel - s.FuelMass()
	ratio := (MassProton + Mass4He) / (Mass3He + Mass2H)
	if !floats.EqualWithinRel(gained/lost, ratio, 1e-9) {
		t.Fatalf("gained/lost = %g, expected %g", gained/lost, ratio)
	}
}

func TestGenerateElectricityMultiEngine(t *testing.T) {
	build := func() *Starship {
		s := NewStarship(testPayloadMass,
			NewEngine("a", 1e5, 500e3),
			NewEngine("b", 1e3, 500e3),
			NewEngine("c", 1e5, 500e3))
		s.SetLogger(kitlog.NewNopLogger())
		return s
	}
	s1, s2 := build(), build()
	// Roughly 1e4 kg of fuel, so engine b cannot pay the even share.
	energy := 1e4 / 8.354e-27 * (DefaultEfficiency * FusionEnergy)
	if err := s1.GenerateElectricity(energy, 0); err != nil {
		t.Fatalf("err: %+v", err)
	}
	if err := s2.GenerateElectricity(energy, 0); err != nil {
		t.Fatalf("err: %+v", err)
	}
	for _, name := range []string{"a", "b", "c"} {
		e1, _ := s1.Engine(name)
		e2, _ := s2.Engine(name)
		if e1.FuelMass != e2.FuelMass {
			t.Fatalf("engine %s drained nondeterministically: %g vs %g", name, e1.FuelMass, e2.FuelMass)
		}
		if e1.FuelMass < 0 {
			t.Fatalf("engine %s fuel went negative: %g", name, e1.FuelMass)
		}
	}
	ea, _ := s1.Engine("a")
	eb, _ := s1.Engine("b")
	if eb.FuelMass/1e3 < ea.FuelMass/1e5 {
		t.Fatal("the poor engine was drained harder than the rich ones")
	}
}

func TestGenerateElectricityInsufficientFuel(t *testing.T) {
	s := NewStarship(testPayloadMass, NewEngine("main", 1.0, 500e3))
	s.SetLogger(kitlog.NewNopLogger())
	err := s.GenerateElectricity(s.ElectricalPower*100*Year, 0)
	if err == nil {
		t.Fatal("expected an error")
	}
	var insufficient InsufficientFuelError
	if !errors.As(err, &insufficient) {
		t.Fatalf("unexpected error type: %+v", err)
	}
	if s.FuelMass() != 1.0 || s.PayloadMass != testPayloadMass {
		t.Fatal("failed generation mutated the ship")
	}
}

func TestAccelerateWithFuel(t *testing.T) {
	for _, fraction := range []float64{0.1, 0.5, 0.9} {
		for _, direction := range []int{1, -1} {
			s := testShip()
			velocity, err := s.AccelerateWithFuel("main", fraction*testFuelMass, direction, 0)
			if err != nil {
				t.Fatalf("fraction %g direction %d: %+v", fraction, direction, err)
			}
			if math.Abs(velocity)/SpeedOfLight >= 0.5 {
				t.Fatalf("velocity = %g c", velocity/SpeedOfLight)
			}
			if !floats.EqualWithinRel(s.FuelMass(), (1-fraction)*testFuelMass, 0.01) {
				t.Fatalf("fuel mass = %g kg after burning %g of it", s.FuelMass(), fraction)
			}
			if s.Time <= 0 {
				t.Fatal("no time elapsed")
			}
			if float64(direction)*s.Position <= 0 {
				t.Fatalf("position = %g m for direction %d", s.Position, direction)
			}
			checkLogParallel(t, s)
		}
	}
}

func TestAccelerateToVelocity(t *testing.T) {
	for _, target := range []float64{0.001, 0.01, 0.02} {
		for _, direction := range []int{1, -1} {
			s := testShip()
			want := float64(direction) * target * SpeedOfLight
			velocity, err := s.AccelerateToVelocity("main", want, direction, 0, true)
			if err != nil {
				t.Fatalf("target %gc direction %d: %+v", target, direction, err)
			}
			if !floats.EqualWithinRel(velocity, want, 1e-3) {
				t.Fatalf("velocity = %g m/s, expected %g", velocity, want)
			}
			if s.FuelMass() >= testFuelMass {
				t.Fatal("no fuel was spent")
			}
			if s.Time <= 0 {
				t.Fatal("no time elapsed")
			}
			if float64(direction)*s.Position <= 0 {
				t.Fatalf("position = %g m for direction %d", s.Position, direction)
			}
			checkLogParallel(t, s)
		}
	}
}

func TestDecelerateToVelocity(t *testing.T) {
	for _, delta := range []float64{0.001, 0.01, 0.02} {
		for _, direction := range []int{1, -1} {
			s := testShip()
			s.Velocity = 0.03 * SpeedOfLight
			want := s.Velocity + float64(direction)*delta*SpeedOfLight
			velocity, err := s.AccelerateToVelocity("main", want, direction, 0, true)
			if err != nil {
				t.Fatalf("delta %gc direction %d: %+v", delta, direction, err)
			}
			if !floats.EqualWithinRel(velocity, want, 1e-3) {
				t.Fatalf("velocity = %g m/s, expected %g", velocity, want)
			}
			if s.Position <= 0 {
				t.Fatalf("position = %g m, expected > 0", s.Position)
			}
		}
	}
}

func TestAccelerateInsufficientFuel(t *testing.T) {
	s := NewStarship(testPayloadMass, NewEngine("main", 1.0e3, 500e3))
	s.SetLogger(kitlog.NewNopLogger())
	_, err := s.AccelerateToVelocity("main", 0.1*SpeedOfLight, 1, 0, true)
	var insufficient InsufficientFuelError
	if !errors.As(err, &insufficient) {
		t.Fatalf("unexpected error: %+v", err)
	}
	if s.Velocity != 0 || s.Position != 0 || s.Time != 0 {
		t.Fatal("failed maneuver mutated the ship state")
	}
	if s.FuelMass() != 1.0e3 {
		t.Fatalf("failed maneuver drained fuel to %g kg", s.FuelMass())
	}
	if len(s.History()) != 1 {
		t.Fatalf("failed maneuver logged %d entries", len(s.History()))
	}
}

func TestAccelerateRelativistic(t *testing.T) {
	s := testShip()
	_, err := s.AccelerateToVelocity("main", 0.6*SpeedOfLight, 1, 0, true)
	var relativistic RelativisticSpeedError
	if !errors.As(err, &relativistic) {
		t.Fatalf("unexpected error: %+v", err)
	}
	if s.Velocity != 0 || s.FuelMass() != testFuelMass || len(s.History()) != 1 {
		t.Fatal("failed maneuver mutated the ship")
	}

	// Fuel-driven burns hit the same wall. The rocket equation runs on
	// payload-plus-fuel plus the engine's own reservoir, so a 0.9 burn
	// fraction gives Δv = ve·ln(2/1.1) ≈ 0.6ve.
	hot := NewStarship(testPayloadMass, NewEngine("hot", 1e10, 3e8))
	hot.SetLogger(kitlog.NewNopLogger())
	_, err = hot.AccelerateWithFuel("hot", 0.9e10, 1, 0)
	if !errors.As(err, &relativistic) {
		t.Fatalf("unexpected error: %+v", err)
	}
	if hot.Velocity != 0 || hot.FuelMass() != 1e10 {
		t.Fatal("failed burn mutated the ship")
	}
}

func TestAccelerateUnknownEngine(t *testing.T) {
	s := testShip()
	if _, err := s.AccelerateWithFuel("warp", 1e5, 1, 0); err == nil {
		t.Fatal("expected an error for an unknown engine")
	}
	if _, err := s.AccelerateToVelocity("warp", 1e3, 1, 0, false); err == nil {
		t.Fatal("expected an error for an unknown engine")
	}
}

func TestAccelerateSymmetry(t *testing.T) {
	s := testShip()
	v1, err := s.AccelerateWithFuel("main", 0.1*testFuelMass, 1, 0)
	if err != nil {
		t.Fatalf("err: %+v", err)
	}
	// Burning the same fraction of the remaining fuel the other way
	// cancels the velocity almost exactly.
	v2, err := s.AccelerateWithFuel("main", 0.1*s.FuelMass(), -1, 0)
	if err != nil {
		t.Fatalf("err: %+v", err)
	}
	if math.Abs(v2) >= 0.05*math.Abs(v1) {
		t.Fatalf("velocity after symmetric burns = %g m/s (was %g)", v2, v1)
	}
}

func TestAccelerateScenario(t *testing.T) {
	s := testShip()
	velocity, err := s.AccelerateToVelocity("main", 0.01*SpeedOfLight, 1, 0, true)
	if err != nil {
		t.Fatalf("err: %+v", err)
	}
	if !floats.EqualWithinRel(velocity, 0.01*SpeedOfLight, 1e-3) {
		t.Fatalf("velocity = %g c", velocity/SpeedOfLight)
	}
	if s.Position <= 0 || s.Time <= 0 {
		t.Fatalf("position = %g m, time = %g s", s.Position, s.Time)
	}
	if s.FuelMass() >= testFuelMass {
		t.Fatal("no fuel was spent")
	}
}

func TestCruise(t *testing.T) {
	for _, direction := range []float64{1, -1} {
		s := testShip()
		s.Velocity = direction * 0.1 * SpeedOfLight
		distance := 1000 * AU
		if err := s.Cruise(distance, true); err != nil {
			t.Fatalf("err: %+v", err)
		}
		if !floats.EqualWithinRel(direction*s.Position, distance, 1e-3) {
			t.Fatalf("position = %g m", s.Position)
		}
		if !floats.EqualWithinRel(math.Abs(s.Velocity), distance/s.Time, 1e-3) {
			t.Fatalf("time = %g s does not match the cruise speed", s.Time)
		}
		if len(s.History()) != 2 {
			t.Fatalf("cruise logged %d entries", len(s.History()))
		}
	}
}

func TestCruiseNotMoving(t *testing.T) {
	s := testShip()
	if err := s.Cruise(AU, false); !errors.Is(err, ErrNotMoving) {
		t.Fatalf("err = %+v, expected ErrNotMoving", err)
	}
	if len(s.History()) != 1 {
		t.Fatal("failed cruise logged an entry")
	}
}

func TestWait(t *testing.T) {
	for _, direction := range []float64{1, -1} {
		s := testShip()
		s.Velocity = direction * 0.1 * SpeedOfLight
		if err := s.Wait(1.0e3, true); err != nil {
			t.Fatalf("err: %+v", err)
		}
		if s.Time != 1.0e3 {
			t.Fatalf("time = %g s", s.Time)
		}
		if !floats.EqualWithinAbs(s.Position, s.Velocity*1.0e3, 1e-3) {
			t.Fatalf("position = %g m", s.Position)
		}
		if len(s.History()) != 2 {
			t.Fatalf("wait logged %d entries", len(s.History()))
		}
	}
}

func TestParseLogs(t *testing.T) {
	s := testShip()
	s.Velocity = 0.1 * SpeedOfLight
	const nLogs = 10
	for i := 0; i < nLogs-1; i++ {
		if err := s.Wait(1.0e3, true); err != nil {
			t.Fatalf("wait %d: %+v", i, err)
		}
	}
	positions, velocities, fuels, times := s.ParseLogs()
	for _, seq := range [][]float64{positions, velocities, fuels, times} {
		if len(seq) != nLogs {
			t.Fatalf("parsed sequence has %d entries, expected %d", len(seq), nLogs)
		}
	}
	for i := 1; i < nLogs; i++ {
		if times[i] <= times[i-1] {
			t.Fatalf("log times not strictly increasing at %d", i)
		}
	}
	if !floats.EqualWithinRel(velocities[nLogs-1], 0.1, 1e-9) {
		t.Fatalf("parsed velocity = %g c", velocities[nLogs-1])
	}
}

func TestSailNoSail(t *testing.T) {
	s := testShip()
	if err := s.Sail(nil, 0, 0, 0, true); !errors.Is(err, ErrNoSolarSail) {
		t.Fatalf("err = %+v, expected ErrNoSolarSail", err)
	}
}

func TestSwimNoSwimmer(t *testing.T) {
	s := testShip()
	if err := s.Swim(1e13, Year, 1, true); !errors.Is(err, ErrNoSwimmer) {
		t.Fatalf("err = %+v, expected ErrNoSwimmer", err)
	}
}

func TestSailNumericalInstability(t *testing.T) {
	s := testShip()
	s.SolarSail = testSail()
	s.Position = math.Inf(1)
	err := s.Sail(nil, 0, 0, 0, true)
	if !errors.Is(err, ErrNumericalInstability) {
		t.Fatalf("err = %+v, expected ErrNumericalInstability", err)
	}
	if s.Velocity != 0 || len(s.History()) != 1 {
		t.Fatal("failed sail mutated the ship")
	}
}

func TestSwimNumericalInstability(t *testing.T) {
	s := testShip()
	s.Swimmer = NewSwimmer(2.0e19)
	s.Position = math.Inf(1)
	err := s.Swim(1e13, Year, 1, true)
	if !errors.Is(err, ErrNumericalInstability) {
		t.Fatalf("err = %+v, expected ErrNumericalInstability", err)
	}
	if len(s.History()) != 1 {
		t.Fatal("failed swim logged entries")
	}
}

func TestSwimNonPositiveTime(t *testing.T) {
	s := testShip()
	s.Swimmer = NewSwimmer(2.0e19)
	s.Velocity = 0.01 * SpeedOfLight
	for _, swimTime := range []float64{0, -Year} {
		if err := s.Swim(1e13, swimTime, 1, true); err == nil {
			t.Fatalf("expected an error for a %g s swim", swimTime)
		}
	}
	if len(s.History()) != 1 {
		t.Fatal("degenerate swims logged entries")
	}
}

func TestSailUnreachableVelocity(t *testing.T) {
	s := testShip()
	s.SolarSail = testSail()
	s.Position = 0.02 * AU
	max := s.SolarSail.FinalVelocity(s.TotalMass()-s.SolarSail.SailMass, s.Position)
	target := 2 * max
	err := s.Sail(&target, 0, 0, 0, true)
	var unreachable UnreachableVelocityError
	if !errors.As(err, &unreachable) {
		t.Fatalf("unexpected error: %+v", err)
	}
	if len(s.History()) != 1 {
		t.Fatal("failed sail logged entries")
	}
}

func TestSailOut(t *testing.T) {
	for _, direction := range []float64{1, -1} {
		s := testShip()
		s.SolarSail = testSail()
		initialDistance := 0.02 * AU
		s.Position = direction * initialDistance
		expected := direction * 0.9 * s.SolarSail.FinalVelocity(
			s.TotalMass()-s.SolarSail.SailMass, initialDistance)
		if err := s.Sail(nil, 0, 0, 0, true); err != nil {
			t.Fatalf("direction %g: %+v", direction, err)
		}
		if !floats.EqualWithinRel(s.Velocity, expected, 0.1) {
			t.Fatalf("velocity = %g m/s, expected ~%g", s.Velocity, expected)
		}
		if direction*s.Position/AU <= 1.0e-2 {
			t.Fatalf("position = %g AU, the ship did not move out", s.Position/AU)
		}
		checkLogParallel(t, s)
		if len(s.History()) < 3 {
			t.Fatalf("sail logged only %d entries", len(s.History()))
		}
	}
}

func TestSailDecelerate(t *testing.T) {
	for _, direction := range []float64{1, -1} {
		s := testShip()
		s.SolarSail = testSail()
		s.Position = direction * -8.0 * AU
		initialVelocity := direction * 0.9 * s.SolarSail.FinalVelocity(
			s.TotalMass()-s.SolarSail.SailMass, s.Position)
		s.Velocity = initialVelocity
		if err := s.Sail(nil, 0, 0, 100*Year, true); err != nil {
			t.Fatalf("direction %g: %+v", direction, err)
		}
		if math.Abs(s.Velocity/initialVelocity) >= 1.0e-3 {
			t.Fatalf("velocity = %g m/s of initial %g, the ship did not stop", s.Velocity, initialVelocity)
		}
		checkLogParallel(t, s)
	}
}

func TestSailDecelerateAtDestination(t *testing.T) {
	for _, direction := range []float64{1, -1} {
		s := testShip()
		s.SolarSail = testSail()
		star := 4.244 * LightYear
		s.Position = star + direction*-8.0*AU
		initialVelocity := direction * 0.9 * s.SolarSail.FinalVelocity(
			s.TotalMass()-s.SolarSail.SailMass, s.Position-star)
		s.Velocity = initialVelocity
		target := 0.0
		if err := s.Sail(&target, star, 0, 100*Year, true); err != nil {
			t.Fatalf("direction %g: %+v", direction, err)
		}
		if math.Abs(s.Velocity)/math.Abs(initialVelocity) >= 1.0e-3 {
			t.Fatalf("velocity = %g m/s, the ship did not stop at the destination", s.Velocity)
		}
	}
}

func TestSwim(t *testing.T) {
	for _, velocityDirection := range []float64{1, -1} {
		for _, accelDirection := range []int{1, -1} {
			s := testShip()
			s.Swimmer = NewSwimmer(2.0e19)
			initialVelocity := velocityDirection * 0.01 * SpeedOfLight
			s.Velocity = initialVelocity
			if err := s.Swim(1.0e13, Year, accelDirection, true); err != nil {
				t.Fatalf("velocity %g accel %d: %+v", velocityDirection, accelDirection, err)
			}
			if Sign(s.Velocity-initialVelocity) != float64(accelDirection) {
				t.Fatalf("velocity went from %g to %g m/s, expected a change along %d",
					initialVelocity, s.Velocity, accelDirection)
			}
			checkLogParallel(t, s)
			if len(s.History()) < 3 {
				t.Fatalf("swim logged only %d entries", len(s.History()))
			}
		}
	}
}
