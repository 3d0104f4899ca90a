package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/soniakeys/meeus/julian"
	"github.com/spf13/viper"

	imp "github.com/QEDan/interstellar-mission-planning"
)

// This code only reads the scenario file and flies the mission.

const defaultScenario = "~~unset~~"

var (
	scenario string
	plot     bool
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "mission scenario TOML file")
	flag.BoolVar(&plot, "plot", false, "render terminal plots of the mission history")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	ship := readShip()
	for no := 0; viper.IsSet(fmt.Sprintf("maneuvers.%d", no)); no++ {
		if err := runManeuver(ship, no); err != nil {
			log.Fatalf("maneuvers.%d: %s", no, err)
		}
	}

	if err := ship.WriteHistory(os.Stdout); err != nil {
		log.Fatalf("writing history: %s", err)
	}
	if plot {
		fmt.Println(ship.PlotHistory(10, 80))
	}
	if viper.GetBool("mission.csv") {
		conf := imp.ExportConfig{
			Filename: viper.GetString("ship.name"),
			AsCSV:    true,
			Epoch:    confReadJDEorTime("mission.start"),
		}
		if err := ship.Export(conf); err != nil {
			log.Fatalf("exporting mission: %s", err)
		}
	}
}

// readShip builds the starship from the [ship], [engines], [sail] and
// [swimmer] scenario sections. Velocities are in units of c, distances in
// light-years unless noted.
func readShip() *imp.Starship {
	ship := imp.NewStarship(viper.GetFloat64("ship.payload"))
	if power := viper.GetFloat64("ship.power"); power > 0 {
		ship.ElectricalPower = power
	}
	if dest := viper.GetFloat64("ship.destination"); dest > 0 {
		ship.DestinationDistance = dest * imp.LightYear
	}
	ship.Velocity = viper.GetFloat64("ship.velocity") * imp.SpeedOfLight
	ship.Position = viper.GetFloat64("ship.position") * imp.LightYear

	for no := 0; viper.IsSet(fmt.Sprintf("engines.%d", no)); no++ {
		name := viper.GetString(fmt.Sprintf("engines.%d.name", no))
		fuel := viper.GetFloat64(fmt.Sprintf("engines.%d.fuel", no))
		exhaust := viper.GetFloat64(fmt.Sprintf("engines.%d.exhaust", no))
		ship.AddEngine(imp.NewEngine(name, fuel, exhaust))
		if verbose {
			log.Printf("[conf] engine %s: %g kg of fuel", name, fuel)
		}
	}
	if viper.IsSet("sail") {
		sail := imp.NewSolarSail(viper.GetFloat64("sail.mass"), viper.GetFloat64("sail.radius"))
		if refl := viper.GetFloat64("sail.reflectivity"); refl > 0 {
			sail.Reflectivity = refl
		}
		ship.SolarSail = sail
	}
	if viper.IsSet("swimmer") {
		ship.Swimmer = imp.NewSwimmer(viper.GetFloat64("swimmer.area"))
	}
	return ship
}

// runManeuver executes the no-th [maneuvers.N] entry against the ship.
func runManeuver(ship *imp.Starship, no int) error {
	key := func(field string) string { return fmt.Sprintf("maneuvers.%d.%s", no, field) }
	electricity := true
	if viper.IsSet(key("electricity")) {
		electricity = viper.GetBool(key("electricity"))
	}
	direction := 1
	if viper.IsSet(key("direction")) {
		direction = viper.GetInt(key("direction"))
	}
	kind := viper.GetString(key("type"))
	if verbose {
		log.Printf("[conf] maneuver %d: %s", no, kind)
	}
	switch kind {
	case "accelerate":
		engine := viper.GetString(key("engine"))
		accel := viper.GetFloat64(key("accel")) * imp.StdGravity
		if viper.IsSet(key("fuel")) {
			_, err := ship.AccelerateWithFuel(engine, viper.GetFloat64(key("fuel")), direction, accel)
			return err
		}
		target := viper.GetFloat64(key("velocity")) * imp.SpeedOfLight
		_, err := ship.AccelerateToVelocity(engine, target, direction, accel, electricity)
		return err
	case "cruise":
		return ship.Cruise(viper.GetFloat64(key("distance"))*imp.LightYear, electricity)
	case "wait":
		return ship.Wait(viper.GetFloat64(key("time"))*imp.Year, electricity)
	case "sail":
		var target *float64
		if viper.IsSet(key("velocity")) {
			v := viper.GetFloat64(key("velocity")) * imp.SpeedOfLight
			target = &v
		}
		star := viper.GetFloat64(key("star")) * imp.AU
		maxAccel := viper.GetFloat64(key("max_accel")) * imp.StdGravity
		maxTime := viper.GetFloat64(key("max_time")) * imp.Day
		return ship.Sail(target, star, maxAccel, maxTime, electricity)
	case "swim":
		power := viper.GetFloat64(key("power"))
		swimTime := viper.GetFloat64(key("time")) * imp.Year
		return ship.Swim(power, swimTime, direction, electricity)
	default:
		return fmt.Errorf("unknown maneuver type %q", kind)
	}
}

func confReadJDEorTime(key string) (dt time.Time) {
	jde := viper.GetFloat64(key)
	if jde == 0 {
		dt = viper.GetTime(key)
	} else {
		dt = julian.JDToTime(jde)
	}
	return
}
