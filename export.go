package interstellar

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/soniakeys/meeus/julian"
)

// ExportConfig configures the exporting of a mission log.
type ExportConfig struct {
	Filename string
	AsCSV    bool
	Epoch    time.Time // mission start; adds a Julian date column when set
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV
}

// WriteHistory writes the mission log in human-readable form, one message
// and one state snapshot per entry.
func (s *Starship) WriteHistory(w io.Writer) error {
	for i, log := range s.history {
		if _, err := fmt.Fprintf(w, "%s\n{time: %g s, position: %g m, velocity: %g m/s, fuel_mass: %g kg}\n\n",
			s.messages[i], log.Time, log.Position, log.Velocity, log.FuelMass); err != nil {
			return err
		}
	}
	return nil
}

// WriteHistoryCSV writes the parsed mission log as CSV. When conf carries
// an epoch, a leading Julian date column anchors each entry in time.
func (s *Starship) WriteHistoryCSV(w io.Writer, conf ExportConfig) error {
	cw := csv.NewWriter(w)
	withJD := !conf.Epoch.IsZero()
	hdr := []string{"time_yr", "position_ly", "velocity_c", "fuel_kg"}
	if withJD {
		hdr = append([]string{"jd"}, hdr...)
	}
	if err := cw.Write(hdr); err != nil {
		return err
	}
	positions, velocities, fuels, times := s.ParseLogs()
	epochJD := julian.TimeToJD(conf.Epoch)
	for i := range times {
		rec := []string{
			strconv.FormatFloat(times[i], 'e', 8, 64),
			strconv.FormatFloat(positions[i], 'e', 8, 64),
			strconv.FormatFloat(velocities[i], 'e', 8, 64),
			strconv.FormatFloat(fuels[i], 'e', 8, 64),
		}
		if withJD {
			jd := epochJD + s.history[i].Time/Day
			rec = append([]string{strconv.FormatFloat(jd, 'f', 6, 64)}, rec...)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export writes the mission log to the configured output directory as
// mission-<Filename>.csv.
func (s *Starship) Export(conf ExportConfig) error {
	if conf.IsUseless() {
		return nil
	}
	path := filepath.Join(impConfig().outputDir, fmt.Sprintf("mission-%s.csv", conf.Filename))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.WriteHistoryCSV(f, conf)
}

// PlotHistory renders the mission log as three stacked terminal plots:
// velocity, fuel mass, and position against time.
func (s *Starship) PlotHistory(height, width int) string {
	positions, velocities, fuels, times := s.ParseLogs()
	finalYear := 0.0
	if n := len(times); n > 0 {
		finalYear = times[n-1]
	}
	opts := func(caption string) []asciigraph.Option {
		return []asciigraph.Option{
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(caption),
		}
	}
	out := asciigraph.Plot(velocities, opts(fmt.Sprintf("Velocity (c) over %0.2f years", finalYear))...)
	out += "\n\n" + asciigraph.Plot(fuels, opts(fmt.Sprintf("Fuel mass (kg) over %0.2f years", finalYear))...)
	out += "\n\n" + asciigraph.Plot(positions, opts(fmt.Sprintf("Position (ly) over %0.2f years", finalYear))...)
	return out
}
