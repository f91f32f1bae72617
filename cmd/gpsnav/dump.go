package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gpsnav/internal/nmea"
	"gpsnav/internal/replay"
)

// renderState writes every field of st, one per line.
func renderState(w io.Writer, st nmea.State) {
	ts := st.Timestamp
	c := st.Coordinates
	fmt.Fprintf(w, "date: %02d/%02d/%02d\n", ts.Day, ts.Month, ts.Year)
	fmt.Fprintf(w, "time: %02d:%02d:%02d.%03d\n", ts.Hour, ts.Minute, ts.Second, ts.Millisecond)
	fmt.Fprintf(w, "latitude: %d (scale %d) = %.6f deg\n", c.Latitude, c.LatitudeScale, c.LatitudeDegrees())
	fmt.Fprintf(w, "longitude: %d (scale %d) = %.6f deg\n", c.Longitude, c.LongitudeScale, c.LongitudeDegrees())
	fmt.Fprintf(w, "altitude_msl_m: %.2f\n", st.AltitudeSeaLevel)
	fmt.Fprintf(w, "altitude_wgs84_m: %.2f\n", st.AltitudeWGS84)
	fmt.Fprintf(w, "speed_kt: %.2f\n", st.Velocity.Speed)
	fmt.Fprintf(w, "heading_deg: %.2f\n", st.Velocity.Heading)
	fmt.Fprintf(w, "magnetic_variation_deg: %.2f\n", st.MagneticVariation)
	fmt.Fprintf(w, "dgps_station: %d\n", st.DGPS.StationID)
	fmt.Fprintf(w, "dgps_age_s: %d\n", st.DGPS.Age)
	fmt.Fprintf(w, "hdop: %.2f\n", st.HDOP)
	fmt.Fprintf(w, "satellites: %d\n", st.Satellites)
	fmt.Fprintf(w, "fix_quality: %s\n", st.FixQuality)
	fmt.Fprintf(w, "fix: %t\n", st.Fix)
}

// printDump replays a sentence log through one parser and renders the final
// state followed by the outcome of the last sentence.
func printDump(w io.Writer, path string, atomic bool) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	recs, err := replay.ReadFile(path)
	if err != nil {
		return err
	}

	mode := nmea.CommitPartial
	if atomic {
		mode = nmea.CommitAtomic
	}
	p := nmea.New(nmea.WithCommitMode(mode))
	var last error
	n := 0
	for _, r := range recs {
		if r.Start {
			continue
		}
		last = p.ParseString(r.Sentence)
		n++
	}
	if n == 0 {
		return errors.New("log has no sentences")
	}

	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "sentences: %d\n", n)
	fmt.Fprintf(w, "commit_mode: %s\n", p.CommitMode())
	renderState(w, p.State())
	fmt.Fprintf(w, "last_outcome: %s (0x%02X)\n", nmea.Outcome(last), nmea.Code(last))
	snap := p.Export()
	fmt.Fprintf(w, "snapshot: %x\n", snap[:])
	return nil
}
