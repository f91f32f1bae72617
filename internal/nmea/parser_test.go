package nmea

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, p *Parser, payload string) {
	t.Helper()
	if err := p.ParseString(nmeaLine(payload)); err != nil {
		t.Fatalf("Parse(%q) err=%v", payload, err)
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestParse_GGA(t *testing.T) {
	p := New()
	mustParse(t, p, ggaPayload)

	want := State{
		Timestamp:        Timestamp{Hour: 12, Minute: 35, Second: 19},
		Coordinates:      Coordinates{Latitude: 4807038, Longitude: 1131000, LatitudeScale: 3, LongitudeScale: 3},
		AltitudeSeaLevel: 545.4,
		AltitudeWGS84:    46.9,
		DGPS:             DGPS{StationID: 120, Age: 5},
		HDOP:             0.9,
		Satellites:       8,
		FixQuality:       FixGPS,
	}
	approxFloat := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })
	if diff := cmp.Diff(want, p.State(), approxFloat); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	if !approx(p.Altitude('s'), 545.4) || !approx(p.Altitude('W'), 46.9) {
		t.Fatalf("altitude s=%v w=%v", p.Altitude('s'), p.Altitude('W'))
	}
}

func TestParse_GGAFieldErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"FixQualitySix", "GPGGA,123519,4807.038,N,01131.000,E,6,08,0.9,545.4,M,46.9,M,5,0120"},
		{"FixQualityEmpty", "GPGGA,123519,4807.038,N,01131.000,E,,08,0.9,545.4,M,46.9,M,5,0120"},
		{"MissingSeaLevelUnit", "GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,F,46.9,M,5,0120"},
		{"MissingWGS84Unit", "GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,,5,0120"},
		{"EmptyDGPS", "GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"},
		{"Truncated", "GPGGA,123519,4807.038,N,01131.000,E,1,08"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := New().ParseString(nmeaLine(tc.payload))
			if !errors.Is(err, ErrBadData) {
				t.Fatalf("err=%v want ErrBadData", err)
			}
		})
	}
}

func TestParse_PartialCommitKeepsEarlierFields(t *testing.T) {
	p := New()
	err := p.ParseString(nmeaLine("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"))
	if !errors.Is(err, ErrBadData) {
		t.Fatalf("err=%v want ErrBadData", err)
	}
	if p.Satellites() != 8 || !approx(p.Altitude('s'), 545.4) || p.Coordinates().Latitude != 4807038 {
		t.Fatalf("expected fields before the failure to be committed, got %+v", p.State())
	}
}

func TestParse_AtomicCommitDiscardsFailedSentence(t *testing.T) {
	p := New(WithCommitMode(CommitAtomic))
	if p.CommitMode() != CommitAtomic {
		t.Fatalf("mode=%v", p.CommitMode())
	}
	err := p.ParseString(nmeaLine("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"))
	if !errors.Is(err, ErrBadData) {
		t.Fatalf("err=%v want ErrBadData", err)
	}
	if p.State() != (State{}) {
		t.Fatalf("expected untouched state, got %+v", p.State())
	}

	mustParse(t, p, ggaPayload)
	if p.Satellites() != 8 {
		t.Fatalf("satellites=%d want 8", p.Satellites())
	}
}

func TestParse_GLL(t *testing.T) {
	p := New()
	mustParse(t, p, gllPayload)
	c := p.Coordinates()
	if c.Latitude != 491645 || c.LatitudeScale != 2 {
		t.Fatalf("lat=%d scale=%d", c.Latitude, c.LatitudeScale)
	}
	if c.Longitude != -1231112 {
		t.Fatalf("lon=%d", c.Longitude)
	}
	ts := p.Timestamp()
	if ts.Hour != 22 || ts.Minute != 54 || ts.Second != 44 {
		t.Fatalf("ts=%+v", ts)
	}
	if !p.Fix() {
		t.Fatalf("expected fix")
	}

	mustParse(t, p, "GPGLL,4916.45,N,12311.12,W,225500,V")
	if p.Fix() {
		t.Fatalf("expected no fix after V")
	}
}

func TestParse_GLLOptionalTrailingFields(t *testing.T) {
	p := New()
	mustParse(t, p, "GPGLL,4916.45,S,12311.12,E")
	if p.Coordinates().Latitude != -491645 || p.Coordinates().Longitude != 1231112 {
		t.Fatalf("coords=%+v", p.Coordinates())
	}
	if p.Timestamp() != (Timestamp{}) {
		t.Fatalf("time should be untouched, got %+v", p.Timestamp())
	}

	// Empty time keeps the previous value; unknown status is ignored.
	mustParse(t, p, "GPGLL,4916.45,N,12311.12,W,225444,A")
	mustParse(t, p, "GPGLL,4916.45,N,12311.12,W,,X")
	if p.Timestamp().Hour != 22 || !p.Fix() {
		t.Fatalf("expected previous time and fix kept, got ts=%+v fix=%v", p.Timestamp(), p.Fix())
	}

	if err := p.ParseString(nmeaLine("GPGLL,4916.45,N")); !errors.Is(err, ErrBadData) {
		t.Fatalf("err=%v want ErrBadData", err)
	}
}

func TestParse_RMC(t *testing.T) {
	p := New()
	mustParse(t, p, rmcPayload)

	ts := p.Timestamp()
	if ts != (Timestamp{Year: 94, Month: 3, Day: 23, Hour: 12, Minute: 35, Second: 19}) {
		t.Fatalf("ts=%+v", ts)
	}
	if !p.Fix() {
		t.Fatalf("expected fix")
	}
	if p.Coordinates().Latitude != 4807038 || p.Coordinates().Longitude != 1131000 {
		t.Fatalf("coords=%+v", p.Coordinates())
	}
	v := p.Velocity()
	if !approx(v.Speed, 22.4) || !approx(v.Heading, 84.4) {
		t.Fatalf("velocity=%+v", v)
	}
	if !approx(p.MagneticVariation(), -3.1) {
		t.Fatalf("magvar=%v want -3.1", p.MagneticVariation())
	}
}

func TestParse_RMCMagneticVariationOptional(t *testing.T) {
	p := New()
	mustParse(t, p, rmcPayload)

	mustParse(t, p, "GPRMC,123520,A,4807.038,N,01131.000,E,022.4,084.4,230394,,")
	if !approx(p.MagneticVariation(), -3.1) {
		t.Fatalf("empty magvar should keep previous, got %v", p.MagneticVariation())
	}
	mustParse(t, p, "GPRMC,123521,A,4807.038,N,01131.000,E,022.4,084.4,230394")
	if !approx(p.MagneticVariation(), -3.1) {
		t.Fatalf("absent magvar should keep previous, got %v", p.MagneticVariation())
	}
	mustParse(t, p, "GPRMC,123522,A,4807.038,N,01131.000,E,022.4,084.4,230394,004.2")
	if !approx(p.MagneticVariation(), 4.2) {
		t.Fatalf("magvar=%v want 4.2", p.MagneticVariation())
	}
	mustParse(t, p, "GPRMC,123523,A,4807.038,N,01131.000,E,022.4,084.4,230394,001.5,E")
	if !approx(p.MagneticVariation(), 1.5) {
		t.Fatalf("magvar=%v want 1.5", p.MagneticVariation())
	}
}

func TestParse_RMCVoid(t *testing.T) {
	p := New()
	mustParse(t, p, "GPRMC,081836,A,3751.65,S,14507.36,E,010.0,120.0,130998,011.3,E")
	before := p.State()

	err := p.ParseString(nmeaLine("GPRMC,123519,V,4807.038,N,01131.000,W,022.4,084.4,230394,003.1,W"))
	if !errors.Is(err, ErrNoFix) {
		t.Fatalf("err=%v want ErrNoFix", err)
	}
	ts := p.Timestamp()
	if ts.Day != 23 || ts.Month != 3 || ts.Year != 94 {
		t.Fatalf("date=%02d/%02d/%02d want 23/03/94", ts.Day, ts.Month, ts.Year)
	}
	if p.Fix() {
		t.Fatalf("expected fix=false")
	}
	if p.Coordinates() != before.Coordinates {
		t.Fatalf("coordinates changed: %+v -> %+v", before.Coordinates, p.Coordinates())
	}
	if p.Velocity() != before.Velocity {
		t.Fatalf("velocity changed: %+v -> %+v", before.Velocity, p.Velocity())
	}
	if p.MagneticVariation() != before.MagneticVariation {
		t.Fatalf("magvar changed: %v -> %v", before.MagneticVariation, p.MagneticVariation())
	}
}

func TestParse_RMCVoidShortSentence(t *testing.T) {
	err := New().ParseString(nmeaLine("GPRMC,123519,V,,,"))
	if !errors.Is(err, ErrBadData) {
		t.Fatalf("err=%v want ErrBadData", err)
	}
}

func TestParse_RMCHeadingOutOfRange(t *testing.T) {
	p := New()
	mustParse(t, p, rmcPayload)
	err := p.ParseString(nmeaLine("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,360.0,230394,003.1,W"))
	if !errors.Is(err, ErrBadData) {
		t.Fatalf("err=%v want ErrBadData", err)
	}
	if !approx(p.Velocity().Heading, 84.4) {
		t.Fatalf("heading=%v, rejected value must not be committed", p.Velocity().Heading)
	}
}

func TestParse_RMCBadStatus(t *testing.T) {
	err := New().ParseString(nmeaLine("GPRMC,123519,X,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"))
	if !errors.Is(err, ErrBadData) {
		t.Fatalf("err=%v want ErrBadData", err)
	}
}

func TestParse_Accumulates(t *testing.T) {
	p := New()
	mustParse(t, p, ggaPayload)
	mustParse(t, p, rmcPayload)
	if p.Satellites() != 8 || p.DGPS().StationID != 120 || !approx(p.HDOP(), 0.9) {
		t.Fatalf("GGA fields lost after RMC: %+v", p.State())
	}
	if p.FixQuality() != FixGPS {
		t.Fatalf("fix quality=%v", p.FixQuality())
	}
	if p.Timestamp().Year != 94 {
		t.Fatalf("RMC date missing: %+v", p.Timestamp())
	}
}

func TestParse_Framing(t *testing.T) {
	p := New()
	if err := p.Parse(nil); !errors.Is(err, ErrNullInput) {
		t.Fatalf("nil err=%v want ErrNullInput", err)
	}

	line := nmeaLine(rmcPayload)
	if err := p.Parse([]byte(line + "\r\n\x00trailing garbage")); err != nil {
		t.Fatalf("NUL terminated err=%v", err)
	}
	if err := p.ParseN([]byte(line+"\r\nmore"), len(line)+2); err != nil {
		t.Fatalf("ParseN err=%v", err)
	}
	if err := p.ParseN([]byte(line), 0); err != nil {
		t.Fatalf("ParseN(0) err=%v", err)
	}
}

func TestParse_UnknownSentence(t *testing.T) {
	err := New().ParseString(nmeaLine("GPXYZ,4807.038,N,01131.000,E"))
	if !errors.Is(err, ErrUnknownSentence) {
		t.Fatalf("err=%v want ErrUnknownSentence", err)
	}
	err = New().ParseString(nmeaLine("GNRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"))
	if !errors.Is(err, ErrUnknownSentence) {
		t.Fatalf("GN talker err=%v want ErrUnknownSentence", err)
	}
}

func TestIdentify(t *testing.T) {
	cases := map[string]SentenceKind{
		nmeaLine(ggaPayload): KindGGA,
		nmeaLine(gllPayload): KindGLL,
		nmeaLine(rmcPayload): KindRMC,
		"$GPVTG,,*00":        KindUnknown,
	}
	for in, want := range cases {
		if got := Identify([]byte(in)); got != want {
			t.Fatalf("Identify(%q)=%v want %v", in, got, want)
		}
	}
}

func TestOutcomeAndCode(t *testing.T) {
	cases := []struct {
		err   error
		label string
		code  byte
	}{
		{nil, "ok", 0x00},
		{ErrNullInput, "null_input", 0xFF},
		{ErrUnknownSentence, "unknown_sentence", 0xBF},
		{ErrMissingChecksum, "missing_checksum", 0xBE},
		{ErrBadChecksum, "bad_checksum", 0xBD},
		{badData("x"), "bad_data", 0x9F},
		{ErrNoFix, "no_fix", 0x9E},
		{errors.New("other"), "error", 0xFF},
	}
	for _, tc := range cases {
		if got := Outcome(tc.err); got != tc.label {
			t.Fatalf("Outcome(%v)=%q want %q", tc.err, got, tc.label)
		}
		if got := Code(tc.err); got != tc.code {
			t.Fatalf("Code(%v)=%#02x want %#02x", tc.err, got, tc.code)
		}
	}
}
