package nmea

import "math"

// Timestamp is the receiver's UTC time and date. Year has no century. Time
// and date come from different sentences and may be stale independently.
type Timestamp struct {
	Year        uint8
	Month       uint8
	Day         uint8
	Hour        uint8
	Minute      uint8
	Second      uint8
	Millisecond uint16
}

// Coordinates hold degrees and minutes as ddmm.mmmm (dddmm.mmmm for
// longitude) with the decimal point removed and the hemisphere folded into
// the sign. The Scale fields record how many fractional digits were present.
type Coordinates struct {
	Latitude       int32
	Longitude      int32
	LatitudeScale  uint8
	LongitudeScale uint8
}

// LatitudeDegrees converts the stored latitude to signed decimal degrees.
func (c Coordinates) LatitudeDegrees() float64 {
	return scaledToDegrees(c.Latitude, c.LatitudeScale)
}

// LongitudeDegrees converts the stored longitude to signed decimal degrees.
func (c Coordinates) LongitudeDegrees() float64 {
	return scaledToDegrees(c.Longitude, c.LongitudeScale)
}

func scaledToDegrees(v int32, scale uint8) float64 {
	x := math.Abs(float64(v)) / math.Pow10(int(scale))
	deg := math.Floor(x / 100)
	dec := deg + (x-deg*100)/60
	if v < 0 {
		dec = -dec
	}
	return dec
}

// Velocity is speed over ground in knots and heading in degrees true.
type Velocity struct {
	Speed   float64
	Heading float64
}

type DGPS struct {
	StationID uint16
	Age       uint16
}

type FixQuality uint8

const (
	FixInvalid FixQuality = 0
	FixGPS     FixQuality = 1
	FixDGPS    FixQuality = 2
)

func (q FixQuality) String() string {
	switch q {
	case FixInvalid:
		return "invalid"
	case FixGPS:
		return "gps"
	case FixDGPS:
		return "dgps"
	default:
		return "unknown"
	}
}

// State is the navigation state accumulated across sentences.
type State struct {
	Timestamp         Timestamp
	Coordinates       Coordinates
	AltitudeSeaLevel  float64
	AltitudeWGS84     float64
	Velocity          Velocity
	DGPS              DGPS
	HDOP              float64
	MagneticVariation float64
	Satellites        uint8
	FixQuality        FixQuality
	Fix               bool
}

// Altitude selects an altitude by reference: 'w' or 'W' for the WGS84
// ellipsoid, anything else for mean sea level.
func (s State) Altitude(ref byte) float64 {
	switch ref {
	case 'w', 'W':
		return s.AltitudeWGS84
	default:
		return s.AltitudeSeaLevel
	}
}
