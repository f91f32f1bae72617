package nmea

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// SnapshotSize is the encoded size of a Snapshot.
	SnapshotSize    = 74
	snapshotVersion = 1
)

// Snapshot is the fixed little-endian layout of a State:
//
//	0      version
//	1..6   year month day hour minute second
//	7..8   millisecond
//	9..16  latitude, longitude (int32)
//	17..18 latitude scale, longitude scale
//	19..34 altitude sea level, altitude WGS84 (float64 bits)
//	35..50 speed, heading
//	51..54 dgps station id, dgps age
//	55..62 hdop
//	63..70 magnetic variation
//	71     satellites
//	72     fix quality
//	73     fix
type Snapshot [SnapshotSize]byte

// Export encodes s. Floating point fields are stored as raw IEEE-754 bits so
// Import restores them exactly.
func (s State) Export() Snapshot {
	le := binary.LittleEndian
	b := make([]byte, 0, SnapshotSize)
	ts := s.Timestamp
	b = append(b, snapshotVersion, ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second)
	b = le.AppendUint16(b, ts.Millisecond)
	b = le.AppendUint32(b, uint32(s.Coordinates.Latitude))
	b = le.AppendUint32(b, uint32(s.Coordinates.Longitude))
	b = append(b, s.Coordinates.LatitudeScale, s.Coordinates.LongitudeScale)
	b = le.AppendUint64(b, math.Float64bits(s.AltitudeSeaLevel))
	b = le.AppendUint64(b, math.Float64bits(s.AltitudeWGS84))
	b = le.AppendUint64(b, math.Float64bits(s.Velocity.Speed))
	b = le.AppendUint64(b, math.Float64bits(s.Velocity.Heading))
	b = le.AppendUint16(b, s.DGPS.StationID)
	b = le.AppendUint16(b, s.DGPS.Age)
	b = le.AppendUint64(b, math.Float64bits(s.HDOP))
	b = le.AppendUint64(b, math.Float64bits(s.MagneticVariation))
	fix := byte(0)
	if s.Fix {
		fix = 1
	}
	b = append(b, s.Satellites, byte(s.FixQuality), fix)

	var snap Snapshot
	copy(snap[:], b)
	return snap
}

// State decodes the snapshot.
func (snap Snapshot) State() (State, error) {
	if snap[0] != snapshotVersion {
		return State{}, fmt.Errorf("nmea: snapshot version %d not supported", snap[0])
	}
	le := binary.LittleEndian
	b := snap[:]
	f64 := func(off int) float64 { return math.Float64frombits(le.Uint64(b[off:])) }

	var s State
	s.Timestamp = Timestamp{
		Year:        b[1],
		Month:       b[2],
		Day:         b[3],
		Hour:        b[4],
		Minute:      b[5],
		Second:      b[6],
		Millisecond: le.Uint16(b[7:]),
	}
	s.Coordinates = Coordinates{
		Latitude:       int32(le.Uint32(b[9:])),
		Longitude:      int32(le.Uint32(b[13:])),
		LatitudeScale:  b[17],
		LongitudeScale: b[18],
	}
	s.AltitudeSeaLevel = f64(19)
	s.AltitudeWGS84 = f64(27)
	s.Velocity = Velocity{Speed: f64(35), Heading: f64(43)}
	s.DGPS = DGPS{StationID: le.Uint16(b[51:]), Age: le.Uint16(b[53:])}
	s.HDOP = f64(55)
	s.MagneticVariation = f64(63)
	s.Satellites = b[71]
	s.FixQuality = FixQuality(b[72])
	s.Fix = b[73] != 0
	return s, nil
}

func (snap Snapshot) MarshalBinary() ([]byte, error) {
	out := make([]byte, SnapshotSize)
	copy(out, snap[:])
	return out, nil
}

func (snap *Snapshot) UnmarshalBinary(data []byte) error {
	if len(data) != SnapshotSize {
		return fmt.Errorf("nmea: snapshot is %d bytes, want %d", len(data), SnapshotSize)
	}
	copy(snap[:], data)
	return nil
}
