package nmea

import "math"

// decodeCoordinate reads a ddmm.mmmm value at the cursor, moves to the
// hemisphere field and stores the signed result into latitude or longitude
// depending on the hemisphere letter.
func decodeCoordinate(c *fieldCursor, st *State) error {
	f := c.field()
	if len(f) == 0 {
		return badData("coordinate: empty field")
	}
	var (
		v     int64
		scale uint8
		dot   bool
	)
	for _, b := range f {
		if b == '.' {
			if dot {
				return badData("coordinate: second '.' in %q", f)
			}
			dot = true
			continue
		}
		if !isDigit(b) {
			return badData("coordinate: unexpected %q in %q", b, f)
		}
		v = v*10 + int64(b-'0')
		if v > math.MaxInt32 {
			return badData("coordinate: %q overflows", f)
		}
		if dot {
			scale++
		}
	}

	if !c.advance() {
		return badData("coordinate: missing hemisphere")
	}
	switch c.first() {
	case 'N':
		st.Coordinates.Latitude = int32(v)
		st.Coordinates.LatitudeScale = scale
	case 'S':
		st.Coordinates.Latitude = -int32(v)
		st.Coordinates.LatitudeScale = scale
	case 'E':
		st.Coordinates.Longitude = int32(v)
		st.Coordinates.LongitudeScale = scale
	case 'W':
		st.Coordinates.Longitude = -int32(v)
		st.Coordinates.LongitudeScale = scale
	default:
		return badData("coordinate: hemisphere %q", c.field())
	}
	return nil
}
