package nmea

import (
	"fmt"
	"math"
)

// GGA: Global Positioning System Fix Data
//
//	1: time (hhmmss.sss)
//	2,3: latitude, N/S
//	4,5: longitude, E/W
//	6: fix quality (0, 1, 2)
//	7: satellites in use
//	8: HDOP
//	9,10: altitude above mean sea level, M
//	11,12: height of the WGS84 ellipsoid, M
//	13: age of DGPS correction
//	14: DGPS station id
//
// Every field is mandatory.
func decodeGGA(c *fieldCursor, st *State) error {
	if err := c.next("gga time"); err != nil {
		return err
	}
	if err := parseTime(c.field(), &st.Timestamp); err != nil {
		return fmt.Errorf("gga: %w", err)
	}

	if err := c.next("gga latitude"); err != nil {
		return err
	}
	if err := decodeCoordinate(c, st); err != nil {
		return fmt.Errorf("gga latitude: %w", err)
	}
	if err := c.next("gga longitude"); err != nil {
		return err
	}
	if err := decodeCoordinate(c, st); err != nil {
		return fmt.Errorf("gga longitude: %w", err)
	}

	if err := c.next("gga fix quality"); err != nil {
		return err
	}
	switch q := c.first(); q {
	case '0', '1', '2':
		st.FixQuality = FixQuality(q - '0')
	default:
		return badData("gga fix quality: %q", c.field())
	}

	if err := c.next("gga satellites"); err != nil {
		return err
	}
	sats, err := parseUint(c.field(), math.MaxUint8)
	if err != nil {
		return fmt.Errorf("gga satellites: %w", err)
	}
	st.Satellites = uint8(sats)

	if err := c.next("gga hdop"); err != nil {
		return err
	}
	hdop, err := parseDecimal(c.field())
	if err != nil {
		return fmt.Errorf("gga hdop: %w", err)
	}
	st.HDOP = hdop

	alt, err := decodeAltitude(c, "gga altitude")
	if err != nil {
		return err
	}
	st.AltitudeSeaLevel = alt

	alt, err = decodeAltitude(c, "gga wgs84 altitude")
	if err != nil {
		return err
	}
	st.AltitudeWGS84 = alt

	if err := c.next("gga dgps age"); err != nil {
		return err
	}
	age, err := parseUint(c.field(), math.MaxUint16)
	if err != nil {
		return fmt.Errorf("gga dgps age: %w", err)
	}
	st.DGPS.Age = age

	if err := c.next("gga dgps station"); err != nil {
		return err
	}
	id, err := parseUint(c.field(), math.MaxUint16)
	if err != nil {
		return fmt.Errorf("gga dgps station: %w", err)
	}
	st.DGPS.StationID = id
	return nil
}

// decodeAltitude reads a value field followed by its mandatory 'M' unit
// field. The value is returned only when the unit checks out.
func decodeAltitude(c *fieldCursor, name string) (float64, error) {
	if err := c.next(name); err != nil {
		return 0, err
	}
	v, err := parseDecimal(c.field())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if !c.advance() || c.first() != 'M' {
		return 0, badData("%s: missing unit 'M'", name)
	}
	return v, nil
}
