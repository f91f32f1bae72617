package nmea

import "fmt"

// rmcDateSkip is the number of separators between the status field and the
// date field.
const rmcDateSkip = 7

// RMC: Recommended Minimum Specific GNSS Data
//
//	1: time (hhmmss.sss)
//	2: status (A=active, V=void)
//	3,4: latitude, N/S
//	5,6: longitude, E/W
//	7: speed over ground (knots)
//	8: course over ground (degrees true)
//	9: date (ddmmyy)
//	10,11: magnetic variation, E/W (optional)
//
// A void status updates only the date and returns ErrNoFix.
func decodeRMC(c *fieldCursor, st *State) error {
	if err := c.next("rmc time"); err != nil {
		return err
	}
	if err := parseTime(c.field(), &st.Timestamp); err != nil {
		return fmt.Errorf("rmc: %w", err)
	}

	if err := c.next("rmc status"); err != nil {
		return err
	}
	switch c.first() {
	case 'A':
		st.Fix = true
	case 'V':
		st.Fix = false
		for i := 0; i < rmcDateSkip; i++ {
			if err := c.next("rmc date"); err != nil {
				return err
			}
		}
		if err := parseDate(c.field(), &st.Timestamp); err != nil {
			return fmt.Errorf("rmc: %w", err)
		}
		return ErrNoFix
	default:
		return badData("rmc status: %q", c.field())
	}

	if err := c.next("rmc latitude"); err != nil {
		return err
	}
	if err := decodeCoordinate(c, st); err != nil {
		return fmt.Errorf("rmc latitude: %w", err)
	}
	if err := c.next("rmc longitude"); err != nil {
		return err
	}
	if err := decodeCoordinate(c, st); err != nil {
		return fmt.Errorf("rmc longitude: %w", err)
	}

	if err := c.next("rmc speed"); err != nil {
		return err
	}
	speed, err := parseDecimal(c.field())
	if err != nil {
		return fmt.Errorf("rmc speed: %w", err)
	}
	st.Velocity.Speed = speed

	if err := c.next("rmc heading"); err != nil {
		return err
	}
	heading, err := parseDecimal(c.field())
	if err != nil {
		return fmt.Errorf("rmc heading: %w", err)
	}
	if heading < 0 || heading >= 360 {
		return badData("rmc heading: %v out of range", heading)
	}
	st.Velocity.Heading = heading

	if err := c.next("rmc date"); err != nil {
		return err
	}
	if err := parseDate(c.field(), &st.Timestamp); err != nil {
		return fmt.Errorf("rmc: %w", err)
	}

	// Magnetic variation and its hemisphere are optional.
	if !c.advance() || c.empty() {
		return nil
	}
	mv, err := parseDecimal(c.field())
	if err != nil {
		return fmt.Errorf("rmc magnetic variation: %w", err)
	}
	if c.advance() && c.first() == 'W' {
		mv = -mv
	}
	st.MagneticVariation = mv
	return nil
}
