package nmea

import "fmt"

// GLL: Geographic Position
//
//	1,2: latitude, N/S
//	3,4: longitude, E/W
//	5: time (optional)
//	6: status A/V (optional)
//
// Position is mandatory. The sentence may end after any later field.
func decodeGLL(c *fieldCursor, st *State) error {
	if err := c.next("gll latitude"); err != nil {
		return err
	}
	if err := decodeCoordinate(c, st); err != nil {
		return fmt.Errorf("gll latitude: %w", err)
	}
	if err := c.next("gll longitude"); err != nil {
		return err
	}
	if err := decodeCoordinate(c, st); err != nil {
		return fmt.Errorf("gll longitude: %w", err)
	}

	if !c.advance() {
		return nil
	}
	if !c.empty() {
		if err := parseTime(c.field(), &st.Timestamp); err != nil {
			return fmt.Errorf("gll: %w", err)
		}
	}

	if !c.advance() {
		return nil
	}
	// Anything other than A or V leaves the fix flag alone.
	switch c.first() {
	case 'A':
		st.Fix = true
	case 'V':
		st.Fix = false
	}
	return nil
}
