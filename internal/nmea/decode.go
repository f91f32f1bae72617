package nmea

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// parseUint reads the leading digits of f. The value saturates at max rather
// than wrapping.
func parseUint(f []byte, max uint16) (uint16, error) {
	if len(f) == 0 {
		return 0, badData("integer: empty field")
	}
	var v uint32
	for _, b := range f {
		if !isDigit(b) {
			break
		}
		v = v*10 + uint32(b-'0')
		if v > uint32(max) {
			v = uint32(max)
		}
	}
	return uint16(v), nil
}

// parseDecimal reads a signed fixed-point number. Every '-' toggles the sign,
// so "--1.5" is +1.5; '+' is skipped and '.' starts counting fractional
// digits.
func parseDecimal(f []byte) (float64, error) {
	if len(f) == 0 {
		return 0, badData("decimal: empty field")
	}
	var (
		v       float64
		fracs   int
		inFracs bool
		neg     bool
	)
	for _, b := range f {
		switch {
		case b == '.':
			inFracs = true
			continue
		case b == '-':
			neg = !neg
			continue
		case b == '+':
			continue
		case !isDigit(b):
			return 0, badData("decimal: unexpected %q in %q", b, f)
		}
		v = v*10 + float64(b-'0')
		if inFracs {
			fracs++
		}
	}
	for i := 0; i < fracs; i++ {
		v /= 10
	}
	if neg {
		v = -v
	}
	return v, nil
}

func twoDigits(h, l byte) (uint8, bool) {
	if !isDigit(h) || !isDigit(l) {
		return 0, false
	}
	return (h-'0')*10 + (l - '0'), true
}

// parseTime decodes hhmmss[.sss] by fixed offset into ts. Each group is
// stored as soon as it passes its range check, so a bad minute leaves the new
// hour in place.
func parseTime(f []byte, ts *Timestamp) error {
	if len(f) < 6 {
		return badData("time: short field %q", f)
	}
	h, ok := twoDigits(f[0], f[1])
	if !ok || h > 23 {
		return badData("time: hour %q out of range", f[0:2])
	}
	ts.Hour = h

	m, ok := twoDigits(f[2], f[3])
	if !ok || m > 59 {
		return badData("time: minute %q out of range", f[2:4])
	}
	ts.Minute = m

	s, ok := twoDigits(f[4], f[5])
	if !ok || s > 59 {
		return badData("time: second %q out of range", f[4:6])
	}
	ts.Second = s

	var ms uint16
	if len(f) > 6 {
		if f[6] != '.' {
			return badData("time: expected '.' in %q", f)
		}
		// Three digits after the point; missing trailing digits count as zero.
		for i := 7; i < 10; i++ {
			ms *= 10
			if i < len(f) {
				if !isDigit(f[i]) {
					return badData("time: millisecond %q", f[7:])
				}
				ms += uint16(f[i] - '0')
			}
		}
	}
	if ms > 999 {
		return badData("time: millisecond %d out of range", ms)
	}
	ts.Millisecond = ms
	return nil
}

// parseDate decodes ddmmyy into ts. Zero is rejected for all three groups.
func parseDate(f []byte, ts *Timestamp) error {
	if len(f) < 6 {
		return badData("date: short field %q", f)
	}
	d, ok := twoDigits(f[0], f[1])
	if !ok || d < 1 || d > 31 {
		return badData("date: day %q out of range", f[0:2])
	}
	ts.Day = d

	m, ok := twoDigits(f[2], f[3])
	if !ok || m < 1 || m > 12 {
		return badData("date: month %q out of range", f[2:4])
	}
	ts.Month = m

	y, ok := twoDigits(f[4], f[5])
	if !ok || y < 1 {
		return badData("date: year %q out of range", f[4:6])
	}
	ts.Year = y
	return nil
}
