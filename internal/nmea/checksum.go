package nmea

import "bytes"

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return 0
	}
}

// HexByte decodes two hex characters, high nibble first. Characters outside
// [0-9A-Fa-f] decode as zero.
func HexByte(h, l byte) byte {
	return hexNibble(h)<<4 | hexNibble(l)
}

// Checksum is the XOR of every byte in body.
func Checksum(body []byte) byte {
	var ck byte
	for _, b := range body {
		ck ^= b
	}
	return ck
}

// ValidateChecksum checks the trailing *HH of a sentence against the XOR of
// the bytes between the leading '$' and the '*'.
//
// The '*' must sit 3 to 5 bytes from the end of buf: two hex digits plus an
// optional CR, LF or terminator.
func ValidateChecksum(buf []byte) error {
	star := bytes.LastIndexByte(buf, '*')
	if star < 0 {
		return ErrMissingChecksum
	}
	if tail := len(buf) - star; tail < 3 || tail > 5 {
		return ErrBadChecksum
	}
	if star < 1 {
		return ErrBadChecksum
	}
	want := HexByte(buf[star+1], buf[star+2])
	if Checksum(buf[1:star]) != want {
		return ErrBadChecksum
	}
	return nil
}
