package nmea

import (
	"errors"
	"fmt"
)

var (
	ErrNullInput       = errors.New("nmea: null input")
	ErrUnknownSentence = errors.New("nmea: unknown sentence")
	ErrMissingChecksum = errors.New("nmea: missing checksum")
	ErrBadChecksum     = errors.New("nmea: bad checksum")
	ErrBadData         = errors.New("nmea: bad data")

	// ErrNoFix reports a well formed sentence from a receiver without an
	// active fix. Only the fields before the status (and the RMC date) were
	// updated.
	ErrNoFix = errors.New("nmea: no fix")
)

func badData(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrBadData}, args...)...)
}

var outcomes = []struct {
	err   error
	label string
	code  byte
}{
	{ErrNullInput, "null_input", 0xFF},
	{ErrUnknownSentence, "unknown_sentence", 0xBF},
	{ErrMissingChecksum, "missing_checksum", 0xBE},
	{ErrBadChecksum, "bad_checksum", 0xBD},
	{ErrBadData, "bad_data", 0x9F},
	{ErrNoFix, "no_fix", 0x9E},
}

// Outcome returns a stable label for a Parse result, suitable for metric
// labels and log fields. Errors not produced by this package map to "error".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return "error"
}

// Code returns the one-byte result code used on the wire by embedded
// consumers of this parser (0x00 on success).
func Code(err error) byte {
	if err == nil {
		return 0x00
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.code
		}
	}
	return 0xFF
}
