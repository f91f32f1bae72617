package nmea

import "bytes"

// SentenceKind identifies one of the supported sentences.
type SentenceKind uint8

const (
	KindUnknown SentenceKind = iota
	KindGGA
	KindGLL
	KindRMC
)

func (k SentenceKind) String() string {
	switch k {
	case KindGGA:
		return "GGA"
	case KindGLL:
		return "GLL"
	case KindRMC:
		return "RMC"
	default:
		return "unknown"
	}
}

// decodeFunc walks the fields of one sentence kind, writing into st. The
// cursor starts on the '$'.
type decodeFunc func(c *fieldCursor, st *State) error

var sentences = []struct {
	kind   SentenceKind
	id     []byte
	decode decodeFunc
}{
	{KindGGA, []byte("GPGGA"), decodeGGA},
	{KindGLL, []byte("GPGLL"), decodeGLL},
	{KindRMC, []byte("GPRMC"), decodeRMC},
}

// Identify reports which supported sentence buf contains. The talker and
// type may appear anywhere in the buffer.
func Identify(buf []byte) SentenceKind {
	for _, s := range sentences {
		if bytes.Contains(buf, s.id) {
			return s.kind
		}
	}
	return KindUnknown
}

func decoderFor(k SentenceKind) decodeFunc {
	for _, s := range sentences {
		if s.kind == k {
			return s.decode
		}
	}
	return nil
}
