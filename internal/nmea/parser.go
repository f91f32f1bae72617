package nmea

import (
	"bytes"
	"errors"
)

// CommitMode controls what a failed Parse leaves behind.
type CommitMode uint8

const (
	// CommitPartial keeps every field that validated before the failing one.
	CommitPartial CommitMode = iota
	// CommitAtomic discards the whole sentence unless it parsed cleanly
	// (or ended in ErrNoFix).
	CommitAtomic
)

func (m CommitMode) String() string {
	if m == CommitAtomic {
		return "atomic"
	}
	return "partial"
}

type Option func(*Parser)

func WithCommitMode(m CommitMode) Option {
	return func(p *Parser) { p.mode = m }
}

type Parser struct {
	state State
	mode  CommitMode
}

func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, o := range opts {
		o(p)
	}
	return p
}

// NewFromSnapshot returns a parser whose state is restored from snap.
func NewFromSnapshot(snap Snapshot, opts ...Option) (*Parser, error) {
	p := New(opts...)
	if err := p.Import(snap); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse decodes one sentence. buf is bounded by its first NUL byte, if any.
func (p *Parser) Parse(buf []byte) error {
	if buf == nil {
		return ErrNullInput
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	if err := ValidateChecksum(buf); err != nil {
		return err
	}
	decode := decoderFor(Identify(buf))
	if decode == nil {
		return ErrUnknownSentence
	}

	stage := p.state
	err := decode(newFieldCursor(buf), &stage)
	if err == nil || errors.Is(err, ErrNoFix) || p.mode == CommitPartial {
		p.state = stage
	}
	return err
}

// ParseN decodes the first n bytes of buf. n <= 0 means the whole buffer up
// to its terminator.
func (p *Parser) ParseN(buf []byte, n int) error {
	if buf != nil && n > 0 && n < len(buf) {
		buf = buf[:n]
	}
	return p.Parse(buf)
}

func (p *Parser) ParseString(s string) error {
	return p.Parse([]byte(s))
}

func (p *Parser) CommitMode() CommitMode { return p.mode }

// State returns a copy of the whole navigation state.
func (p *Parser) State() State { return p.state }

func (p *Parser) Timestamp() Timestamp     { return p.state.Timestamp }
func (p *Parser) Coordinates() Coordinates { return p.state.Coordinates }
func (p *Parser) Velocity() Velocity       { return p.state.Velocity }
func (p *Parser) DGPS() DGPS               { return p.state.DGPS }
func (p *Parser) HDOP() float64            { return p.state.HDOP }
func (p *Parser) Satellites() uint8        { return p.state.Satellites }
func (p *Parser) FixQuality() FixQuality   { return p.state.FixQuality }
func (p *Parser) Fix() bool                { return p.state.Fix }

func (p *Parser) MagneticVariation() float64 {
	return p.state.MagneticVariation
}

// Altitude returns the WGS84 altitude for ref 'w'/'W' and the sea level
// altitude otherwise.
func (p *Parser) Altitude(ref byte) float64 {
	return p.state.Altitude(ref)
}

// Export captures the full state in its raw stored form.
func (p *Parser) Export() Snapshot {
	return p.state.Export()
}

// Import replaces the full state with snap.
func (p *Parser) Import(snap Snapshot) error {
	st, err := snap.State()
	if err != nil {
		return err
	}
	p.state = st
	return nil
}
