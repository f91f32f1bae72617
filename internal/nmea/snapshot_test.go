package nmea

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	p := New()
	mustParse(t, p, ggaPayload)
	mustParse(t, p, rmcPayload)
	mustParse(t, p, "GPGLL,4916.45,S,12311.12,W,225444,A")

	snap := p.Export()
	q, err := NewFromSnapshot(snap)
	if err != nil {
		t.Fatalf("NewFromSnapshot err=%v", err)
	}
	if diff := cmp.Diff(p.State(), q.State()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	if q.Timestamp() != p.Timestamp() || q.Coordinates() != p.Coordinates() ||
		q.Velocity() != p.Velocity() || q.DGPS() != p.DGPS() ||
		q.HDOP() != p.HDOP() || q.MagneticVariation() != p.MagneticVariation() ||
		q.Satellites() != p.Satellites() || q.FixQuality() != p.FixQuality() ||
		q.Fix() != p.Fix() || q.Altitude('s') != p.Altitude('s') || q.Altitude('w') != p.Altitude('w') {
		t.Fatalf("accessor mismatch after import")
	}
	if q.Export() != snap {
		t.Fatalf("re-export differs")
	}
}

func TestSnapshot_Binary(t *testing.T) {
	p := New()
	mustParse(t, p, rmcPayload)
	snap := p.Export()

	b, err := snap.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary err=%v", err)
	}
	if len(b) != SnapshotSize {
		t.Fatalf("len=%d want %d", len(b), SnapshotSize)
	}

	var back Snapshot
	if err := back.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary err=%v", err)
	}
	if back != snap {
		t.Fatalf("binary round trip differs")
	}
	if err := back.UnmarshalBinary(b[:10]); err == nil {
		t.Fatalf("expected size error")
	}
}

func TestSnapshot_RejectsUnknownVersion(t *testing.T) {
	var snap Snapshot
	if _, err := NewFromSnapshot(snap); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestSnapshot_ZeroStateHasVersion(t *testing.T) {
	snap := New().Export()
	st, err := snap.State()
	if err != nil {
		t.Fatalf("State err=%v", err)
	}
	if st != (State{}) {
		t.Fatalf("state=%+v want zero", st)
	}
}
