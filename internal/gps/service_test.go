package gps

import (
	"context"
	"errors"
	"math"
	"testing"

	"gpsnav/internal/metrics"
	"gpsnav/internal/nmea"
)

func TestIngest_GGAUpdatesSnapshot(t *testing.T) {
	s := mustNew(t, Config{Source: "tcp", TCPAddr: "127.0.0.1:1", Metrics: metrics.New()})

	if err := s.Ingest(ggaLine + "\r\n"); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	snap := s.Snapshot()
	if snap.Satellites != 8 || snap.FixQuality != "gps" {
		t.Fatalf("snap=%+v", snap)
	}
	if math.Abs(snap.LatDeg-48.1173) > 1e-6 || math.Abs(snap.LonDeg-11.516666) > 1e-5 {
		t.Fatalf("lat=%v lon=%v", snap.LatDeg, snap.LonDeg)
	}
	if snap.AltMSLM != 545.4 || snap.AltWGS84M != 46.9 {
		t.Fatalf("alt=%v/%v", snap.AltMSLM, snap.AltWGS84M)
	}
	if snap.DGPSStation != 120 || snap.DGPSAgeSec != 5 {
		t.Fatalf("dgps=%d/%d", snap.DGPSStation, snap.DGPSAgeSec)
	}
	if snap.UTCTime != "12:35:19.000" {
		t.Fatalf("utc_time=%q", snap.UTCTime)
	}
	if snap.Sentences != 1 || snap.Outcomes["ok"] != 1 || snap.LastKind != "GGA" || snap.LastOutcome != "ok" {
		t.Fatalf("counters=%+v", snap)
	}
	if snap.LastUpdateUTC == "" {
		t.Fatalf("expected last_update_utc")
	}

	st, err := s.Export().State()
	if err != nil {
		t.Fatalf("Export().State() error: %v", err)
	}
	if st.Satellites != 8 {
		t.Fatalf("exported satellites=%d", st.Satellites)
	}
}

func TestIngest_RMCFixAndDate(t *testing.T) {
	s := mustNew(t, Config{Source: "tcp", TCPAddr: "x"})
	if err := s.Ingest(rmcLine); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	snap := s.Snapshot()
	if !snap.Fix || snap.GroundKt != 22.4 || snap.TrackDeg != 84.4 || snap.MagVarDeg != -3.1 {
		t.Fatalf("snap=%+v", snap)
	}
	if snap.UTCDate != "23/03/94" {
		t.Fatalf("utc_date=%q", snap.UTCDate)
	}
}

func TestIngest_IgnoresChatter(t *testing.T) {
	s := mustNew(t, Config{Source: "tcp", TCPAddr: "x"})
	for _, line := range []string{"", "   ", `{"class":"VERSION"}`, "u-blox ready"} {
		if err := s.Ingest(line); err != nil {
			t.Fatalf("Ingest(%q) error: %v", line, err)
		}
	}
	if got := s.Snapshot().Sentences; got != 0 {
		t.Fatalf("sentences=%d want 0", got)
	}
}

func TestIngest_RecordsErrors(t *testing.T) {
	s := mustNew(t, Config{Source: "tcp", TCPAddr: "x"})
	s.errLog.printf = func(string, ...any) {}

	bad := ggaLine[:len(ggaLine)-2] + "00"
	err := s.Ingest(bad)
	if !errors.Is(err, nmea.ErrBadChecksum) {
		t.Fatalf("err=%v want ErrBadChecksum", err)
	}
	snap := s.Snapshot()
	if snap.Outcomes["bad_checksum"] != 1 || snap.LastOutcome != "bad_checksum" || snap.LastError == "" {
		t.Fatalf("snap=%+v", snap)
	}

	void := nmeaLine("GPRMC,123520,V,,,,,,,230394,,")
	if err := s.Ingest(void); !errors.Is(err, nmea.ErrNoFix) {
		t.Fatalf("err=%v want ErrNoFix", err)
	}
	snap = s.Snapshot()
	if snap.Fix || snap.LastOutcome != "no_fix" || snap.UTCDate != "23/03/94" {
		t.Fatalf("snap=%+v", snap)
	}
	if snap.LastError == "" {
		t.Fatalf("expected the checksum error to stay visible")
	}
}

func TestNew_SeedRestoresState(t *testing.T) {
	p := nmea.New()
	if err := p.ParseString(ggaLine); err != nil {
		t.Fatalf("ParseString() error: %v", err)
	}
	seed := p.Export()

	s := mustNew(t, Config{Source: "tcp", TCPAddr: "x", Seed: &seed})
	snap := s.Snapshot()
	if snap.Satellites != 8 || snap.AltMSLM != 545.4 {
		t.Fatalf("seeded snap=%+v", snap)
	}
	if s.Export() != seed {
		t.Fatalf("Export() differs from seed")
	}
}

func TestNew_RejectsBadSeed(t *testing.T) {
	var seed nmea.Snapshot
	seed[0] = 0xEE
	if _, err := New(Config{Seed: &seed}); err == nil {
		t.Fatalf("expected error for unknown snapshot version")
	}
}

func TestNew_CommitMode(t *testing.T) {
	s := mustNew(t, Config{Source: "tcp", TCPAddr: "x", CommitMode: nmea.CommitAtomic})
	if got := s.Snapshot().CommitMode; got != "atomic" {
		t.Fatalf("commit_mode=%q", got)
	}
	s.errLog.printf = func(string, ...any) {}

	// Fix quality is bad; atomic mode must leave time untouched.
	_ = s.Ingest(nmeaLine("GPGGA,101010,4807.038,N,01131.000,E,7,08,0.9,545.4,M,46.9,M,5,0120"))
	if got := s.Snapshot().UTCTime; got != "00:00:00.000" {
		t.Fatalf("utc_time=%q want untouched", got)
	}
}

func TestSubscribe_ReceivesPublished(t *testing.T) {
	s := mustNew(t, Config{Source: "tcp", TCPAddr: "x"})
	id, ch := s.Subscribe(4)
	defer s.Unsubscribe(id)

	_ = s.Ingest(gllLine)
	select {
	case snap := <-ch:
		if snap.LastKind != "GLL" {
			t.Fatalf("last_kind=%q", snap.LastKind)
		}
	default:
		t.Fatalf("expected a published snapshot")
	}

	// Late subscribers get the last value immediately.
	id2, ch2 := s.Subscribe(1)
	defer s.Unsubscribe(id2)
	select {
	case snap := <-ch2:
		if snap.Sentences != 1 {
			t.Fatalf("sentences=%d", snap.Sentences)
		}
	default:
		t.Fatalf("expected replay of last snapshot")
	}
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	s := mustNew(t, Config{Source: "tcp", TCPAddr: "x"})
	id, ch := s.Subscribe(1)
	s.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	// Publishing after unsubscribe must not panic.
	_ = s.Ingest(gllLine)
}

func TestStart_UnknownSource(t *testing.T) {
	s := mustNew(t, Config{Source: "carrier-pigeon"})
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestClose_EndsSubscriptions(t *testing.T) {
	s := mustNew(t, Config{Source: "tcp", TCPAddr: "x"})
	id, ch := s.Subscribe(1)
	defer s.Unsubscribe(id)

	s.Close()
	for range ch {
	}

	id2, ch2 := s.Subscribe(1)
	s.Unsubscribe(id2)
	if _, ok := <-ch2; ok {
		t.Fatalf("subscribe after Close returned an open channel")
	}
	// Publishing after Close must not panic.
	_ = s.Ingest(gllLine)
}
