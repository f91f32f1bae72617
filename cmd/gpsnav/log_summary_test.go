package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"gpsnav/internal/replay"
)

func TestSummarizeSentenceLog(t *testing.T) {
	bad := ggaLine[:len(ggaLine)-2] + "00"
	recs := []replay.Record{
		{Start: true},
		{At: 0, Sentence: ggaLine},
		{At: 200 * time.Millisecond, Sentence: rmcLine},
		{At: 300 * time.Millisecond, Sentence: bad},
		{Start: true},
		{At: 1 * time.Second, Sentence: voidLine},
		{At: 1 * time.Second, Sentence: "$GPXYZ,1*00"},
	}

	s := summarizeSentenceLog(recs)
	if s.Segments != 2 {
		t.Fatalf("segments=%d want 2", s.Segments)
	}
	if s.Sentences != 5 {
		t.Fatalf("sentences=%d want 5", s.Sentences)
	}
	if s.KindCounts["GGA"] != 2 || s.KindCounts["RMC"] != 2 {
		t.Fatalf("kinds=%v", s.KindCounts)
	}
	if s.Outcomes["ok"] != 2 || s.Outcomes["bad_checksum"] != 2 || s.Outcomes["no_fix"] != 1 {
		t.Fatalf("outcomes=%v", s.Outcomes)
	}
	// RMC A sets the fix, the void RMC clears it.
	if s.FixChanges != 2 {
		t.Fatalf("fix_changes=%d want 2", s.FixChanges)
	}
	if s.MaxDuration != 1*time.Second {
		t.Fatalf("maxDuration=%s want 1s", s.MaxDuration)
	}
}

func TestSummarizeSentenceLog_NoStartMarker(t *testing.T) {
	s := summarizeSentenceLog([]replay.Record{{Sentence: ggaLine}})
	if s.Segments != 1 || s.Sentences != 1 {
		t.Fatalf("summary=%+v", s)
	}
	if empty := summarizeSentenceLog(nil); empty.Segments != 0 || empty.Sentences != 0 {
		t.Fatalf("empty summary=%+v", empty)
	}
}

func TestPrintLogSummary_PrintsExpectedFields(t *testing.T) {
	path := writeLog(t, ggaLine, rmcLine, voidLine)

	var out bytes.Buffer
	if err := printLogSummary(&out, path); err != nil {
		t.Fatalf("printLogSummary() error: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"path: ",
		"segments: 1\n",
		"sentences: 3\n",
		"kind_counts:\n",
		"  GGA: 1\n",
		"  RMC: 2\n",
		"outcome_counts:\n",
		"  no_fix: 1\n",
		"  ok: 2\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in output:\n%s", want, got)
		}
	}
}

func TestPrintLogSummary_EmptyPath(t *testing.T) {
	if err := printLogSummary(&bytes.Buffer{}, "  "); err == nil {
		t.Fatalf("expected error")
	}
}
