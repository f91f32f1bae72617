package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"gpsnav/internal/nmea"
	"gpsnav/internal/replay"
)

type logSummary struct {
	Segments    int
	Sentences   int
	MaxDuration time.Duration
	KindCounts  map[string]int
	Outcomes    map[string]int
	FixChanges  int
}

// summarizeSentenceLog runs records through a fresh parser and counts kinds
// and outcomes. Each START segment keeps the same parser, as a live run would.
func summarizeSentenceLog(records []replay.Record) logSummary {
	s := logSummary{KindCounts: map[string]int{}, Outcomes: map[string]int{}}
	if len(records) == 0 {
		return s
	}

	p := nmea.New()
	origin := time.Duration(0)
	hasSentences := false
	segments := 0
	lastFix := p.Fix()

	for _, r := range records {
		if r.Start {
			segments++
			origin = r.At
			continue
		}
		hasSentences = true

		s.Sentences++
		at := r.At - origin
		if at < 0 {
			at = 0
		}
		if at > s.MaxDuration {
			s.MaxDuration = at
		}

		kind := nmea.Identify([]byte(r.Sentence))
		err := p.ParseString(r.Sentence)
		s.KindCounts[kind.String()]++
		s.Outcomes[nmea.Outcome(err)]++
		if p.Fix() != lastFix {
			s.FixChanges++
			lastFix = p.Fix()
		}
	}
	if segments == 0 && hasSentences {
		segments = 1
	}
	s.Segments = segments
	return s
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printLogSummary(w io.Writer, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	recs, err := replay.ReadFile(path)
	if err != nil {
		return err
	}

	s := summarizeSentenceLog(recs)

	fmt.Fprintf(w, "path: %s (%s)\n", path, humanize.Bytes(uint64(fi.Size())))
	fmt.Fprintf(w, "segments: %d\n", s.Segments)
	fmt.Fprintf(w, "sentences: %s\n", humanize.Comma(int64(s.Sentences)))
	fmt.Fprintf(w, "max_duration: %s\n", s.MaxDuration)
	fmt.Fprintf(w, "fix_changes: %d\n", s.FixChanges)
	fmt.Fprintf(w, "kind_counts:\n")
	for _, k := range sortedKeys(s.KindCounts) {
		fmt.Fprintf(w, "  %s: %s\n", k, humanize.Comma(int64(s.KindCounts[k])))
	}
	fmt.Fprintf(w, "outcome_counts:\n")
	for _, k := range sortedKeys(s.Outcomes) {
		fmt.Fprintf(w, "  %s: %s\n", k, humanize.Comma(int64(s.Outcomes[k])))
	}
	return nil
}
