package main

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gpsnav/internal/replay"
)

func nmeaLine(payload string) string {
	ck := byte(0)
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, ck)
}

var (
	ggaLine  = nmeaLine("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,5,0120")
	rmcLine  = nmeaLine("GPRMC,123520,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")
	voidLine = nmeaLine("GPRMC,123521,V,,,,,,,240394,,")
)

// writeLog records sentences one second apart and returns the log path.
func writeLog(t *testing.T, sentences ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nmea.log")
	w, err := replay.CreateWriter(path)
	if err != nil {
		t.Fatalf("CreateWriter() error: %v", err)
	}
	now := time.Now()
	for i, s := range sentences {
		if err := w.WriteSentence(now.Add(time.Duration(i)*time.Second), s); err != nil {
			_ = w.Close()
			t.Fatalf("WriteSentence() error: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	return path
}
