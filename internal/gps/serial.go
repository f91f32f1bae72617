package gps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"go.uber.org/ratelimit"
)

func supportedBaud(baud int) bool {
	switch baud {
	case 4800, 9600, 19200, 38400, 57600, 115200:
		return true
	}
	return false
}

// runSerial keeps a serial receiver open, reopening it at most once every two
// seconds after unplug or read failure.
func (s *Service) runSerial(ctx context.Context) {
	rl := ratelimit.New(1, ratelimit.Per(2*time.Second))
	for {
		if !takeCtx(ctx, rl) {
			return
		}

		device := strings.TrimSpace(s.cfg.Device)
		if device == "" {
			device = autoDetectDevice()
			if device == "" {
				s.setConnState("error", "gps auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
				continue
			}
			s.setDevice(device)
		}

		s.metrics.ObserveReconnect("serial")
		s.setConnState("connecting", "")
		port, err := openSerial(device, s.cfg.Baud)
		if err != nil {
			s.setConnState("error", fmt.Sprintf("gps open failed device=%s baud=%d: %v", device, s.cfg.Baud, err))
			continue
		}
		if !s.trackCloser(ctx, port) {
			return
		}

		log.Printf("gps serial open device=%s baud=%d", device, s.cfg.Baud)
		s.setConnState("connected", "")
		err = s.readLines(ctx, port)
		_ = port.Close()
		s.untrackCloser(port)
		if ctx.Err() != nil {
			return
		}
		s.setConnState("disconnected", fmt.Sprintf("gps read stopped: %v", err))
	}
}

// takeCtx waits for a limiter slot. It returns false as soon as ctx ends; the
// pending Take finishes in the background.
func takeCtx(ctx context.Context, rl ratelimit.Limiter) bool {
	if ctx.Err() != nil {
		return false
	}
	done := make(chan struct{})
	go func() {
		rl.Take()
		close(done)
	}()
	select {
	case <-done:
		return ctx.Err() == nil
	case <-ctx.Done():
		return false
	}
}

// readLines feeds every line from r to Ingest until r fails or ctx ends.
func (s *Service) readLines(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	// NMEA sentences are at most 82 chars, but allow some headroom.
	scanner.Buffer(make([]byte, 0, 256), 4096)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_ = s.Ingest(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}
