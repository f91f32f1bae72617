package gps

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"
)

// netSource describes a line-oriented TCP feed. hello, when set, is written
// after each connect.
type netSource struct {
	name  string
	addr  string
	hello []byte

	dialTimeout time.Duration
	minBackoff  time.Duration
	maxBackoff  time.Duration
}

func (n netSource) withDefaults() netSource {
	if n.dialTimeout <= 0 {
		n.dialTimeout = 2 * time.Second
	}
	if n.minBackoff <= 0 {
		n.minBackoff = 250 * time.Millisecond
	}
	if n.maxBackoff <= 0 {
		n.maxBackoff = 10 * time.Second
	}
	return n
}

// runNet connects to src and reads sentences, reconnecting with exponential
// backoff until ctx ends.
func (s *Service) runNet(ctx context.Context, src netSource) {
	src = src.withDefaults()
	dialer := &net.Dialer{Timeout: src.dialTimeout}
	backoff := src.minBackoff

	log.Printf("gps enabled source=%s addr=%s", src.name, src.addr)
	for {
		if ctx.Err() != nil {
			return
		}

		s.metrics.ObserveReconnect(src.name)
		s.setConnState("connecting", "")
		conn, err := dialer.DialContext(ctx, "tcp", src.addr)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.setConnState("error", fmt.Sprintf("%s dial failed addr=%s: %v", src.name, src.addr, err))
			if !sleepCtx(ctx, backoff) {
				return
			}
			if backoff < src.maxBackoff {
				backoff *= 2
				if backoff > src.maxBackoff {
					backoff = src.maxBackoff
				}
			}
			continue
		}
		backoff = src.minBackoff

		if !s.trackCloser(ctx, conn) {
			return
		}
		if len(src.hello) > 0 {
			if _, err := conn.Write(src.hello); err != nil {
				_ = conn.Close()
				s.untrackCloser(conn)
				s.setConnState("error", fmt.Sprintf("%s handshake failed: %v", src.name, err))
				if !sleepCtx(ctx, backoff) {
					return
				}
				continue
			}
		}

		s.setConnState("connected", "")
		err = s.readLines(ctx, conn)
		_ = conn.Close()
		s.untrackCloser(conn)
		if ctx.Err() != nil {
			return
		}
		s.setConnState("disconnected", fmt.Sprintf("%s read stopped: %v", src.name, err))
		if !sleepCtx(ctx, backoff) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
