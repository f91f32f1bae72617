package gps

import (
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// logThrottle prints at most one line per interval and reports how many
// were suppressed in between.
type logThrottle struct {
	mu         sync.Mutex
	lim        *rate.Limiter
	suppressed int
	now        func() time.Time
	printf     func(format string, args ...any)
}

func newLogThrottle(every time.Duration) *logThrottle {
	return &logThrottle{
		lim:    rate.NewLimiter(rate.Every(every), 1),
		now:    time.Now,
		printf: log.Printf,
	}
}

func (t *logThrottle) Printf(format string, args ...any) {
	t.mu.Lock()
	if !t.lim.AllowN(t.now(), 1) {
		t.suppressed++
		t.mu.Unlock()
		return
	}
	suppressed := t.suppressed
	t.suppressed = 0
	t.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if suppressed > 0 {
		msg = fmt.Sprintf("%s (suppressed=%d)", msg, suppressed)
	}
	t.printf("%s", msg)
}
