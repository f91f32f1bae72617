// Package fixled lights a GPIO-driven LED while the receiver reports a fix.
package fixled

import (
	"context"
	"log"
	"sync"

	"gpsnav/internal/gps"
)

type outputLine interface {
	SetValue(v int) error
	Close() error
}

var openLineFn = openLine

type source interface {
	Subscribe(buffer int) (int, <-chan gps.Snapshot)
	Unsubscribe(id int)
}

type LED struct {
	pin int

	mu   sync.Mutex
	line outputLine
	on   bool
}

func Open(pin int) (*LED, error) {
	line, err := openLineFn(pin)
	if err != nil {
		return nil, err
	}
	return &LED{pin: pin, line: line}, nil
}

// Set drives the line. The GPIO is only written when the value changes.
func (l *LED) Set(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.line == nil || on == l.on {
		return nil
	}
	v := 0
	if on {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return err
	}
	l.on = on
	return nil
}

func (l *LED) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

// Run mirrors the fix flag of every snapshot from src until ctx ends.
func (l *LED) Run(ctx context.Context, src source) {
	id, ch := src.Subscribe(4)
	defer src.Unsubscribe(id)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if err := l.Set(snap.Fix); err != nil {
				log.Printf("fixled pin=%d set failed: %v", l.pin, err)
			}
		}
	}
}

// Close turns the LED off and releases the line.
func (l *LED) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.line == nil {
		return nil
	}
	_ = l.line.SetValue(0)
	err := l.line.Close()
	l.line = nil
	l.on = false
	return err
}
