package gps

import "sync"

// broadcaster fans published snapshots out to subscribers. It keeps the most
// recent value so new subscribers get an immediate sample.
type broadcaster struct {
	mu       sync.RWMutex
	subs     map[int]chan Snapshot
	nextID   int
	last     Snapshot
	haveLast bool
	closed   bool
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan Snapshot)}
}

func (b *broadcaster) Subscribe(buffer int) (int, <-chan Snapshot) {
	if b == nil {
		return 0, nil
	}
	if buffer <= 0 {
		buffer = 2
	}
	ch := make(chan Snapshot, buffer)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return -1, ch
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	last := b.last
	have := b.haveLast
	b.mu.Unlock()
	if have {
		select {
		case ch <- last:
		default:
		}
	}
	return id, ch
}

func (b *broadcaster) Unsubscribe(id int) {
	if b == nil {
		return
	}
	b.mu.Lock()
	ch, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *broadcaster) Publish(snap Snapshot) {
	if b == nil {
		return
	}
	// Hold the read lock while sending so Unsubscribe cannot close a channel
	// mid-send. Sends never block.
	b.mu.RLock()
	for _, ch := range b.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	b.mu.RUnlock()

	b.mu.Lock()
	b.last = snap
	b.haveLast = true
	b.mu.Unlock()
}

// Close ends every subscription; receivers see their channel closed.
func (b *broadcaster) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
