package web

import (
	"sync/atomic"
	"time"

	"gpsnav/internal/gps"
)

// Status collects process-level counters that are not part of the
// navigation state itself.
type Status struct {
	startUnixNano int64

	udpSent      uint64
	lastSendNano int64
	storeSaves   uint64
	lastSaveNano int64

	source  atomic.Value // string
	udpDest atomic.Value // string
	store   atomic.Value // string
	mqtt    atomic.Value // string
}

func NewStatus() *Status {
	s := &Status{}
	atomic.StoreInt64(&s.startUnixNano, time.Now().UTC().UnixNano())
	s.source.Store("")
	s.udpDest.Store("")
	s.store.Store("")
	s.mqtt.Store("")
	return s
}

// SetStatic records configuration details shown on the status page. Empty
// values leave the previous setting in place.
func (s *Status) SetStatic(source, udpDest, storePath, mqttTopic string) {
	if source != "" {
		s.source.Store(source)
	}
	if udpDest != "" {
		s.udpDest.Store(udpDest)
	}
	if storePath != "" {
		s.store.Store(storePath)
	}
	if mqttTopic != "" {
		s.mqtt.Store(mqttTopic)
	}
}

func (s *Status) MarkSend(nowUTC time.Time) {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	atomic.StoreInt64(&s.lastSendNano, nowUTC.UnixNano())
	atomic.AddUint64(&s.udpSent, 1)
}

func (s *Status) MarkSave(nowUTC time.Time) {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	atomic.StoreInt64(&s.lastSaveNano, nowUTC.UnixNano())
	atomic.AddUint64(&s.storeSaves, 1)
}

type StatusSnapshot struct {
	Service     string       `json:"service"`
	NowUTC      string       `json:"now_utc"`
	UptimeSec   int64        `json:"uptime_sec"`
	Source      string       `json:"source"`
	UDPDest     string       `json:"udp_dest,omitempty"`
	UDPSent     uint64       `json:"udp_sent_total"`
	LastSendUTC string       `json:"last_send_utc,omitempty"`
	StorePath   string       `json:"store_path,omitempty"`
	StoreSaves  uint64       `json:"store_saves_total"`
	LastSaveUTC string       `json:"last_save_utc,omitempty"`
	MQTTTopic   string       `json:"mqtt_topic,omitempty"`
	GPS         gps.Snapshot `json:"gps"`
}

func (s *Status) Snapshot(nowUTC time.Time, nav gps.Snapshot) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()

	snap := StatusSnapshot{
		Service:    "gpsnav",
		NowUTC:     nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec:  int64(nowUTC.Sub(start).Seconds()),
		Source:     s.source.Load().(string),
		UDPDest:    s.udpDest.Load().(string),
		UDPSent:    atomic.LoadUint64(&s.udpSent),
		StorePath:  s.store.Load().(string),
		StoreSaves: atomic.LoadUint64(&s.storeSaves),
		MQTTTopic:  s.mqtt.Load().(string),
		GPS:        nav,
	}
	if t := atomic.LoadInt64(&s.lastSendNano); t != 0 {
		snap.LastSendUTC = time.Unix(0, t).UTC().Format(time.RFC3339Nano)
	}
	if t := atomic.LoadInt64(&s.lastSaveNano); t != 0 {
		snap.LastSaveUTC = time.Unix(0, t).UTC().Format(time.RFC3339Nano)
	}
	return snap
}
