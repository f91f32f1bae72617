package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gpsnav/internal/config"
	"gpsnav/internal/fixled"
	"gpsnav/internal/gps"
	"gpsnav/internal/metrics"
	"gpsnav/internal/mqttpub"
	"gpsnav/internal/nmea"
	"gpsnav/internal/store"
	"gpsnav/internal/udp"
	"gpsnav/internal/web"
)

// storeKeep is how many snapshots survive each prune.
const storeKeep = 100

type liveRuntime struct {
	cfg     config.Config
	status  *web.Status
	logs    *web.LogBuffer
	metrics *metrics.Metrics

	gpsSvc *gps.Service
	store  *store.Store
	udp    *udp.Broadcaster
	mqtt   *mqttpub.Publisher
	led    *fixled.LED

	wg sync.WaitGroup
}

func commitMode(s string) nmea.CommitMode {
	if s == "atomic" {
		return nmea.CommitAtomic
	}
	return nmea.CommitPartial
}

func gpsConfig(cfg config.Config, seed *nmea.Snapshot, m *metrics.Metrics) gps.Config {
	g := cfg.GPS
	out := gps.Config{
		Source:      g.Source,
		Device:      g.Device,
		Baud:        g.Baud,
		GPSDAddr:    g.GPSDAddr,
		TCPAddr:     g.TCPAddr,
		CommitMode:  commitMode(g.CommitMode),
		Seed:        seed,
		ReplayPath:  g.Replay.Path,
		ReplaySpeed: g.Replay.Speed,
		ReplayLoop:  g.Replay.Loop,
		Metrics:     m,
	}
	if g.Record.Enable {
		out.RecordPath = g.Record.Path
	}
	return out
}

// newLiveRuntime opens every configured component and starts GPS acquisition.
// Optional outputs that fail to open are logged and skipped; the store and
// the GPS source are required when configured.
func newLiveRuntime(ctx context.Context, cfg config.Config, logs *web.LogBuffer) (*liveRuntime, error) {
	r := &liveRuntime{
		cfg:     cfg,
		status:  web.NewStatus(),
		logs:    logs,
		metrics: metrics.New(),
	}
	r.status.SetStatic(cfg.GPS.Source, "", "", "")

	var seed *nmea.Snapshot
	if cfg.Store.Enable {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		r.store = st
		r.status.SetStatic("", "", cfg.Store.Path, "")
		snap, ok, err := st.Latest(ctx)
		switch {
		case err != nil:
			log.Printf("store latest failed, starting empty: %v", err)
		case ok:
			seed = &snap
			log.Printf("store seeded navigation state path=%s session=%s", cfg.Store.Path, st.Session())
		}
	}

	svc, err := gps.New(gpsConfig(cfg, seed, r.metrics))
	if err != nil && seed != nil {
		log.Printf("stored snapshot rejected, starting empty: %v", err)
		svc, err = gps.New(gpsConfig(cfg, nil, r.metrics))
	}
	if err != nil {
		r.Close()
		return nil, err
	}
	r.gpsSvc = svc
	if err := svc.Start(ctx); err != nil {
		r.Close()
		return nil, fmt.Errorf("gps start: %w", err)
	}

	if cfg.UDP.Enable {
		b, err := udp.NewBroadcaster(cfg.UDP.Dest)
		if err != nil {
			log.Printf("udp broadcaster init failed: %v", err)
		} else {
			r.udp = b
			r.status.SetStatic("", cfg.UDP.Dest, "", "")
			log.Printf("udp dest=%s interval=%s", cfg.UDP.Dest, cfg.UDP.Interval)
		}
	}

	if cfg.MQTT.Enable {
		p := mqttpub.New(mqttpub.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
			QoS:      cfg.MQTT.QoS,
			Retain:   cfg.MQTT.Retain,
		})
		if err := p.Connect(); err != nil {
			log.Printf("mqtt disabled: %v", err)
		} else {
			r.mqtt = p
			r.status.SetStatic("", "", "", cfg.MQTT.Topic)
		}
	}

	if cfg.FixLED.Enable {
		led, err := fixled.Open(*cfg.FixLED.Pin)
		if err != nil {
			log.Printf("fix led disabled: %v", err)
		} else {
			r.led = led
		}
	}
	return r, nil
}

// Run blocks until ctx ends.
func (r *liveRuntime) Run(ctx context.Context) {
	if r.udp != nil {
		r.goRun(func() { r.runUDP(ctx) })
	}
	if r.store != nil {
		r.goRun(func() { r.runStore(ctx) })
	}
	if r.mqtt != nil {
		r.goRun(func() { r.mqtt.Run(ctx, r.gpsSvc) })
	}
	if r.led != nil {
		r.goRun(func() { r.led.Run(ctx, r.gpsSvc) })
	}
	if r.cfg.Web.Enable {
		h := web.Handler(web.Deps{Status: r.status, Nav: r.gpsSvc, Logs: r.logs, Metrics: r.metrics.Handler()})
		r.goRun(func() {
			log.Printf("web listening on %s", r.cfg.Web.Listen)
			if err := web.Serve(ctx, r.cfg.Web.Listen, h); err != nil && ctx.Err() == nil {
				log.Printf("web server stopped: %v", err)
			}
		})
	}
	<-ctx.Done()
	r.wg.Wait()
}

func (r *liveRuntime) goRun(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

func (r *liveRuntime) runUDP(ctx context.Context) {
	t := time.NewTicker(r.cfg.UDP.Interval)
	defer t.Stop()
	var failures int
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := r.udp.SendJSON(r.gpsSvc.Snapshot()); err != nil {
				failures++
				if failures%100 == 1 {
					log.Printf("udp send failed (count=%d): %v", failures, err)
				}
				continue
			}
			r.status.MarkSend(time.Now().UTC())
		}
	}
}

func (r *liveRuntime) runStore(ctx context.Context) {
	t := time.NewTicker(r.cfg.Store.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.saveSnapshot(ctx)
		}
	}
}

func (r *liveRuntime) saveSnapshot(ctx context.Context) {
	if err := r.store.Save(ctx, r.gpsSvc.Export()); err != nil {
		log.Printf("store save failed: %v", err)
		return
	}
	r.status.MarkSave(time.Now().UTC())
	if _, err := r.store.Prune(ctx, storeKeep); err != nil {
		log.Printf("store prune failed: %v", err)
	}
}

// Close stops acquisition and saves a final snapshot. Call after Run returns.
func (r *liveRuntime) Close() {
	if r.gpsSvc != nil {
		r.gpsSvc.Close()
	}
	if r.store != nil {
		if r.gpsSvc != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			r.saveSnapshot(ctx)
			cancel()
		}
		if err := r.store.Close(); err != nil {
			log.Printf("store close failed: %v", err)
		}
	}
	if r.udp != nil {
		_ = r.udp.Close()
	}
	if r.mqtt != nil {
		r.mqtt.Close()
	}
	if r.led != nil {
		_ = r.led.Close()
	}
}
