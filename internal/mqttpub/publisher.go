// Package mqttpub publishes navigation snapshots as JSON to an MQTT broker.
package mqttpub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"gpsnav/internal/gps"
)

type Config struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
	Retain   bool
}

// client is the subset of mqtt.Client used here.
type client interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

type source interface {
	Subscribe(buffer int) (int, <-chan gps.Snapshot)
	Unsubscribe(id int)
}

type Publisher struct {
	cfg     Config
	client  client
	timeout time.Duration
}

func New(cfg Config) *Publisher {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	return newPublisher(cfg, mqtt.NewClient(opts))
}

func newPublisher(cfg Config, c client) *Publisher {
	return &Publisher{cfg: cfg, client: c, timeout: 5 * time.Second}
}

func (p *Publisher) Connect() error {
	tok := p.client.Connect()
	if !tok.WaitTimeout(p.timeout) {
		return fmt.Errorf("mqtt connect %s: timeout", p.cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", p.cfg.Broker, err)
	}
	log.Printf("mqtt connected broker=%s client_id=%s", p.cfg.Broker, p.cfg.ClientID)
	return nil
}

func (p *Publisher) Publish(snap gps.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("mqtt marshal: %w", err)
	}
	tok := p.client.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retain, payload)
	if !tok.WaitTimeout(p.timeout) {
		return fmt.Errorf("mqtt publish %s: timeout", p.cfg.Topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", p.cfg.Topic, err)
	}
	return nil
}

// Run publishes every snapshot from src until ctx ends. Failures are logged
// and the loop keeps going; paho reconnects in the background.
func (p *Publisher) Run(ctx context.Context, src source) {
	id, ch := src.Subscribe(16)
	defer src.Unsubscribe(id)
	var failures int
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if err := p.Publish(snap); err != nil {
				failures++
				// Log the first failure and then every 100th.
				if failures%100 == 1 {
					log.Printf("mqtt publish failed (count=%d): %v", failures, err)
				}
			}
		}
	}
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
