package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GPS    GPSConfig    `yaml:"gps"`
	UDP    UDPConfig    `yaml:"udp"`
	Web    WebConfig    `yaml:"web"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	Store  StoreConfig  `yaml:"store"`
	FixLED FixLEDConfig `yaml:"fix_led"`
}

type GPSConfig struct {
	// Source is one of serial, gpsd, tcp or replay.
	Source string `yaml:"source"`

	// Device may be empty to auto-detect a USB receiver.
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`

	GPSDAddr string `yaml:"gpsd_addr"`
	TCPAddr  string `yaml:"tcp_addr"`

	// CommitMode is partial (keep fields decoded before an error) or atomic.
	CommitMode string `yaml:"commit_mode"`

	Record RecordConfig `yaml:"record"`
	Replay ReplayConfig `yaml:"replay"`
}

type RecordConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

type ReplayConfig struct {
	Path  string  `yaml:"path"`
	Speed float64 `yaml:"speed"`
	Loop  bool    `yaml:"loop"`
}

type UDPConfig struct {
	Enable   bool          `yaml:"enable"`
	Dest     string        `yaml:"dest"`
	Interval time.Duration `yaml:"interval"`
}

type WebConfig struct {
	Enable bool   `yaml:"enable"`
	Listen string `yaml:"listen"`
}

type MQTTConfig struct {
	Enable   bool   `yaml:"enable"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
	Retain   bool   `yaml:"retain"`
}

type StoreConfig struct {
	Enable   bool          `yaml:"enable"`
	Path     string        `yaml:"path"`
	Interval time.Duration `yaml:"interval"`
}

type FixLEDConfig struct {
	Enable bool `yaml:"enable"`
	// Pin is BCM GPIO numbering. GPIO 0 is valid, so unset is nil.
	Pin *int `yaml:"pin"`
}

var supportedBauds = map[int]bool{4800: true, 9600: true, 19200: true, 38400: true, 57600: true, 115200: true}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		var te *yaml.TypeError
		if errors.As(err, &te) {
			return Config{}, fmt.Errorf("config contains unknown fields: %s", strings.Join(stripLinePrefixes(te.Errors), "; "))
		}
		return Config{}, err
	}

	if err := DefaultAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// stripLinePrefixes drops yaml's "line N: " prefix so messages stay stable
// when a file is reformatted.
func stripLinePrefixes(errs []string) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		if strings.HasPrefix(e, "line ") {
			if i := strings.Index(e, ": "); i >= 0 {
				e = e[i+2:]
			}
		}
		out = append(out, e)
	}
	return out
}

// DefaultAndValidate fills defaults in place and rejects inconsistent
// settings.
func DefaultAndValidate(cfg *Config) error {
	g := &cfg.GPS
	g.Source = strings.ToLower(strings.TrimSpace(g.Source))
	if g.Source == "" {
		g.Source = "serial"
	}
	switch g.Source {
	case "serial":
		if g.Baud == 0 {
			g.Baud = 9600
		}
		if !supportedBauds[g.Baud] {
			return fmt.Errorf("gps.baud %d is not supported", g.Baud)
		}
	case "gpsd":
		if strings.TrimSpace(g.GPSDAddr) == "" {
			g.GPSDAddr = "127.0.0.1:2947"
		}
	case "tcp":
		if strings.TrimSpace(g.TCPAddr) == "" {
			return fmt.Errorf("gps.tcp_addr is required when gps.source is 'tcp'")
		}
	case "replay":
		if strings.TrimSpace(g.Replay.Path) == "" {
			return fmt.Errorf("gps.replay.path is required when gps.source is 'replay'")
		}
		if g.Replay.Speed == 0 {
			g.Replay.Speed = 1
		}
		if g.Replay.Speed < 0 {
			return fmt.Errorf("gps.replay.speed must be > 0")
		}
		if g.Record.Enable {
			return fmt.Errorf("gps.record cannot be used with gps.source 'replay'")
		}
	default:
		return fmt.Errorf("gps.source must be one of serial, gpsd, tcp, replay (got %q)", g.Source)
	}

	g.CommitMode = strings.ToLower(strings.TrimSpace(g.CommitMode))
	if g.CommitMode == "" {
		g.CommitMode = "partial"
	}
	if g.CommitMode != "partial" && g.CommitMode != "atomic" {
		return fmt.Errorf("gps.commit_mode must be 'partial' or 'atomic'")
	}

	if g.Record.Enable && strings.TrimSpace(g.Record.Path) == "" {
		return fmt.Errorf("gps.record.path is required when gps.record.enable is true")
	}

	if cfg.UDP.Enable && strings.TrimSpace(cfg.UDP.Dest) == "" {
		return fmt.Errorf("udp.dest is required when udp.enable is true")
	}
	if cfg.UDP.Interval <= 0 {
		cfg.UDP.Interval = 1 * time.Second
	}

	if strings.TrimSpace(cfg.Web.Listen) == "" {
		cfg.Web.Listen = ":8080"
	}

	if cfg.MQTT.Enable && strings.TrimSpace(cfg.MQTT.Broker) == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt.enable is true")
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "gpsnav"
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = "gpsnav/nav"
	}
	if cfg.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}

	if cfg.Store.Enable && strings.TrimSpace(cfg.Store.Path) == "" {
		return fmt.Errorf("store.path is required when store.enable is true")
	}
	if cfg.Store.Interval <= 0 {
		cfg.Store.Interval = 30 * time.Second
	}

	if cfg.FixLED.Enable {
		if cfg.FixLED.Pin == nil {
			return fmt.Errorf("fix_led.pin is required when fix_led.enable is true")
		}
		if *cfg.FixLED.Pin < 0 {
			return fmt.Errorf("fix_led.pin must be >= 0 (got %d)", *cfg.FixLED.Pin)
		}
	}
	return nil
}
