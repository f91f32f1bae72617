package gps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gpsnav/internal/metrics"
	"gpsnav/internal/nmea"
	"gpsnav/internal/replay"
)

// Config controls the GPS reader.
//
// Source is one of serial, gpsd, tcp or replay; empty means serial.
// Device may be empty to auto-detect. Seed, when set, restores the
// navigation state saved by a previous run.
type Config struct {
	Source string

	Device string
	Baud   int

	GPSDAddr string
	TCPAddr  string

	CommitMode nmea.CommitMode
	Seed       *nmea.Snapshot

	RecordPath string

	ReplayPath  string
	ReplaySpeed float64
	ReplayLoop  bool

	Metrics *metrics.Metrics
}

// Snapshot is the JSON-friendly view of the service published after every
// sentence.
type Snapshot struct {
	Source     string `json:"source"`
	Device     string `json:"device,omitempty"`
	Addr       string `json:"addr,omitempty"`
	ConnState  string `json:"conn_state,omitempty"`
	CommitMode string `json:"commit_mode"`

	Fix        bool    `json:"fix"`
	FixQuality string  `json:"fix_quality"`
	LatDeg     float64 `json:"lat_deg"`
	LonDeg     float64 `json:"lon_deg"`
	AltMSLM    float64 `json:"alt_msl_m"`
	AltWGS84M  float64 `json:"alt_wgs84_m"`
	GroundKt   float64 `json:"ground_kt"`
	TrackDeg   float64 `json:"track_deg"`
	MagVarDeg  float64 `json:"mag_var_deg"`
	Satellites int     `json:"satellites"`
	HDOP       float64 `json:"hdop"`

	DGPSStation int `json:"dgps_station,omitempty"`
	DGPSAgeSec  int `json:"dgps_age_sec,omitempty"`

	// UTCTime is hh:mm:ss.sss and UTCDate dd/mm/yy as sent by the receiver.
	UTCTime string `json:"utc_time"`
	UTCDate string `json:"utc_date"`

	Sentences     uint64            `json:"sentences"`
	Outcomes      map[string]uint64 `json:"outcomes,omitempty"`
	LastKind      string            `json:"last_kind,omitempty"`
	LastOutcome   string            `json:"last_outcome,omitempty"`
	LastError     string            `json:"last_error,omitempty"`
	LastUpdateUTC string            `json:"last_update_utc,omitempty"`
}

type Service struct {
	cfg     Config
	metrics *metrics.Metrics

	parseMu   sync.Mutex
	parser    *nmea.Parser
	outcomes  map[string]uint64
	sentences uint64

	snapMu sync.Mutex
	last   atomic.Value // Snapshot
	raw    atomic.Value // nmea.Snapshot

	subs   *broadcaster
	errLog *logThrottle

	rec *replay.Writer

	mu     sync.Mutex
	cancel context.CancelFunc
	closer io.Closer
	wg     sync.WaitGroup
}

func New(cfg Config) (*Service, error) {
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	if cfg.Source == "" {
		cfg.Source = "serial"
	}
	if cfg.Baud == 0 {
		cfg.Baud = 9600
	}
	if cfg.ReplaySpeed == 0 {
		cfg.ReplaySpeed = 1
	}

	opts := []nmea.Option{nmea.WithCommitMode(cfg.CommitMode)}
	parser := nmea.New(opts...)
	if cfg.Seed != nil {
		p, err := nmea.NewFromSnapshot(*cfg.Seed, opts...)
		if err != nil {
			return nil, fmt.Errorf("gps seed: %w", err)
		}
		parser = p
	}

	s := &Service{
		cfg:      cfg,
		metrics:  cfg.Metrics,
		parser:   parser,
		outcomes: make(map[string]uint64),
		subs:     newBroadcaster(),
		errLog:   newLogThrottle(10 * time.Second),
	}

	snap := Snapshot{
		Source:     cfg.Source,
		Device:     cfg.Device,
		Addr:       s.sourceAddr(),
		ConnState:  "stopped",
		CommitMode: cfg.CommitMode.String(),
	}
	st := parser.State()
	applyState(&snap, st)
	s.last.Store(snap)
	s.raw.Store(parser.Export())
	return s, nil
}

func (s *Service) sourceAddr() string {
	switch s.cfg.Source {
	case "gpsd":
		return s.cfg.GPSDAddr
	case "tcp":
		return s.cfg.TCPAddr
	case "replay":
		return s.cfg.ReplayPath
	}
	return ""
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("gps service is nil")
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	var run func(context.Context)
	switch s.cfg.Source {
	case "serial":
		run = s.runSerial
	case "gpsd":
		run = func(ctx context.Context) { s.runNet(ctx, newGPSDSource(s.cfg.GPSDAddr)) }
	case "tcp":
		if strings.TrimSpace(s.cfg.TCPAddr) == "" {
			return fmt.Errorf("gps tcp source requires an address")
		}
		run = func(ctx context.Context) { s.runNet(ctx, netSource{name: "tcp", addr: s.cfg.TCPAddr}) }
	case "replay":
		run = s.runReplay
	default:
		return fmt.Errorf("unknown gps source %q", s.cfg.Source)
	}

	if s.cfg.RecordPath != "" {
		w, err := replay.CreateWriter(s.cfg.RecordPath)
		if err != nil {
			return fmt.Errorf("gps record: %w", err)
		}
		s.rec = w
		log.Printf("gps recording sentences to %s", s.cfg.RecordPath)
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		run(childCtx)
	}()
	return nil
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	closer := s.closer
	s.cancel = nil
	s.closer = nil
	s.mu.Unlock()

	if closer != nil {
		_ = closer.Close()
	}
	s.wg.Wait()

	if s.rec != nil {
		if err := s.rec.Close(); err != nil {
			log.Printf("gps record close failed: %v", err)
		}
		s.rec = nil
	}
	s.setConnState("stopped", "")
	s.subs.Close()
}

// trackCloser registers c so Close can interrupt a blocking read. It
// returns false, closing c, when ctx was cancelled in the meantime.
func (s *Service) trackCloser(ctx context.Context, c io.Closer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		_ = c.Close()
		return false
	}
	s.closer = c
	return true
}

func (s *Service) untrackCloser(c io.Closer) {
	s.mu.Lock()
	if s.closer == c {
		s.closer = nil
	}
	s.mu.Unlock()
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{}
	}
	return v.(Snapshot)
}

// Export returns the raw navigation state as of the last published sentence.
func (s *Service) Export() nmea.Snapshot {
	if s == nil {
		return nmea.Snapshot{}
	}
	v := s.raw.Load()
	if v == nil {
		return nmea.Snapshot{}
	}
	return v.(nmea.Snapshot)
}

// Subscribe returns a channel of published snapshots. Slow subscribers miss
// updates rather than blocking ingestion.
func (s *Service) Subscribe(buffer int) (int, <-chan Snapshot) {
	return s.subs.Subscribe(buffer)
}

func (s *Service) Unsubscribe(id int) {
	s.subs.Unsubscribe(id)
}

// Ingest feeds one line to the parser and publishes the result. Lines not
// starting with '$' are receiver chatter and are ignored. The returned error
// is the parser's outcome for the sentence.
func (s *Service) Ingest(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || line[0] != '$' {
		return nil
	}
	now := time.Now()

	if s.rec != nil {
		if err := s.rec.WriteSentence(now, line); err != nil {
			s.errLog.Printf("gps record write failed: %v", err)
		}
	}

	s.parseMu.Lock()
	kind := nmea.Identify([]byte(line))
	err := s.parser.ParseString(line)
	st := s.parser.State()
	raw := s.parser.Export()
	outcome := nmea.Outcome(err)
	s.outcomes[outcome]++
	s.sentences++
	outcomes := make(map[string]uint64, len(s.outcomes))
	for k, v := range s.outcomes {
		outcomes[k] = v
	}
	sentences := s.sentences
	s.parseMu.Unlock()

	s.metrics.ObserveSentence(kind, err)
	s.metrics.SetState(st)

	if err != nil && !errors.Is(err, nmea.ErrNoFix) {
		s.errLog.Printf("gps sentence rejected kind=%s outcome=%s code=0x%02X: %v", kind, outcome, nmea.Code(err), err)
	}

	s.snapMu.Lock()
	snap := s.Snapshot()
	applyState(&snap, st)
	snap.Sentences = sentences
	snap.Outcomes = outcomes
	snap.LastKind = kind.String()
	snap.LastOutcome = outcome
	if err != nil && !errors.Is(err, nmea.ErrNoFix) {
		snap.LastError = err.Error()
	}
	snap.LastUpdateUTC = now.UTC().Format(time.RFC3339Nano)
	s.raw.Store(raw)
	s.last.Store(snap)
	s.snapMu.Unlock()

	s.subs.Publish(snap)
	return err
}

func (s *Service) setConnState(state, lastErr string) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	cur := s.Snapshot()
	cur.ConnState = state
	if lastErr != "" {
		cur.LastError = lastErr
	}
	s.last.Store(cur)
}

func (s *Service) setDevice(device string) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	cur := s.Snapshot()
	cur.Device = device
	s.last.Store(cur)
}

func applyState(snap *Snapshot, st nmea.State) {
	snap.Fix = st.Fix
	snap.FixQuality = st.FixQuality.String()
	snap.LatDeg = st.Coordinates.LatitudeDegrees()
	snap.LonDeg = st.Coordinates.LongitudeDegrees()
	snap.AltMSLM = st.AltitudeSeaLevel
	snap.AltWGS84M = st.AltitudeWGS84
	snap.GroundKt = st.Velocity.Speed
	snap.TrackDeg = st.Velocity.Heading
	snap.MagVarDeg = st.MagneticVariation
	snap.Satellites = int(st.Satellites)
	snap.HDOP = st.HDOP
	snap.DGPSStation = int(st.DGPS.StationID)
	snap.DGPSAgeSec = int(st.DGPS.Age)
	ts := st.Timestamp
	snap.UTCTime = fmt.Sprintf("%02d:%02d:%02d.%03d", ts.Hour, ts.Minute, ts.Second, ts.Millisecond)
	snap.UTCDate = fmt.Sprintf("%02d/%02d/%02d", ts.Day, ts.Month, ts.Year)
}

func autoDetectDevice() string {
	candidates := []string{}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyACM%d", i))
	}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyUSB%d", i))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
