// Package metrics exposes parser and acquisition counters in Prometheus
// format. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gpsnav/internal/nmea"
)

type Metrics struct {
	reg *prometheus.Registry

	sentences  *prometheus.CounterVec
	reconnects *prometheus.CounterVec
	fix        prometheus.Gauge
	satellites prometheus.Gauge
	hdop       prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gpsnav",
			Name:      "sentences_total",
			Help:      "NMEA sentences processed, by sentence kind and parse outcome.",
		}, []string{"kind", "outcome"}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gpsnav",
			Name:      "source_reconnects_total",
			Help:      "Attempts to (re)open the sentence source.",
		}, []string{"source"}),
		fix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gpsnav",
			Name:      "fix",
			Help:      "1 when the receiver reports a valid fix.",
		}),
		satellites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gpsnav",
			Name:      "satellites",
			Help:      "Satellites in use from the last GGA sentence.",
		}),
		hdop: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gpsnav",
			Name:      "hdop",
			Help:      "Horizontal dilution of precision.",
		}),
	}
	m.reg.MustRegister(m.sentences, m.reconnects, m.fix, m.satellites, m.hdop)
	return m
}

// ObserveSentence counts one parsed sentence.
func (m *Metrics) ObserveSentence(kind nmea.SentenceKind, err error) {
	if m == nil {
		return
	}
	m.sentences.WithLabelValues(kind.String(), nmea.Outcome(err)).Inc()
}

func (m *Metrics) ObserveReconnect(source string) {
	if m == nil {
		return
	}
	m.reconnects.WithLabelValues(source).Inc()
}

func (m *Metrics) SetState(st nmea.State) {
	if m == nil {
		return
	}
	if st.Fix {
		m.fix.Set(1)
	} else {
		m.fix.Set(0)
	}
	m.satellites.Set(float64(st.Satellites))
	m.hdop.Set(st.HDOP)
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
