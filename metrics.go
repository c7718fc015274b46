package unitmod

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load results reported in unitmod_loads_total.
const (
	loadResultLoaded     = "loaded"
	loadResultRejected   = "rejected"
	loadResultInitFailed = "init_failed"
)

// Metrics holds the host's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	LoadsTotal   *prometheus.CounterVec
	UnloadsTotal prometheus.Counter
	ActiveUnits  prometheus.Gauge
	InitDuration *prometheus.HistogramVec
	ParamWrites  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "unitmod",
				Name:      "loads_total",
				Help:      "Unit load attempts by result",
			},
			[]string{"result"},
		),
		UnloadsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "unitmod",
				Name:      "unloads_total",
				Help:      "Units unloaded",
			},
		),
		ActiveUnits: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "unitmod",
				Name:      "active_units",
				Help:      "Units currently loaded and active",
			},
		),
		InitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "unitmod",
				Name:      "init_duration_seconds",
				Help:      "Time spent in unit Init",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"unit"},
		),
		ParamWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "unitmod",
				Name:      "param_writes_total",
				Help:      "Operator parameter writes by result",
			},
			[]string{"unit", "param", "result"},
		),
	}
}

func (m *Metrics) load(result string) {
	if m == nil {
		return
	}
	m.LoadsTotal.WithLabelValues(result).Inc()
	if result == loadResultLoaded {
		m.ActiveUnits.Inc()
	}
}

func (m *Metrics) unload() {
	if m == nil {
		return
	}
	m.UnloadsTotal.Inc()
	m.ActiveUnits.Dec()
}

func (m *Metrics) initTook(unit string, d time.Duration) {
	if m == nil {
		return
	}
	m.InitDuration.WithLabelValues(unit).Observe(d.Seconds())
}

func (m *Metrics) paramWrite(unit, param string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ParamWrites.WithLabelValues(unit, param, result).Inc()
}
