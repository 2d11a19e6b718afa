package monitor

import (
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/mcgclock/pkg/consts"
	"github.com/turtacn/mcgclock/pkg/logger"
)

// Metrics holds the transition collectors for one registry.
type Metrics struct {
	// TransitionsTotal counts transition requests, partitioned by result code.
	TransitionsTotal *prometheus.CounterVec
	// TransitionSteps tracks how many single-mode steps each successful request took.
	TransitionSteps prometheus.Histogram
	// CurrentMode exposes the logical current mode as its table index (0..7).
	CurrentMode prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcg_transitions_total",
			Help: "Total number of clock mode transition requests",
		}, []string{"result"}),
		TransitionSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mcg_transition_steps",
			Help:    "Single-mode steps taken per successful transition",
			Buckets: prometheus.LinearBuckets(0, 1, consts.MaxTransitionSteps+1),
		}),
		CurrentMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mcg_current_mode",
			Help: "Table index of the current clock mode (FEI=0 .. PEE=7)",
		}),
	}
	reg.MustRegister(m.TransitionsTotal, m.TransitionSteps, m.CurrentMode)
	return m
}

// SetMode updates the current-mode gauge. Non-operating modes are ignored.
func (m *Metrics) SetMode(mode consts.ClockMode) {
	if idx, ok := mode.Index(); ok {
		m.CurrentMode.Set(float64(idx))
	}
}

// Serve binds addr (e.g., ":9102") and exposes the registry on it in the
// background. Bind errors are returned before anything is started.
func Serve(addr string, gatherer prometheus.Gatherer) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen on %q: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: ln.Addr().String(), Handler: mux}

	go func() {
		logger.Log.Info("Metrics server starting", "addr", srv.Addr)
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Metrics server failed", "err", err)
		}
	}()
	return srv, nil
}

// Personal.AI order the ending
