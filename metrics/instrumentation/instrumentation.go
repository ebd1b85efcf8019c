package instrumentation

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	// CallLatency tracks latency of native libvips calls
	CallLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vipsop_call_duration_seconds",
			Help:    "A histogram of latencies for native libvips calls",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"entry", "status"},
	)

	// CallCounter tracks native libvips call counts
	CallCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vipsop_calls_total",
			Help: "Total number of native libvips calls",
		},
		[]string{"entry", "status"},
	)
)

func init() {
	prometheus.MustRegister(CallLatency)
	prometheus.MustRegister(CallCounter)
}

// Instrumentation records native call metrics, implements vips.CallObserver
type Instrumentation struct {
	Logger *zap.Logger
}

// New creates a new Instrumentation instance
func New(logger *zap.Logger) *Instrumentation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumentation{
		Logger: logger,
	}
}

// ObserveCall implements vips.CallObserver
func (i *Instrumentation) ObserveCall(entry string, code int, duration time.Duration) {
	status := "success"
	if code != 0 {
		status = "error"
	}
	CallLatency.WithLabelValues(entry, status).Observe(duration.Seconds())
	CallCounter.WithLabelValues(entry, status).Inc()

	if i.Logger != nil {
		i.Logger.Debug("vips_call",
			zap.String("entry", entry),
			zap.String("code", strconv.Itoa(code)),
			zap.Duration("duration", duration),
			zap.String("status", status))
	}
}
