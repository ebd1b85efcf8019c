package storage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PutHistogram latency of storage puts by storage and status
var PutHistogram = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "vipsop_storage_put_seconds",
		Help: "A histogram of storage put latency",
	},
	[]string{"storage", "status"},
)

func init() {
	prometheus.MustRegister(PutHistogram)
}

// ObservePut records a put against storage started at start
func ObservePut(storage string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	PutHistogram.WithLabelValues(storage, status).Observe(time.Since(start).Seconds())
}
