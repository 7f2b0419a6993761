package weavedoc

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// storeMetrics holds prometheus metrics registered for the store.
type storeMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	documents  *prometheus.CounterVec
}

func newStoreMetrics(reg prometheus.Registerer) (*storeMetrics, error) {
	m := &storeMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weavedoc",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total store operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weavedoc",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Store operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weavedoc",
			Subsystem: "store",
			Name:      "documents_written_total",
			Help:      "Documents written by duplicate policy outcome.",
		}, []string{"outcome"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.documents); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("weavedoc: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("weavedoc: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for store operations.
type observer struct {
	logger  *zap.Logger
	metrics *storeMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *storeMetrics
	if reg != nil {
		var err error
		m, err = newStoreMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if err != nil {
		o.logger.Warn("operation failed",
			zap.String("op", op),
			zap.Duration("duration", dur),
			zap.Error(err),
		)
	} else {
		o.logger.Debug("operation completed",
			zap.String("op", op),
			zap.Duration("duration", dur),
		)
	}
}

func (o *observer) countWritten(outcome string, n int) {
	if o == nil || o.metrics == nil || n == 0 {
		return
	}
	o.metrics.documents.WithLabelValues(outcome).Add(float64(n))
}
