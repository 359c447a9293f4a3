// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics collects latency and error counts for storage calls
type Metrics struct {
	calls  *prometheus.HistogramVec
	errors *prometheus.CounterVec
}

// NewMetrics builds storage metrics and registers them whenever a registerer is provided
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "strata",
			Subsystem: "storage",
			Name:      "call_duration_seconds",
			Help:      "Duration of calls to the storage backends.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"store", "op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strata",
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Number of failed calls to the storage backends.",
		}, []string{"store", "op"}),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.errors)
	}
	return m
}

// Instrument decorates a store with debug logs and metrics
func Instrument(store Store, logger *zap.Logger, metrics *Metrics) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &instrumentedStore{
		store:   store,
		l:       logger.With(zap.String("store", store.String())),
		metrics: metrics,
	}
}

type instrumentedStore struct {
	store   Store
	l       *zap.Logger
	metrics *Metrics
}

func (i *instrumentedStore) observe(op string, start time.Time, err error, fields ...zap.Field) {
	name := i.store.String()
	i.metrics.calls.WithLabelValues(name, op).Observe(time.Since(start).Seconds())
	if err != nil {
		i.metrics.errors.WithLabelValues(name, op).Inc()
		i.l.Debug("storage call failed", append(fields, zap.String("op", op), zap.Error(err))...)
		return
	}
	i.l.Debug("storage call", append(fields, zap.String("op", op))...)
}

func (i *instrumentedStore) String() string {
	return i.store.String()
}

func (i *instrumentedStore) Has(ctx context.Context, key string) (has bool, err error) {
	defer func(start time.Time) { i.observe("has", start, err, zap.String("key", key)) }(time.Now())
	return i.store.Has(ctx, key)
}

func (i *instrumentedStore) Get(ctx context.Context, key string) (rdr io.ReadCloser, err error) {
	defer func(start time.Time) { i.observe("get", start, err, zap.String("key", key)) }(time.Now())
	return i.store.Get(ctx, key)
}

func (i *instrumentedStore) Put(ctx context.Context, key string, source io.Reader, exclusive bool) (err error) {
	defer func(start time.Time) { i.observe("put", start, err, zap.String("key", key)) }(time.Now())
	return i.store.Put(ctx, key, source, exclusive)
}

func (i *instrumentedStore) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { i.observe("delete", start, err, zap.String("key", key)) }(time.Now())
	return i.store.Delete(ctx, key)
}

func (i *instrumentedStore) Keys(ctx context.Context) (keys []string, err error) {
	defer func(start time.Time) { i.observe("keys", start, err) }(time.Now())
	return i.store.Keys(ctx)
}

func (i *instrumentedStore) KeysPrefix(ctx context.Context, pageToken, prefix, delimiter string, count int) (keys []string, next string, err error) {
	defer func(start time.Time) { i.observe("keys_prefix", start, err, zap.String("prefix", prefix)) }(time.Now())
	return i.store.KeysPrefix(ctx, pageToken, prefix, delimiter, count)
}

func (i *instrumentedStore) Clear(ctx context.Context) (err error) {
	defer func(start time.Time) { i.observe("clear", start, err) }(time.Now())
	return i.store.Clear(ctx)
}
