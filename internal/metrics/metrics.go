// Package metrics exposes Prometheus collectors for the chatbot pipeline.
package metrics

import (
	"context"
	"errors"
	"time"

	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/gateway"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chatbot"

var (
	// LLMCallsTotal counts backend calls.
	// Labels: backend (local, remote), status (ok, degraded, failed)
	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Total number of LLM backend calls by result status",
		},
		[]string{"backend", "status"},
	)

	// LLMCallDuration tracks how long backend calls take.
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Duration of LLM backend calls in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"backend"},
	)

	// IntentsTotal counts classified questions.
	IntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "intents_total",
			Help:      "Total number of questions by classified intent",
		},
		[]string{"intent"},
	)

	// KnowledgeMissesTotal counts answers generated without any retrieved segment.
	KnowledgeMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "knowledge_misses_total",
			Help:      "Total number of knowledge queries that retrieved no segment",
		},
	)

	// OrchestratorFailuresTotal counts questions answered with the generic apology.
	OrchestratorFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "failures_total",
			Help:      "Total number of questions that ended in the generic apology",
		},
	)

	// EmbeddingFailuresTotal counts provider failures that produced an unavailable vector.
	EmbeddingFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "failures_total",
			Help:      "Total number of embedding provider failures",
		},
	)

	// IndexOperationsTotal counts segment indexing attempts.
	// Labels: result (indexed, failed)
	IndexOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vector_index",
			Name:      "operations_total",
			Help:      "Total number of segment indexing attempts",
		},
		[]string{"result"},
	)

	// ReindexDuration tracks full reindex runs.
	ReindexDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "vector_index",
			Name:      "reindex_duration_seconds",
			Help:      "Duration of full reindex runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

// RegisterGaugeFuncs exposes the breaker state (1=available) and the index
// size. Repeated calls keep the first registration.
func RegisterGaugeFuncs(breaker *gateway.Breaker, indexSize func() int) error {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "local_available",
			Help:      "Local backend breaker state (1=available, 0=unavailable)",
		}, func() float64 {
			if breaker.State() == gateway.StateAvailable {
				return 1
			}
			return 0
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "vector_index",
			Name:      "entries",
			Help:      "Number of vectors held by the in-memory index",
		}, func() float64 {
			return float64(indexSize())
		}),
	}

	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// instrumentedBackend records a call counter and latency for every backend call.
type instrumentedBackend struct {
	gateway.Backend
}

// InstrumentBackend wraps b so each Complete/Generate call is observed.
func InstrumentBackend(b gateway.Backend) gateway.Backend {
	return &instrumentedBackend{Backend: b}
}

func (b *instrumentedBackend) Complete(ctx context.Context, prompt string) llm.Result {
	start := time.Now()
	res := b.Backend.Complete(ctx, prompt)
	observe(b.Name(), res, start)
	return res
}

func (b *instrumentedBackend) Generate(ctx context.Context, req gateway.GenerationRequest) llm.Result {
	start := time.Now()
	res := b.Backend.Generate(ctx, req)
	observe(b.Name(), res, start)
	return res
}

func observe(backend string, res llm.Result, start time.Time) {
	LLMCallsTotal.WithLabelValues(backend, res.Status.String()).Inc()
	LLMCallDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}
