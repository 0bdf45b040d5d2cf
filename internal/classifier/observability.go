package classifier

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "fsort/classifier"

var (
	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fsort",
			Subsystem: "classifier",
			Name:      "call_duration_seconds",
			Help:      "Duration of classifier calls in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "status"},
	)

	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fsort",
			Subsystem: "classifier",
			Name:      "calls_total",
			Help:      "Total number of classifier calls.",
		},
		[]string{"provider", "status"},
	)

	// error_type is one of timeout, cancelled, auth, rate_limit, server, client, unknown.
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fsort",
			Subsystem: "classifier",
			Name:      "errors_total",
			Help:      "Classifier errors by type.",
		},
		[]string{"provider", "error_type"},
	)
)

// classifyError maps err to a low-cardinality label.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}

	var te *TransientError
	if errors.As(err, &te) {
		if te.StatusCode == http.StatusTooManyRequests || te.StatusCode == 0 {
			return "rate_limit"
		}
		return "server"
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden:
			return "auth"
		case se.StatusCode >= 500:
			return "server"
		default:
			return "client"
		}
	}
	return "unknown"
}

func recordCall(provider string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		errorsTotal.WithLabelValues(provider, classifyError(err)).Inc()
	}
	callDuration.WithLabelValues(provider, status).Observe(duration.Seconds())
	callsTotal.WithLabelValues(provider, status).Inc()
}

// observe wraps one backend call in a span and records its metrics.
func observe(ctx context.Context, provider, model string, fn func(context.Context) (string, error)) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "classifier."+provider+".Complete",
		trace.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("model", model),
		),
	)
	defer span.End()

	start := time.Now()
	out, err := fn(ctx)
	recordCall(provider, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error_type", classifyError(err)))
		return "", err
	}
	span.SetAttributes(attribute.Int("response_len", len(out)))
	return out, nil
}
