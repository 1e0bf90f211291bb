package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records outcomes of checkout submissions and status updates.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	rejected  prometheus.Counter
	processed *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_operation_duration_seconds",
		Help:    "Duration of checkout operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_operation_success_total",
		Help: "Successful checkout operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_operation_failure_total",
		Help: "Failed checkout operations.",
	}, []string{"operation"})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_batches_rejected_total",
		Help: "Checkout batches rejected by eligibility re-checks.",
	})
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_prescriptions_processed_total",
		Help: "Prescriptions finalized through checkout, by type.",
	}, []string{"type"})
	reg.MustRegister(duration, success, failure, rejected, processed)
	return &CheckoutMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		rejected:  rejected,
		processed: processed,
	}
}

// ObserveDuration records the duration for the named operation.
func (c *CheckoutMetrics) ObserveDuration(operation string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (c *CheckoutMetrics) IncSuccess(operation string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (c *CheckoutMetrics) IncFailure(operation string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncRejectedBatch counts a batch turned away by the submission-time
// eligibility re-check.
func (c *CheckoutMetrics) IncRejectedBatch() {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.Inc()
}

// AddProcessed accumulates finalized prescriptions by type.
func (c *CheckoutMetrics) AddProcessed(prescriptionType string, count int) {
	if c == nil || c.processed == nil || count <= 0 {
		return
	}
	c.processed.WithLabelValues(normalizeLabel(prescriptionType)).Add(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
