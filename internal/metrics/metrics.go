package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels recorded for each onboarding attempt.
const (
	OutcomeCreated            = "created"
	OutcomeResumed            = "resumed"
	OutcomeAlreadyProvisioned = "already_provisioned"
	OutcomeValidation         = "validation"
	OutcomeConflict           = "conflict"
	OutcomeUpstreamFailure    = "upstream_failure"
	OutcomeUpstreamTimeout    = "upstream_timeout"
	OutcomePartialFailure     = "partial_failure"
)

// Metrics tracks patient onboarding and clinic logo traffic.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Provisioned          *prometheus.CounterVec
	ProvisionDuration    prometheus.Histogram
	StepFailures         *prometheus.CounterVec
	Compensations        *prometheus.CounterVec
	FallbackCredentials  prometheus.Counter
	LogoCacheLookups     *prometheus.CounterVec
	SignupRateLimitDrops prometheus.Counter
}

// New registers all service metrics on reg. Passing prometheus.DefaultRegisterer
// exposes them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Provisioned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "retain_onboarding_total",
			Help: "Patient onboarding attempts by outcome",
		}, []string{"outcome"}),
		ProvisionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "retain_onboarding_duration_seconds",
			Help:    "Duration of the full onboarding workflow including compensation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		StepFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "retain_onboarding_step_failures_total",
			Help: "Backend step failures by step and kind (timeout or failure)",
		}, []string{"step", "kind"}),
		Compensations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "retain_onboarding_compensations_total",
			Help: "Compensating deletes by resource and result",
		}, []string{"resource", "result"}),
		FallbackCredentials: factory.NewCounter(prometheus.CounterOpts{
			Name: "retain_onboarding_fallback_credential_total",
			Help: "Identities created with the fallback credential because no PIN was supplied",
		}),
		LogoCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "retain_clinic_logo_cache_total",
			Help: "Clinic logo URL cache lookups by result (hit or miss)",
		}, []string{"result"}),
		SignupRateLimitDrops: factory.NewCounter(prometheus.CounterOpts{
			Name: "retain_signup_rate_limited_total",
			Help: "Onboarding requests rejected by the per-mobile rate limit",
		}),
	}
}

// ObserveProvision records the outcome and duration of one onboarding attempt.
func (m *Metrics) ObserveProvision(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Provisioned.WithLabelValues(outcome).Inc()
	m.ProvisionDuration.Observe(time.Since(start).Seconds())
}

// IncStepFailure records a failed backend step.
func (m *Metrics) IncStepFailure(step string, timeout bool) {
	if m == nil {
		return
	}
	kind := "failure"
	if timeout {
		kind = "timeout"
	}
	m.StepFailures.WithLabelValues(step, kind).Inc()
}

// IncCompensation records one compensating delete.
func (m *Metrics) IncCompensation(resource string, ok bool) {
	if m == nil {
		return
	}
	result := "undone"
	if !ok {
		result = "failed"
	}
	m.Compensations.WithLabelValues(resource, result).Inc()
}

// IncFallbackCredential records use of the fallback credential.
func (m *Metrics) IncFallbackCredential() {
	if m == nil {
		return
	}
	m.FallbackCredentials.Inc()
}

// IncLogoCache records a logo cache hit or miss.
func (m *Metrics) IncLogoCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.LogoCacheLookups.WithLabelValues(result).Inc()
}

// IncSignupRateLimited records a request rejected by the signup rate limit.
func (m *Metrics) IncSignupRateLimited() {
	if m == nil {
		return
	}
	m.SignupRateLimitDrops.Inc()
}
