// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submit_total",
			Help: "Submission attempts by form and outcome (ok, invalid, rejected).",
		}, []string{"form", "outcome"})

	FieldErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_field_errors_total",
			Help: "Displayed field errors by form, field, and failing rule.",
		}, []string{"form", "field", "rule"})

	AttemptRecordErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "login_attempt_record_errors_total",
			Help: "Cumulative number of failed attempt audit writes.",
		})
)

func init() {
	prometheus.MustRegister(
		SubmitTotal,
		FieldErrorsTotal,
		AttemptRecordErrorsTotal,
	)
}
