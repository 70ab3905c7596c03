// Package metrics exposes prometheus collectors for the attendance engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ToggleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_toggle_total",
		Help: "Attendance toggles by resulting mark.",
	}, []string{"result"})

	CompleteTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lesson_complete_total",
		Help: "Lessons completed.",
	})

	CancelTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lesson_cancel_total",
		Help: "Lesson cancel calls by branch taken.",
	}, []string{"branch"})

	ChargesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "package_charges_total",
		Help: "Credits charged from packages.",
	})

	RefundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "package_refunds_total",
		Help: "Credits refunded to packages.",
	})

	OpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_op_duration_seconds",
		Help:    "Duration of attendance engine operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)
