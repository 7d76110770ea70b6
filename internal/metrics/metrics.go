// Package metrics holds the domain counters exported on /metrics next to the
// HTTP metrics collected by fiberprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "splitsheet"

var (
	// NotificationsCreated counts persisted notification rows by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Notification rows written by the fan-out.",
	}, []string{"type"})

	// NotificationFailures counts fan-outs that failed and were swallowed.
	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Notification fan-outs that failed.",
	}, []string{"type"})

	// SplitTransitions counts split sheet status changes by target status.
	SplitTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "split_transitions_total",
		Help:      "Split sheet status transitions.",
	}, []string{"to"})

	// DeletionJobsFinished counts deletion jobs reaching a terminal status.
	DeletionJobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deletion_jobs_finished_total",
		Help:      "Account deletion jobs by terminal status.",
	}, []string{"status"})

	// DeletionAttemptFailures counts failed pipeline attempts.
	DeletionAttemptFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deletion_attempt_failures_total",
		Help:      "Failed account deletion pipeline attempts.",
	})

	// DeletionJobsRunning is the number of pipelines executing in this process.
	DeletionJobsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "deletion_jobs_running",
		Help:      "Account deletion pipelines currently running.",
	})
)
