// Package stats exposes the pipeline's operational counters. Failures in
// this subsystem surface only through logs and these metrics, never to the
// business operation that produced an event.
package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsCollected counts events accepted by the ingestion API per
	// category, regardless of which path persisted them.
	EventsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agent_metrics",
			Name:      "events_collected_total",
			Help:      "Metric events accepted by the ingestion API.",
		},
		[]string{"category"},
	)

	// EventsDropped counts events that reached a terminal Dropped state.
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agent_metrics",
			Name:      "events_dropped_total",
			Help:      "Metric events dropped after a processing failure.",
		},
		[]string{"category", "reason"},
	)

	// EventsPersisted counts events written through the batch path.
	EventsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agent_metrics",
			Name:      "events_persisted_total",
			Help:      "Metric events persisted by the worker loops.",
		},
		[]string{"category"},
	)

	// DirectWrites counts events persisted through the degraded path.
	DirectWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agent_metrics",
			Name:      "direct_writes_total",
			Help:      "Metric events written directly because enqueue failed.",
		},
		[]string{"category"},
	)

	// QueueDepth tracks the last observed broker list length per category.
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "agent_metrics",
			Name:      "queue_depth",
			Help:      "Last observed broker queue depth.",
		},
		[]string{"category"},
	)

	// ClassificationsIssued counts classification requests by trigger.
	ClassificationsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agent_metrics",
			Name:      "classifications_issued_total",
			Help:      "Classification requests submitted to the pipeline.",
		},
		[]string{"trigger"},
	)
)
