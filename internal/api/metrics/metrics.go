// Package metrics defines and registers all custom Prometheus metrics for the
// FixItNow marketplace API. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fixitnow"

// ── Lifecycle metrics ─────────────────────────────────────────────────────────

// RequestsCreatedTotal counts newly created service requests.
// Labels:
//   - service_type: the requested trade (e.g. "plumbing")
//   - priority: the homeowner-supplied priority
var RequestsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_created_total",
		Help:      "Total number of service requests created.",
	},
	[]string{"service_type", "priority"},
)

// StatusTransitionsTotal counts completed lifecycle transitions.
// Label:
//   - status: the status the request moved to (e.g. "scheduled")
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of successful lifecycle transitions, by resulting status.",
	},
	[]string{"status"},
)

// TransitionErrorsTotal counts rejected transition attempts.
// Label:
//   - reason: "invalid_transition", "permission_denied", "conflict", or "validation"
var TransitionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transition_errors_total",
		Help:      "Total number of rejected lifecycle transition attempts.",
	},
	[]string{"reason"},
)

// ── Storage metrics ───────────────────────────────────────────────────────────

// StorageFallbackTotal counts calls the durable backend failed and the
// in-process fallback served instead.
// Label:
//   - op: the storage operation that degraded (e.g. "update_request")
var StorageFallbackTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_fallback_total",
		Help:      "Total number of storage calls served by the in-process fallback store.",
	},
	[]string{"op"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification dispatch outcomes.
// Label:
//   - result: "sent", "failed", or "suppressed"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notification dispatch attempts, by outcome.",
	},
	[]string{"result"},
)
