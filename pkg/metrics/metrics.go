// Package metrics defines and registers all custom Prometheus metrics for the
// portal agent. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid" (rejected before any network call),
//     "rejected" (school API refused), "storage_error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts sessions that ended.
// Label:
//   - reason: "user", "local", "auth_endpoint_rejected", "revalidation_rejected"
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of sessions ended, by reason.",
	},
	[]string{"reason"},
)

// UnauthorizedEventsTotal counts 401/403 notifications from the HTTP layer.
// Label:
//   - outcome: "debounced", "auth_endpoint", "revalidate"
var UnauthorizedEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unauthorized_events_total",
		Help:      "Total number of unauthorized events received, by outcome.",
	},
	[]string{"outcome"},
)

// RevalidationsTotal counts profile checks of the held credential.
// Labels:
//   - source: "bootstrap" or "unauthorized"
//   - result: "valid", "rejected", "transient", "stale"
var RevalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revalidations_total",
		Help:      "Total number of session revalidations, by source and result.",
	},
	[]string{"source", "result"},
)

// ── Module access metrics ─────────────────────────────────────────────────────

// ModuleAccessRefreshTotal counts module-access refreshes.
// Label:
//   - result: "fetched", "wildcard", "deny_all", "fallback", "stale"
var ModuleAccessRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "module_access_refresh_total",
		Help:      "Total number of module access refreshes, by result.",
	},
	[]string{"result"},
)

// SignalsQueued tracks UI signals waiting for the dispatcher worker.
var SignalsQueued = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "signals_queued",
		Help:      "Current number of UI signals pending in the dispatcher.",
	},
)
