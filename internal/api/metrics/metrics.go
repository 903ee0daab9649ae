// Package metrics defines and registers the custom Prometheus metrics for the
// FinanceVault gateway, client runtime and development identity backend. It
// is the single source of truth for metric names, labels, and help strings.
//
// All metrics register with the default Prometheus registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "financevault"

// Outcome label values shared by the counters below.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// ── Protocol metrics ──────────────────────────────────────────────────────────

// AuthRequestsTotal counts protocol exchanges.
// Labels:
//   - operation: "register", "login" or "logout"
//   - outcome: "success", "rejected" (expected business outcome) or "error"
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_requests_total",
		Help:      "Total number of register/login/logout exchanges, by outcome.",
	},
	[]string{"operation", "outcome"},
)

// PublicKeyFetchesTotal counts KeyCache lookups.
// Label:
//   - result: "hit" (served from cache), "fetched" or "error"
var PublicKeyFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "public_key_fetches_total",
		Help:      "Total number of public key lookups, labelled by result (hit/fetched/error).",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionCookieWritesTotal counts cookie bridge writes.
// Label:
//   - action: "set" or "clear"
var SessionCookieWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_cookie_writes_total",
		Help:      "Total number of session cookie writes, by action.",
	},
	[]string{"action"},
)

// RouteGuardDecisionsTotal counts page-load guard decisions.
// Label:
//   - decision: "to_signin", "to_home" or "proceed"
var RouteGuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"decision"},
)

// ClientSessionEventsTotal counts client session store transitions.
// Label:
//   - event: "login", "logout", "rehydrated", "rehydrate_failed", "sync_failed"
var ClientSessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_session_events_total",
		Help:      "Total number of client session store transitions.",
	},
	[]string{"event"},
)
