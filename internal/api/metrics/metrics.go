// Package metrics defines the custom Prometheus metrics of the account service.
// HTTP request metrics come from the echoprometheus middleware; the counters
// here track the authentication and profile approval workflows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Authentication ────────────────────────────────────────────────────────────

// RegistrationsTotal counts self-registration attempts.
// Label:
//   - result: "created", "rejected" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of self-registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Profile workflow ──────────────────────────────────────────────────────────

// ProfileRequestsSubmittedTotal counts profile update requests filed as pending.
var ProfileRequestsSubmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_requests_submitted_total",
		Help:      "Total number of profile update requests submitted for approval.",
	},
)

// ProfileRequestsResolvedTotal counts resolved profile update requests.
// Label:
//   - decision: "approved" or "declined"
var ProfileRequestsResolvedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_requests_resolved_total",
		Help:      "Total number of profile update requests resolved by an admin, by decision.",
	},
	[]string{"decision"},
)

// PictureUploadsTotal counts profile pictures written to the blob store.
var PictureUploadsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "picture_uploads_total",
		Help:      "Total number of profile pictures stored.",
	},
)
