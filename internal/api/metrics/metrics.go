// Package metrics defines and registers all custom Prometheus metrics for the
// course marketplace API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coursehub"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignupsTotal counts signup attempts.
// Labels:
//   - principal_type: "admin" or "user"
//   - result: "created", "invalid", "duplicate" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by principal type and result.",
	},
	[]string{"principal_type", "result"},
)

// LoginsTotal counts login attempts.
// Labels:
//   - principal_type: "admin" or "user"
//   - result: "success", "invalid_credentials", "throttled" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by principal type and result.",
	},
	[]string{"principal_type", "result"},
)

// AuthRejectionsTotal counts requests turned away by an access guard.
// Labels:
//   - principal_type: the type the guard requires
//   - reason: "missing_token" or "invalid_token"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by an access guard.",
	},
	[]string{"principal_type", "reason"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// CourseMutationsTotal counts course writes.
// Labels:
//   - action: "create", "update" or "delete"
//   - result: "ok", "forbidden", "not_found" or "error"
var CourseMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "course_mutations_total",
		Help:      "Total number of course create/update/delete attempts, by result.",
	},
	[]string{"action", "result"},
)

// PurchasesTotal counts buy attempts.
// Label:
//   - result: "purchased", "already_purchased", "not_found" or "error"
var PurchasesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Total number of course purchase attempts, by result.",
	},
	[]string{"result"},
)

// ── Image cleanup metrics ─────────────────────────────────────────────────────

// ImageCleanupQueueDepth tracks the number of image deletions waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ImageCleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "image_cleanup_queue_depth",
		Help:      "Current number of image deletions pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ImageCleanupTotal counts processed image deletions.
// Label:
//   - result: "deleted", "failed" or "dropped" (queue full)
var ImageCleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_cleanup_total",
		Help:      "Total number of orphaned image deletions, by result.",
	},
	[]string{"result"},
)

// ImageCleanupDuration measures how long a single deletion takes.
var ImageCleanupDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_cleanup_duration_seconds",
		Help:      "Duration of a single orphaned image deletion.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)
