// Package metrics holds the Prometheus collectors for domain mutations.
package metrics

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts counts login attempts by result ("success", "failure").
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_auth_attempts_total",
		Help: "Total number of login attempts by result",
	}, []string{"result"})

	// Signups counts successful registrations.
	Signups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_signups_total",
		Help: "Total number of registered users",
	})

	// MessagesPosted counts created messages.
	MessagesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_posted_total",
		Help: "Total number of posted messages",
	})

	// FollowChanges counts follow graph mutations by action ("follow", "unfollow").
	FollowChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_follow_changes_total",
		Help: "Total number of follow and unfollow actions",
	}, []string{"action"})

	// LikeToggles counts like toggles by resulting state ("liked", "unliked").
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_like_toggles_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})

	// TimelineSize observes how many entries each home timeline returned.
	TimelineSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "warbler_home_timeline_entries",
		Help:    "Number of entries returned per home timeline",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 75, 100},
	})
)

var (
	httpOnce    sync.Once
	httpMetrics *fiberprometheus.FiberPrometheus
)

// HTTP returns the request metrics middleware. It shares the default registry
// with the domain collectors above, so /metrics exposes both. The collectors
// are created once per process.
func HTTP() *fiberprometheus.FiberPrometheus {
	httpOnce.Do(func() {
		httpMetrics = fiberprometheus.NewWithDefaultRegistry("warbler")
	})
	return httpMetrics
}
