package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the Prometheus instruments the engine and its surfaces
// report into. Instances register against the given registerer, so tests can
// use a private registry.
type Metrics struct {
	Upvotes      prometheus.Counter
	Downvotes    prometheus.Counter
	DeniedVotes  prometheus.Counter
	BudgetResets prometheus.Counter
	SaveFailures prometheus.Counter

	RemainingBudget prometheus.Gauge
	ItemCount       prometheus.Gauge
}

// New creates and registers all instruments.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Upvotes: factory.NewCounter(prometheus.CounterOpts{
			Name: "wantly_upvotes_total",
			Help: "Successful upvotes.",
		}),
		Downvotes: factory.NewCounter(prometheus.CounterOpts{
			Name: "wantly_downvotes_total",
			Help: "Successful downvotes.",
		}),
		DeniedVotes: factory.NewCounter(prometheus.CounterOpts{
			Name: "wantly_denied_votes_total",
			Help: "Upvotes rejected because the daily budget was exhausted.",
		}),
		BudgetResets: factory.NewCounter(prometheus.CounterOpts{
			Name: "wantly_budget_resets_total",
			Help: "Daily budget resets triggered by a day rollover.",
		}),
		SaveFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "wantly_snapshot_save_failures_total",
			Help: "Best-effort snapshot saves that failed and were swallowed.",
		}),
		RemainingBudget: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wantly_budget_remaining_points",
			Help: "Points left in today's attention budget.",
		}),
		ItemCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wantly_items",
			Help: "Wishlist items currently tracked.",
		}),
	}
}
