// Package observability wires tracing and the Prometheus collectors that
// describe the bot's behavior.
//
// Label sets are small and closed:
//
//   - category: one of the scraped category names
//   - result:   outcome of a daily post (posted|empty|error)
//   - option:   vote button custom ID (yes|no)
//   - command:  dispatched chat command (start|settime|help)
//
// All collectors are registered on the default registry in init, so the ops
// HTTP server exposes them through promhttp.Handler().
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// ScrapeFailures counts category fetches that failed and contributed no
	// questions to the pool.
	ScrapeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wyr_scrape_failures_total",
			Help: "Category fetches that failed and contributed no questions.",
		},
		[]string{"category"},
	)

	// ScrapedQuestions is the size of the last successful extraction per category.
	ScrapedQuestions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wyr_scraped_questions",
			Help: "Questions extracted for a category on the last fetch.",
		},
		[]string{"category"},
	)

	// DailyPosts counts Post attempts by outcome.
	DailyPosts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wyr_daily_posts_total",
			Help: "Daily question post attempts by outcome.",
		},
		[]string{"result"},
	)

	// VotesAccepted counts accepted button presses by option.
	VotesAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wyr_votes_total",
			Help: "Accepted vote interactions by option.",
		},
		[]string{"option"},
	)

	// ActiveCollectors gauges collectors that are still accepting votes.
	ActiveCollectors = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wyr_active_collectors",
			Help: "Vote collectors currently accepting interactions.",
		},
	)

	// CommandsDispatched counts authorized chat commands by name.
	CommandsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wyr_commands_total",
			Help: "Dispatched chat commands by name.",
		},
		[]string{"command"},
	)

	// NotificationsDropped counts error notifications suppressed by the limiter.
	NotificationsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wyr_error_notifications_dropped_total",
			Help: "Error direct messages dropped by the rate limiter.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ScrapeFailures,
		ScrapedQuestions,
		DailyPosts,
		VotesAccepted,
		ActiveCollectors,
		CommandsDispatched,
		NotificationsDropped,
	)
}
