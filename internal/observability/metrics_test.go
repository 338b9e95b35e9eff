package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectors_RegisteredOnDefaultRegistry(t *testing.T) {
	// Registering again must fail with AlreadyRegisteredError for every collector.
	for name, c := range map[string]prometheus.Collector{
		"scrape_failures":       ScrapeFailures,
		"scraped_questions":     ScrapedQuestions,
		"daily_posts":           DailyPosts,
		"votes":                 VotesAccepted,
		"active_collectors":     ActiveCollectors,
		"commands":              CommandsDispatched,
		"notifications_dropped": NotificationsDropped,
	} {
		err := prometheus.Register(c)
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			t.Fatalf("%s: expected AlreadyRegisteredError, got %v", name, err)
		}
	}
}

func TestCollectors_Increment(t *testing.T) {
	base := testutil.ToFloat64(VotesAccepted.WithLabelValues("yes"))
	VotesAccepted.WithLabelValues("yes").Inc()
	if got := testutil.ToFloat64(VotesAccepted.WithLabelValues("yes")); got != base+1 {
		t.Fatalf("wyr_votes_total{option=yes} = %v; want %v", got, base+1)
	}

	ActiveCollectors.Inc()
	ActiveCollectors.Dec()
	if got := testutil.ToFloat64(ActiveCollectors); got != 0 {
		t.Fatalf("wyr_active_collectors = %v; want 0", got)
	}
}
