package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesInserted counts accepted inserts into the message log.
	MessagesInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatfeed_messages_inserted_total",
		Help: "Messages accepted into the store.",
	})

	// FeedEventsPublished counts events fanned out to subscribers.
	FeedEventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatfeed_feed_events_published_total",
		Help: "Change-feed events delivered to subscriber channels.",
	})

	// FeedEventsDropped counts subscribers disconnected for falling behind.
	FeedEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatfeed_feed_slow_disconnects_total",
		Help: "Subscribers disconnected because their buffer filled.",
	})

	// FeedSubscribers tracks currently open feed subscriptions.
	FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatfeed_feed_subscribers",
		Help: "Open change-feed subscriptions.",
	})

	// QueryDuration observes history query latency.
	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chatfeed_query_duration_seconds",
		Help:    "Latency of history queries against the store.",
		Buckets: prometheus.DefBuckets,
	})
)
