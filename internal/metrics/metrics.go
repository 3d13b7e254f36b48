package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchCacheHits counts searches answered from stored links
	SearchCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mewatch_search_cache_hits_total",
		Help: "Searches answered from already stored links.",
	})

	// SearchCacheMisses counts searches that had to scrape upstream
	SearchCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mewatch_search_cache_misses_total",
		Help: "Searches that triggered an upstream scrape.",
	})

	// ScrapeRequests counts scrape invocations per parser
	ScrapeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mewatch_scrape_requests_total",
		Help: "Upstream scrape invocations by parser.",
	}, []string{"parser"})

	// WatchStatusesPruned counts watch status rows removed by the cleanup job
	WatchStatusesPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mewatch_watch_statuses_pruned_total",
		Help: "Duplicate watch status rows removed by the cleanup job.",
	})
)
