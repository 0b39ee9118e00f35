package cache

import (
	"strconv"
	"time"

	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	labelCache   = "cache"
	labelOutcome = "outcome"
	labelSuccess = "success"
)

const (
	outcomeHit        = "hit"
	outcomeMiss       = "miss"
	outcomeStale      = "stale"
	outcomeFetchError = "fetch_error"
	outcomeWriteError = "write_error"
)

var (
	requestsTotal = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: "showtrack",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Cache lookups by outcome.",
	}, []string{labelCache, labelOutcome})

	fetchDuration = prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
		Namespace: "showtrack",
		Subsystem: "cache",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of remote fetches, in seconds.",
		Buckets:   stdprometheus.ExponentialBuckets(0.05, 2, 10), // top bucket ~= 25s
	}, []string{labelCache, labelSuccess})
)

func recordOutcome(cache, outcome string) {
	requestsTotal.With(labelCache, cache, labelOutcome, outcome).Add(1)
}

func observeFetch(cache string, d time.Duration, success bool) {
	fetchDuration.With(labelCache, cache, labelSuccess, strconv.FormatBool(success)).Observe(d.Seconds())
}
