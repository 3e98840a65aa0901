package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TweetsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetgraph_tweets_processed_total",
		Help: "Total tweet records processed",
	})
	Relations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetgraph_relations_total",
		Help: "Total relations recorded, by kind code",
	}, []string{"kind"})
	MalformedMentions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetgraph_malformed_mentions_total",
		Help: "Total mention entries skipped for unparseable ids",
	})
	ExtractDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tweetgraph_extract_duration_seconds",
		Help:    "Topic extraction duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetgraph_command_runs_total",
		Help: "Total CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetgraph_command_errors_total",
		Help: "Total CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(TweetsProcessed, Relations, MalformedMentions, ExtractDuration, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveExtractDuration records a run duration
func ObserveExtractDuration(start time.Time) {
	d := time.Since(start).Seconds()
	ExtractDuration.Observe(d)
}

// IncRelation increments the relation counter for a kind code.
func IncRelation(kind string) { Relations.WithLabelValues(kind).Inc() }

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
