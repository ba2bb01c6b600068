package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the crawler.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RequestsInQueue     prometheus.Gauge
	CrawlsTotal         *prometheus.CounterVec
	CrawlDuration       *prometheus.HistogramVec
	ErrorsTotal         *prometheus.CounterVec
	PlaylistsTotal      *prometheus.CounterVec
}

// New registers the crawler metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		RequestsInQueue: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_requests_in_queue",
				Help: "Current number of requests in the crawl queue.",
			},
		),
		CrawlsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_requests_total",
				Help: "Total number of processed crawl requests.",
			},
			[]string{"tag", "status"}, // status: success, retry, failure
		),
		CrawlDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawler_request_duration_seconds",
				Help:    "Duration of a single crawl attempt.",
				Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
			},
			[]string{"tag"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_errors_total",
				Help: "The total number of errors encountered.",
			},
			[]string{"type"}, // e.g. timeout, navigation, extraction, sink
		),
		PlaylistsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_playlists_total",
				Help: "Playlists visited, by whether an email was found.",
			},
			[]string{"has_email"},
		),
	}
}

func (m *Metrics) IncErrors(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) IncPlaylist(hasEmail bool) {
	label := "false"
	if hasEmail {
		label = "true"
	}
	m.PlaylistsTotal.WithLabelValues(label).Inc()
}
