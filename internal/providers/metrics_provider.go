package providers

import (
	"backlog/internal/structures"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncNetworkErrors(endpoint string)
	IncUnauthorized()
	IncSessionRestores(outcome string)
	SetGamesHeld(count int)
	Handler() http.Handler
}

type MetricsProvider struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	networkErrors   *prometheus.CounterVec
	unauthorized    prometheus.Counter
	sessionRestores *prometheus.CounterVec
	gamesHeld       prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncNetworkErrors(endpoint string) {
	m.networkErrors.WithLabelValues(endpoint).Inc()
}

func (m *MetricsProvider) IncUnauthorized() {
	m.unauthorized.Inc()
}

func (m *MetricsProvider) IncSessionRestores(outcome string) {
	m.sessionRestores.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) SetGamesHeld(count int) {
	m.gamesHeld.Set(float64(count))
}

func (m *MetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &MetricsProvider{
		registry: reg,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backlog_api_requests_total",
			Help: "Total number of outbound API requests",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backlog_api_request_duration_seconds",
			Help:    "Outbound API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		networkErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backlog_api_network_errors_total",
			Help: "Outbound API requests that failed before a response arrived",
		}, []string{"endpoint"}),

		unauthorized: factory.NewCounter(prometheus.CounterOpts{
			Name: "backlog_api_unauthorized_total",
			Help: "Unauthorized responses that tore down the session",
		}),

		sessionRestores: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backlog_session_restores_total",
			Help: "Startup session restores by outcome",
		}, []string{"outcome"}),

		gamesHeld: factory.NewGauge(prometheus.GaugeOpts{
			Name: "backlog_games_held",
			Help: "Games currently held by the list view",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncNetworkErrors(_ string)                        {}
func (n *noopMetrics) IncUnauthorized()                                 {}
func (n *noopMetrics) IncSessionRestores(_ string)                      {}
func (n *noopMetrics) SetGamesHeld(_ int)                               {}
func (n *noopMetrics) Handler() http.Handler                            { return http.NotFoundHandler() }
