// Package metrics holds the service's Prometheus collectors. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	purchases       *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	tickets         *prometheus.CounterVec
	subscriptions   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "purchases_total",
			Help: "Purchase flow outcomes by final state.",
		}, []string{"state"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Upload outcomes.",
		}, []string{"outcome"}),
		tickets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_purchases_total",
			Help: "Ticket purchase outcomes.",
		}, []string{"outcome"}),
		subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subscription_changes_total",
			Help: "Plan changes by target plan and outcome.",
		}, []string{"plan", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestDuration, m.purchases, m.uploads, m.tickets, m.subscriptions,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) Purchase(state string) {
	if m == nil {
		return
	}
	m.purchases.WithLabelValues(state).Inc()
}

func (m *Metrics) Upload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Ticket(outcome string) {
	if m == nil {
		return
	}
	m.tickets.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Subscription(plan, outcome string) {
	if m == nil {
		return
	}
	m.subscriptions.WithLabelValues(plan, outcome).Inc()
}
