// Package metrics collects and exposes Prometheus metrics for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records the service's domain counters. A nil *Collector is
// valid and records nothing, which keeps unit tests free of registry setup.
type Collector struct {
	registry *prometheus.Registry

	admissions    prometheus.Counter
	denials       *prometheus.CounterVec
	exchanges     prometheus.Counter
	authFailures  prometheus.Counter
	registrations prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		admissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatgate_admissions_total",
			Help: "Chat exchanges admitted by the rate limiter.",
		}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatgate_denials_total",
			Help: "Chat exchanges denied by the rate limiter, by scope.",
		}, []string{"scope"}),
		exchanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatgate_exchanges_total",
			Help: "Completed message exchanges (user message plus reply).",
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatgate_auth_failures_total",
			Help: "Requests rejected as unauthorized.",
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatgate_registrations_total",
			Help: "Successfully registered users.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.admissions,
		c.denials,
		c.exchanges,
		c.authFailures,
		c.registrations,
	)

	return c
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordAdmission() {
	if c == nil {
		return
	}
	c.admissions.Inc()
}

func (c *Collector) RecordDenial(scope string) {
	if c == nil {
		return
	}
	c.denials.WithLabelValues(scope).Inc()
}

func (c *Collector) RecordExchange() {
	if c == nil {
		return
	}
	c.exchanges.Inc()
}

func (c *Collector) RecordAuthFailure() {
	if c == nil {
		return
	}
	c.authFailures.Inc()
}

func (c *Collector) RecordRegistration() {
	if c == nil {
		return
	}
	c.registrations.Inc()
}
