package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	AuthorizationsLoaded   prometheus.Counter
	AuthorizationsApproved prometheus.Counter
	AuthorizationsDeclined prometheus.Counter
	CredentialsCreated     prometheus.Counter
	EmbedScriptsServed     prometheus.Counter
	WildcardDispatches     prometheus.Counter
	RequestLatency         *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		AuthorizationsLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fastpass_authorizations_loaded_total",
			Help: "Total number of authorization popups loaded",
		}),
		AuthorizationsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fastpass_authorizations_approved_total",
			Help: "Total number of approved authorizations",
		}),
		AuthorizationsDeclined: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fastpass_authorizations_declined_total",
			Help: "Total number of declined authorizations",
		}),
		CredentialsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fastpass_credentials_created_total",
			Help: "Total number of managed credentials created",
		}),
		EmbedScriptsServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fastpass_embed_scripts_served_total",
			Help: "Total number of embed script deliveries",
		}),
		WildcardDispatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fastpass_wildcard_dispatches_total",
			Help: "Total number of results dispatched with a wildcard target origin",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fastpass_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// IncrementApproved increments the approved authorizations counter by 1
func (m *Metrics) IncrementApproved() { m.AuthorizationsApproved.Inc() }

// IncrementDeclined increments the declined authorizations counter by 1
func (m *Metrics) IncrementDeclined() { m.AuthorizationsDeclined.Inc() }

// IncrementLoaded increments the popup load counter by 1
func (m *Metrics) IncrementLoaded() { m.AuthorizationsLoaded.Inc() }

// IncrementCredentialsCreated increments the credential creation counter by 1
func (m *Metrics) IncrementCredentialsCreated() { m.CredentialsCreated.Inc() }

// IncrementEmbedServed increments the embed delivery counter by 1
func (m *Metrics) IncrementEmbedServed() { m.EmbedScriptsServed.Inc() }

// IncrementWildcardDispatches increments the wildcard dispatch counter by 1
func (m *Metrics) IncrementWildcardDispatches() { m.WildcardDispatches.Inc() }
