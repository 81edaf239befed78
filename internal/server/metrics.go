package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the relay metrics.
type MetricsConfig struct {
	Namespace string
	Registry  prometheus.Registerer
}

type MetricsOption func(*MetricsConfig)

func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithRegistry sets the registry. Tests pass a fresh prometheus.NewRegistry().
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics are the relay's Prometheus collectors.
type Metrics struct {
	connections     prometheus.Gauge
	waiting         prometheus.Gauge
	rooms           prometheus.Gauge
	gamesStarted    prometheus.Counter
	reconnects      prometheus.Counter
	rejected        *prometheus.CounterVec
	messagesRelayed *prometheus.CounterVec
	expiredSessions prometheus.Counter
}

func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "netpong",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "connections",
			Help:      "Open websocket connections",
		}),
		waiting: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "waiting_players",
			Help:      "Players waiting for an opponent (0 or 1)",
		}),
		rooms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "rooms",
			Help:      "Rooms currently tracked",
		}),
		gamesStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "games_started_total",
			Help:      "Games sent to a pair of players, including resets",
		}),
		reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "reconnects_total",
			Help:      "Players that resumed a session",
		}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "rejected_total",
			Help:      "Connections rejected with an error frame",
		}, []string{"reason"}),
		messagesRelayed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "messages_relayed_total",
			Help:      "Client messages handled by type",
		}, []string{"type"}),
		expiredSessions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "expired_sessions_total",
			Help:      "Sessions dropped by the TTL sweep",
		}),
	}
}
