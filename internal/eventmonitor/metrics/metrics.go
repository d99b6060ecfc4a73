package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	startTime = time.Now()

	// UptimeSeconds tracks the service uptime in seconds
	UptimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "solana_scripts",
		Subsystem: "event_monitor",
		Name:      "uptime_seconds",
		Help:      "Time passed since the event monitor started in seconds",
	})

	// EventsDecodedTotal counts Anchor events decoded per program
	EventsDecodedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solana_scripts",
		Subsystem: "event_monitor",
		Name:      "events_decoded_total",
		Help:      "Anchor events decoded from transaction logs and inner instructions",
	}, []string{"program", "event"})

	// NotificationsDeliveredTotal counts webhook deliveries by outcome
	NotificationsDeliveredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solana_scripts",
		Subsystem: "event_monitor",
		Name:      "notifications_delivered_total",
		Help:      "Event notifications dispatched to subscribers",
	}, []string{"status"})

	// ActiveSubscriptions tracks the number of live subscriptions
	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "solana_scripts",
		Subsystem: "event_monitor",
		Name:      "active_subscriptions",
		Help:      "Live subscriptions in the registry",
	})

	// SubscriptionsTotal counts registry operations
	SubscriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solana_scripts",
		Subsystem: "event_monitor",
		Name:      "subscriptions_total",
		Help:      "Subscription registrations and deregistrations",
	}, []string{"action"})

	// ActiveWorkers tracks the number of running program workers
	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "solana_scripts",
		Subsystem: "event_monitor",
		Name:      "active_workers",
		Help:      "Program workers currently holding a log subscription",
	})

	// WSReconnectsTotal counts websocket reconnect attempts per program
	WSReconnectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solana_scripts",
		Subsystem: "event_monitor",
		Name:      "ws_reconnects_total",
		Help:      "Websocket log subscription reconnects",
	}, []string{"program"})

	// TransactionFetchErrorsTotal counts failed getTransaction lookups
	TransactionFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "solana_scripts",
		Subsystem: "event_monitor",
		Name:      "transaction_fetch_errors_total",
		Help:      "Failed transaction fetches while extracting events",
	})

	// HTTPRequestsTotal counts API requests received
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solana_scripts",
		Subsystem: "event_monitor",
		Name:      "http_requests_total",
		Help:      "HTTP API requests received",
	}, []string{"method", "endpoint", "status_code"})
)

// StartMetricsCollection starts the background uptime gauge
func StartMetricsCollection() {
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			UptimeSeconds.Set(time.Since(startTime).Seconds())
		}
	}()
}
