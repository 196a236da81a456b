// Package metrics defines the service's Prometheus instrumentation surface.
// All collectors register against a private Registry so tests and embedding
// never collide with the default global registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all user-service metrics
const namespace = "userservice"

// Registry is the Prometheus registry for all service metrics
var Registry = prometheus.NewRegistry()

// AppInfo exposes application version information as labels (value always 1)
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// HealthCheckStatus tracks individual health check results.
// Values: 0 = fail, 1 = warn, 2 = pass
var HealthCheckStatus = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "health_check_status",
		Help:      "Individual health check status (0=fail, 1=warn, 2=pass)",
	},
	[]string{"check"},
)

// UsersCreated counts successfully created user records
var UsersCreated = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created",
	},
)

// UsersQueried counts served read queries (get and list)
var UsersQueried = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_queried_total",
		Help:      "Total number of user queries served",
	},
)

// EventsPublished counts domain event publish attempts by event kind and
// outcome (ok or error). Failed publishes never fail the operation; this
// counter is where they become visible.
var EventsPublished = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of domain event publish attempts by outcome",
	},
	[]string{"event", "outcome"},
)

// Init sets version information and registers runtime collectors.
// Call once at process start.
func Init(version, commit, buildDate string) {
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)

	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}
