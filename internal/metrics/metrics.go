package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "barangayops_transitions_total",
		Help: "Status transitions applied, by entity type and resulting status.",
	}, []string{"entity", "status"})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "barangayops_notifications_total",
		Help: "Notification dispatches triggered by transitions.",
	}, []string{"entity"})
)

func TransitionApplied(entity, status string) {
	transitionsTotal.WithLabelValues(entity, status).Inc()
}

func NotificationDispatched(entity string) {
	notificationsTotal.WithLabelValues(entity).Inc()
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
