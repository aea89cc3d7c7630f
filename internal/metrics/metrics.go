package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	ordersSubmitted   *prometheus.CounterVec
	notificationsSent *prometheus.CounterVec
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "easyfood",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the EasyFood API.",
		}, []string{"method", "path", "status"})

		ordersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "easyfood",
			Name:      "orders_submitted_total",
			Help:      "Order submissions, labeled created or updated.",
		}, []string{"action"})

		notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "easyfood",
			Name:      "notifications_total",
			Help:      "Notifications dispatched to clients, by severity.",
		}, []string{"severity"})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// IncOrderSubmitted records a created or updated order.
func IncOrderSubmitted(action string) {
	if ordersSubmitted == nil {
		return
	}
	ordersSubmitted.WithLabelValues(action).Inc()
}

// IncNotification records a dispatched notification.
func IncNotification(severity string) {
	if notificationsSent == nil {
		return
	}
	notificationsSent.WithLabelValues(severity).Inc()
}
