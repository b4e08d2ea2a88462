package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(queryRefreshTotal, notificationsTotal) }

var (
	queryRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_refresh_total",
			Help: "Query refetches by key, trigger and result.",
		},
		[]string{"query", "trigger", "result"}, // e.g. query="jobs", trigger="interval", result="ok"
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "User notifications raised, by variant.",
		},
		[]string{"variant"},
	)
)

func IncQueryRefresh(query, trigger, result string) {
	queryRefreshTotal.WithLabelValues(norm(query), norm(trigger), norm(result)).Inc()
}

func IncNotification(variant string) {
	notificationsTotal.WithLabelValues(norm(variant)).Inc()
}
