package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(storeJobs, storeChatMessages, storeMutationsTotal) }

var (
	storeJobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "store_recent_jobs",
		Help: "Jobs currently held in the recent-jobs list.",
	})

	storeChatMessages = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "store_chat_messages",
		Help: "Messages currently held in the chat transcript.",
	})

	storeMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_mutations_total",
			Help: "Store mutations by operation.",
		},
		[]string{"op"}, // 'add_job', 'set_recent_jobs', ...
	)
)

// ObserveStore records a mutation and the resulting list sizes.
func ObserveStore(op string, jobs, chatMessages int) {
	storeMutationsTotal.WithLabelValues(norm(op)).Inc()
	storeJobs.Set(float64(jobs))
	storeChatMessages.Set(float64(chatMessages))
}
