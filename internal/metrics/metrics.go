// Package metrics 暴露服务的 Prometheus 指标
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	remoteCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forum",
		Name:      "remote_calls_total",
		Help:      "Store operations issued by the community service, by operation and result.",
	}, []string{"operation", "result"})

	feedLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "forum",
		Name:      "feed_load_duration_seconds",
		Help:      "Time to load posts together with their comments and reactions.",
		Buckets:   prometheus.DefBuckets,
	})

	inQueryBatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forum",
		Name:      "in_query_batches_total",
		Help:      "Set-membership queries issued per collection after id batching.",
	}, []string{"collection"})

	eventFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forum",
		Name:      "event_publish_failures_total",
		Help:      "Domain events that could not be published.",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(remoteCalls, feedLoadDuration, inQueryBatches, eventFailures)
}

// ObserveCall 记录一次存储调用的结果
func ObserveCall(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	remoteCalls.WithLabelValues(operation, result).Inc()
}

func ObserveFeedLoad(d time.Duration) {
	feedLoadDuration.Observe(d.Seconds())
}

func IncInQueryBatch(collection string) {
	inQueryBatches.WithLabelValues(collection).Inc()
}

func IncEventFailure(eventType string) {
	eventFailures.WithLabelValues(eventType).Inc()
}

// Handler 返回 /metrics 处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
