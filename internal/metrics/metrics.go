package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mtbridge",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Обработанные HTTP-запросы по маршруту, методу и коду ответа.",
	}, []string{"path", "method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mtbridge",
		Subsystem: "http",
		Name:      "request_seconds",
		Help:      "Длительность обработки HTTP-запроса.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path"})

	TerminalCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mtbridge",
		Subsystem: "terminal",
		Name:      "calls_total",
		Help:      "Обращения к шлюзу терминала по операции и исходу.",
	}, []string{"op", "outcome"})

	TerminalDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mtbridge",
		Subsystem: "terminal",
		Name:      "call_seconds",
		Help:      "Длительность обращения к шлюзу терминала.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
)

// ObserveTerminalCall фиксирует одно обращение к терминалу.
func ObserveTerminalCall(op string, seconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	TerminalCalls.WithLabelValues(op, outcome).Inc()
	TerminalDuration.WithLabelValues(op).Observe(seconds)
}
