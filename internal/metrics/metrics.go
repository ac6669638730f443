package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics счётчики прокси. Регистрируются в собственном реестре, чтобы тесты
// могли создавать сколько угодно экземпляров.
type Metrics struct {
	registry *prometheus.Registry

	Requests      *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	RunPolls      prometheus.Counter
	RunTerminal   *prometheus.CounterVec
	ImageFailures *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assistant_proxy",
			Name:      "http_requests_total",
			Help:      "HTTP requests by path and status code.",
		}, []string{"path", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "assistant_proxy",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"path"}),
		RunPolls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "assistant_proxy",
			Name:      "run_polls_total",
			Help:      "Run status requests made while waiting for completion.",
		}),
		RunTerminal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assistant_proxy",
			Name:      "run_terminal_total",
			Help:      "Runs by final observed status.",
		}, []string{"status"}),
		ImageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assistant_proxy",
			Name:      "image_fetch_failures_total",
			Help:      "Skipped image content items by reason.",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(
		m.Requests, m.Duration, m.RunPolls, m.RunTerminal, m.ImageFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
