package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	commandTotal *prometheus.CounterVec

	sessionTotal *prometheus.CounterVec
	sessionSteps prometheus.Histogram

	decisionDuration *prometheus.HistogramVec
	decisionErrors   *prometheus.CounterVec

	agentWalking   prometheus.Gauge
	gatewayClients prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			commandTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "command_total",
					Help: "Total dispatched commands by function and outcome.",
				},
				[]string{"function", "outcome"},
			),
			sessionTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "autopilot_session_total",
					Help: "Total autopilot sessions by terminal phase.",
				},
				[]string{"phase"},
			),
			sessionSteps: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "autopilot_session_steps",
					Help:    "Steps consumed per autopilot session.",
					Buckets: prometheus.LinearBuckets(1, 1, 20),
				},
			),
			decisionDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "decision_duration_seconds",
					Help:    "Decision round-trip duration in seconds by backend.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"backend"},
			),
			decisionErrors: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "decision_errors_total",
					Help: "Total decision backend failures by backend.",
				},
				[]string{"backend"},
			),
			agentWalking: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "agent_walking",
					Help: "Whether the agent currently has a move in flight (1 walking, 0 settled).",
				},
			),
			gatewayClients: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "gateway_clients",
					Help: "Connected gateway websocket clients.",
				},
			),
		}

		prometheus.MustRegister(
			m.commandTotal,
			m.sessionTotal,
			m.sessionSteps,
			m.decisionDuration,
			m.decisionErrors,
			m.agentWalking,
			m.gatewayClients,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func RecordCommand(function, outcome string) {
	getMetrics().commandTotal.WithLabelValues(function, outcome).Inc()
}

func RecordSessionEnd(phase string, steps int) {
	m := getMetrics()
	m.sessionTotal.WithLabelValues(phase).Inc()
	m.sessionSteps.Observe(float64(steps))
}

func RecordDecision(backend string, duration time.Duration, success bool) {
	m := getMetrics()
	m.decisionDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if !success {
		m.decisionErrors.WithLabelValues(backend).Inc()
	}
}

func SetAgentWalking(walking bool) {
	v := 0.0
	if walking {
		v = 1.0
	}
	getMetrics().agentWalking.Set(v)
}

func SetGatewayClients(count int) {
	getMetrics().gatewayClients.Set(float64(count))
}
