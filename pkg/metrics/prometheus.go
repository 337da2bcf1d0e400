package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder exposes the domain-level counters the usecases and agents
// report into. HTTP-level metrics live in the web middleware.
type Recorder struct {
	insightsServed   *prometheus.CounterVec
	adviceScored     *prometheus.CounterVec
	agentRuns        *prometheus.CounterVec
	agentRunDuration *prometheus.HistogramVec
	upstreamLatency  *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec
}

var (
	recorder *Recorder
	once     sync.Once
)

// NewRecorder registers the domain metrics and returns the singleton
// recorder. Repeated calls return the same instance.
func NewRecorder() *Recorder {
	once.Do(func() {
		recorder = &Recorder{
			insightsServed: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "panwatch_insights_served_total",
					Help: "Insight payloads served, by cache outcome",
				},
				[]string{"outcome"},
			),
			adviceScored: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "panwatch_advice_scored_total",
					Help: "Suggestion scorer evaluations, by resolved action",
				},
				[]string{"action"},
			),
			agentRuns: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "panwatch_agent_runs_total",
					Help: "Agent executions, by agent and status",
				},
				[]string{"agent", "status"},
			),
			agentRunDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "panwatch_agent_run_duration_seconds",
					Help:    "Agent run duration in seconds",
					Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
				},
				[]string{"agent"},
			),
			upstreamLatency: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "panwatch_upstream_request_duration_seconds",
					Help:    "Upstream data-provider request duration in seconds",
					Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
				},
				[]string{"provider"},
			),
			upstreamErrors: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "panwatch_upstream_errors_total",
					Help: "Upstream data-provider request failures",
				},
				[]string{"provider"},
			),
		}
		prometheus.MustRegister(
			recorder.insightsServed,
			recorder.adviceScored,
			recorder.agentRuns,
			recorder.agentRunDuration,
			recorder.upstreamLatency,
			recorder.upstreamErrors,
		)
	})
	return recorder
}

// InsightServed records one served insight with its cache outcome
// ("hit" or "miss").
func (r *Recorder) InsightServed(outcome string) {
	r.insightsServed.WithLabelValues(outcome).Inc()
}

// AdviceScored records one scorer evaluation.
func (r *Recorder) AdviceScored(action string) {
	r.adviceScored.WithLabelValues(action).Inc()
}

// AgentRun records a finished agent execution.
func (r *Recorder) AgentRun(agent, status string, duration time.Duration) {
	r.agentRuns.WithLabelValues(agent, status).Inc()
	r.agentRunDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// UpstreamRequest records a call to an external data provider.
func (r *Recorder) UpstreamRequest(provider string, duration time.Duration, err error) {
	r.upstreamLatency.WithLabelValues(provider).Observe(duration.Seconds())
	if err != nil {
		r.upstreamErrors.WithLabelValues(provider).Inc()
	}
}
