// Package metrics records bot activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sprintbot"

// Recorder is what the bot reports to.
type Recorder interface {
	// ObserveEvent counts an inbound event and how long its handler ran.
	ObserveEvent(kind string, duration time.Duration)
	IncCallback(action string)
	IncTransportError(op string)
	AddTasksCreated(n int)
	SetActiveChats(n int)
}

// Prometheus implements Recorder with collectors registered on one registry.
type Prometheus struct {
	events          *prometheus.CounterVec
	callbacks       *prometheus.CounterVec
	transportErrors *prometheus.CounterVec
	tasksCreated    prometheus.Counter
	handleDuration  *prometheus.HistogramVec
	activeChats     prometheus.Gauge
}

// NewPrometheus registers the bot collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Inbound chat events by kind",
			},
			[]string{"kind"},
		),
		callbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "callbacks_total",
				Help:      "Button presses by callback action",
			},
			[]string{"action"},
		),
		transportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transport_errors_total",
				Help:      "Failed outbound calls by operation",
			},
			[]string{"op"},
		),
		tasksCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_created_total",
				Help:      "Tasks created through the bot, subtasks included",
			},
		),
		handleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "handle_duration_seconds",
				Help:      "Time spent handling one inbound event",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		activeChats: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_chats",
				Help:      "Chats with queued or running work",
			},
		),
	}
}

func (p *Prometheus) ObserveEvent(kind string, duration time.Duration) {
	p.events.WithLabelValues(kind).Inc()
	p.handleDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (p *Prometheus) IncCallback(action string) {
	p.callbacks.WithLabelValues(action).Inc()
}

func (p *Prometheus) IncTransportError(op string) {
	p.transportErrors.WithLabelValues(op).Inc()
}

func (p *Prometheus) AddTasksCreated(n int) {
	p.tasksCreated.Add(float64(n))
}

func (p *Prometheus) SetActiveChats(n int) {
	p.activeChats.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

type nop struct{}

// Nop returns a Recorder that discards everything.
func Nop() Recorder { return nop{} }

func (nop) ObserveEvent(string, time.Duration) {}
func (nop) IncCallback(string)                 {}
func (nop) IncTransportError(string)           {}
func (nop) AddTasksCreated(int)                {}
func (nop) SetActiveChats(int)                 {}
