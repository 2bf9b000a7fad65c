// Package metrics constructs the metrics the node exposes for scraping.
package metrics

import (
	"net/http"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "memoledger"

// Set of outcomes recorded for ledger calls.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the set of collectors the node updates. They are registered
// on a private registry so no dependency can add collectors behind our back.
type Metrics struct {
	registry   *prometheus.Registry
	requests   prometheus.Counter
	errors     prometheus.Counter
	panics     prometheus.Counter
	goroutines prometheus.Gauge
	calls      *prometheus.CounterVec
}

// New constructs the metrics and registers them.
func New() *Metrics {
	m := Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Number of http requests handled.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Number of http requests that returned an error.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_total",
			Help:      "Number of panics recovered while handling requests.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "goroutines",
			Help:      "Number of goroutines sampled while handling requests.",
		}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_calls_total",
			Help:      "Number of ledger calls submitted by method and outcome.",
		}, []string{"method", "outcome"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.errors,
		m.panics,
		m.goroutines,
		m.calls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &m
}

// Handler returns the http handler that serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// RegisterLedger adds gauges that read the ledger at scrape time.
func (m *Metrics) RegisterLedger(balance func() uint64, memos func() int) error {
	balanceGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "contract_balance",
		Help:      "Tips waiting to be withdrawn by the owner.",
	}, func() float64 { return float64(balance()) })

	memosGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "memos",
		Help:      "Number of memos recorded.",
	}, func() float64 { return float64(memos()) })

	if err := m.registry.Register(balanceGauge); err != nil {
		return err
	}
	return m.registry.Register(memosGauge)
}

// RegisterEvents adds gauges that read the websocket fan-out at scrape time.
func (m *Metrics) RegisterEvents(clients func() int, dropped func() uint64) error {
	clientsGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Number of websocket clients receiving memos.",
	}, func() float64 { return float64(clients()) })

	droppedCounter := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "websocket_dropped_total",
		Help:      "Number of memo events dropped for slow websocket clients.",
	}, func() float64 { return float64(dropped()) })

	if err := m.registry.Register(clientsGauge); err != nil {
		return err
	}
	return m.registry.Register(droppedCounter)
}

// AddRequest increments the request count and samples the goroutines.
func (m *Metrics) AddRequest() {
	m.requests.Inc()
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// AddError increments the error count.
func (m *Metrics) AddError() {
	m.errors.Inc()
}

// AddPanic increments the panic count.
func (m *Metrics) AddPanic() {
	m.panics.Inc()
}

// AddCall records the outcome of a ledger call.
func (m *Metrics) AddCall(method string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.calls.WithLabelValues(method, outcome).Inc()
}
