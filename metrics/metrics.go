// Package metrics exports downloader activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	ycd "github.com/rubpy/ycd-go"
)

//////////////////////////////////////////////////

// Collector implements ycd.Observer.
type Collector struct {
	jobsCreated  *prometheus.CounterVec
	polls        *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	results      *prometheus.CounterVec
	resultItems  *prometheus.CounterVec
	itemFailures prometheus.Counter
	inFlight     prometheus.Gauge
}

var _ ycd.Observer = (*Collector)(nil)

func New(namespace string) *Collector {
	return &Collector{
		jobsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_created_total",
			Help:      "Download jobs created, by content type.",
		}, []string{"content_type"}),

		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_polls_total",
			Help:      "Status polls, by observed status.",
		}, []string{"status"}),

		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Time from job creation to a non-pending status.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
		}, []string{"status"}),

		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Fetched results, by kind (json or binary).",
		}, []string{"kind"}),

		resultItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_items_total",
			Help:      "Output items produced from results, by kind.",
		}, []string{"kind"}),

		itemFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_failures_total",
			Help:      "Input items that failed.",
		}),

		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items_in_flight",
			Help:      "Input items currently being processed.",
		}),
	}
}

func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{
		c.jobsCreated,
		c.polls,
		c.jobDuration,
		c.results,
		c.resultItems,
		c.itemFailures,
		c.inFlight,
	} {
		if err := reg.Register(col); err != nil {
			return err
		}
	}

	return nil
}

//////////////////////////////////////////////////

func (c *Collector) JobCreated(kind ycd.ContentKind) {
	c.jobsCreated.WithLabelValues(kind.String()).Inc()
}

func (c *Collector) JobPolled(status ycd.Status) {
	c.polls.WithLabelValues(status.String()).Inc()
}

func (c *Collector) JobFinished(status ycd.Status, elapsed time.Duration) {
	c.jobDuration.WithLabelValues(status.String()).Observe(elapsed.Seconds())
}

func (c *Collector) ResultMaterialized(kind string, items int) {
	c.results.WithLabelValues(kind).Inc()
	c.resultItems.WithLabelValues(kind).Add(float64(items))
}

func (c *Collector) ItemStarted() {
	c.inFlight.Inc()
}

func (c *Collector) ItemDone(err error) {
	c.inFlight.Dec()

	if err != nil {
		c.itemFailures.Inc()
	}
}
