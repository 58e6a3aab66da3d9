package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus instruments shared by the planner surfaces.
type Collector struct {
	plansGenerated prometheus.Counter
	planFailures   prometheus.Counter
	swapsRequested prometheus.Counter
	foodsImported  prometheus.Counter

	planDuration prometheus.Histogram

	catalogFoods     prometheus.Gauge
	catalogTemplates prometheus.Gauge
}

// NewCollector creates and registers the planner metrics. A process should
// create at most one collector; a second registration panics.
func NewCollector() *Collector {
	c := &Collector{
		plansGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_plans_generated_total",
			Help: "Total number of daily plans generated",
		}),
		planFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_plan_failures_total",
			Help: "Total number of plan requests that failed",
		}),
		swapsRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_swaps_total",
			Help: "Total number of meal swap requests",
		}),
		foodsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_foods_imported_total",
			Help: "Total number of foods imported into the catalog",
		}),
		planDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planner_plan_duration_seconds",
			Help:    "Plan generation latency in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		}),
		catalogFoods: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "planner_catalog_foods",
			Help: "Number of foods in the loaded catalog",
		}),
		catalogTemplates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "planner_catalog_templates",
			Help: "Number of meal templates in the loaded catalog",
		}),
	}

	prometheus.MustRegister(c.plansGenerated)
	prometheus.MustRegister(c.planFailures)
	prometheus.MustRegister(c.swapsRequested)
	prometheus.MustRegister(c.foodsImported)
	prometheus.MustRegister(c.planDuration)
	prometheus.MustRegister(c.catalogFoods)
	prometheus.MustRegister(c.catalogTemplates)

	return c
}

// RecordPlan records a successful plan generation and its latency.
func (c *Collector) RecordPlan(duration time.Duration) {
	c.plansGenerated.Inc()
	c.planDuration.Observe(duration.Seconds())
}

// RecordPlanFailure records a plan request that returned an error.
func (c *Collector) RecordPlanFailure() {
	c.planFailures.Inc()
}

// RecordSwap records a meal swap request.
func (c *Collector) RecordSwap() {
	c.swapsRequested.Inc()
}

// RecordImport records foods brought in by the web importer.
func (c *Collector) RecordImport(count int) {
	c.foodsImported.Add(float64(count))
}

// SetCatalogSize publishes the size of the loaded catalog.
func (c *Collector) SetCatalogSize(foods, templates int) {
	c.catalogFoods.Set(float64(foods))
	c.catalogTemplates.Set(float64(templates))
}
