// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio"

// Submission results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Transition outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// Metrics groups the counters recorded by the application services. A nil
// *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	transitions  *prometheus.CounterVec
	submissions  *prometheus.CounterVec
	articleViews *prometheus.CounterVec
	contacts     *prometheus.CounterVec
}

// New creates the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "transitions_total",
			Help:      "Quiz state machine events by outcome.",
		}, []string{"event", "outcome"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "submissions_total",
			Help:      "Quiz submissions relayed, by result.",
		}, []string{"result"}),
		articleViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "articles",
			Name:      "views_total",
			Help:      "Article detail reads by slug and category.",
		}, []string{"slug", "category"}),
		contacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact form submissions relayed, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.transitions, m.submissions, m.articleViews, m.contacts)

	return m
}

// ObserveTransition counts a quiz event.
func (m *Metrics) ObserveTransition(event string, err error) {
	if m == nil {
		return
	}

	outcome := OutcomeApplied
	if err != nil {
		outcome = OutcomeRejected
	}

	m.transitions.WithLabelValues(event, outcome).Inc()
}

// ObserveSubmission counts a relayed quiz submission.
func (m *Metrics) ObserveSubmission(err error) {
	if m == nil {
		return
	}

	m.submissions.WithLabelValues(result(err)).Inc()
}

// ObserveContact counts a relayed contact form submission.
func (m *Metrics) ObserveContact(err error) {
	if m == nil {
		return
	}

	m.contacts.WithLabelValues(result(err)).Inc()
}

// ObserveArticleView counts an article read.
func (m *Metrics) ObserveArticleView(slug, category string) {
	if m == nil {
		return
	}

	m.articleViews.WithLabelValues(slug, category).Inc()
}

// RegisterCacheStats exposes hit and miss counts of the render cache. stats
// is called on every scrape.
func (m *Metrics) RegisterCacheStats(stats func() (hits, misses int)) {
	if m == nil {
		return
	}

	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render_cache",
			Name:      "hits_total",
			Help:      "Rendered article cache hits.",
		}, func() float64 {
			hits, _ := stats()
			return float64(hits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render_cache",
			Name:      "misses_total",
			Help:      "Rendered article cache misses.",
		}, func() float64 {
			_, misses := stats()
			return float64(misses)
		}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}

	return ResultSuccess
}
