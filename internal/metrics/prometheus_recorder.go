package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docgen"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	stageDuration *prom.HistogramVec
	runDuration   prom.Histogram
	runOutcome    *prom.CounterVec
	treeNodes     *prom.GaugeVec
	files         *prom.CounterVec
	notify        *prom.CounterVec
	lastSuccess   *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual generation stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total generation run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Generation runs by final status",
		}, []string{"outcome"})
		pr.treeNodes = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_nodes",
			Help:      "Number of nodes in the last generated documentation tree",
		}, []string{"version"})
		pr.files = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_copied_total",
			Help:      "Files copied to the destination by class",
		}, []string{"class"})
		pr.notify = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "notify_results_total",
			Help:      "Completion notification results by notifier",
		}, []string{"notifier", "result"})
		pr.lastSuccess = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run per version",
		}, []string{"version"})
		reg.MustRegister(pr.stageDuration, pr.runDuration, pr.runOutcome, pr.treeNodes, pr.files, pr.notify, pr.lastSuccess)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome Outcome) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetTreeNodes(version string, n int) {
	if p == nil || p.treeNodes == nil {
		return
	}
	p.treeNodes.WithLabelValues(version).Set(float64(n))
}

func (p *PrometheusRecorder) AddFiles(class string, n int) {
	if p == nil || p.files == nil || n <= 0 {
		return
	}
	p.files.WithLabelValues(class).Add(float64(n))
}

func (p *PrometheusRecorder) IncNotifyResult(notifier string, success bool) {
	if p == nil || p.notify == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.notify.WithLabelValues(notifier, res).Inc()
}

func (p *PrometheusRecorder) SetLastSuccess(version string, t time.Time) {
	if p == nil || p.lastSuccess == nil {
		return
	}
	p.lastSuccess.WithLabelValues(version).Set(float64(t.Unix()))
}
