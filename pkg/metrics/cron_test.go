package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExportsRunsAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "outbox-retention"
	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)
	metrics.IncFailure(job)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := counterWithLabels(mfs, "cron_job_runs_total", map[string]string{"job": job, "result": "success"}); got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got := counterWithLabels(mfs, "cron_job_runs_total", map[string]string{"job": job, "result": "failure"}); got != 2 {
		t.Fatalf("expected failure=2, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "cron_job_duration_seconds", "job", job); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
	if mf := findMetricFamily(mfs, "cron_job_last_success_timestamp_seconds"); mf == nil || mf.GetMetric()[0].GetGauge().GetValue() <= 0 {
		t.Fatalf("expected last success timestamp to be set")
	}
}

func counterWithLabels(mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return -1
	}
outer:
	for _, metric := range mf.GetMetric() {
		for k, v := range labels {
			if !matchesLabel(metric.GetLabel(), k, v) {
				continue outer
			}
		}
		return metric.GetCounter().GetValue()
	}
	return -1
}

func TestOrderMetricsCountsByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOrderMetrics(reg)
	metrics.ObservePlaced("local", 1770)
	metrics.ObservePlaced("local", 300)
	metrics.IncRejected("")
	metrics.IncTransition("shipped")
	metrics.IncAdjustment("discount")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "orders_placed_total", "shipping_method", "local"); err != nil || got != 2 {
		t.Fatalf("expected placed=2, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "orders_rejected_total", "reason", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected blank reason to normalize, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "order_adjustments_total", "type", "discount"); err != nil || got != 1 {
		t.Fatalf("expected adjustment=1, got %f err=%v", got, err)
	}
	mf := findMetricFamily(mfs, "order_total_amount")
	if mf == nil || mf.GetMetric()[0].GetHistogram().GetSampleSum() != 2070 {
		t.Fatalf("unexpected order value histogram %v", mf)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var orders *OrderMetrics
	orders.ObservePlaced("local", 1)
	orders.IncRejected("x")
	NewOrderMetrics(nil).IncTransition("shipped")
	NewOutboxMetrics(nil).IncPublished("order_created")
	var cron *CronJobMetrics
	cron.IncSuccess("job")
}

func TestOutboxMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOutboxMetrics(reg)
	metrics.IncPublished("order_created")
	metrics.IncFailed("order_created")
	metrics.IncTerminal("stock_updated")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "outbox_terminal_total", "event_type", "stock_updated"); err != nil || got != 1 {
		t.Fatalf("expected terminal=1, got %f err=%v", got, err)
	}
}

func TestBlankLabelsCollapseToUnknown(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOutboxMetrics(reg)
	metrics.IncPublished("")
	metrics.IncPublished("  ")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "outbox_published_total", "event_type", "unknown"); err != nil || got != 2 {
		t.Fatalf("expected unknown=2, got %f err=%v", got, err)
	}
	if normalizeLabel(" low_stock ") != "low_stock" {
		t.Fatalf("expected label to be trimmed")
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
