package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/selimozcann/infoprobe/internal/model"
)

func TestObserveOutcome(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOutcome(model.Outcome{Kind: model.OutcomeFlagged, StatusCode: 200, DurationMs: 12}, model.BucketUrgent)
	m.ObserveOutcome(model.Outcome{Kind: model.OutcomeSuppressed, DurationMs: 3}, "")
	m.ObserveOutcome(model.Outcome{Kind: model.OutcomeFailed, DurationMs: 5000}, "")

	assert.InDelta(t, 1, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("flagged")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("failed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.FindingsTotal.WithLabelValues("urgent")), 0)
	assert.Equal(t, 3, testutil.CollectAndCount(m.ProbesTotal))
}

func TestJobsAndNotifications(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.JobStarted()
	m.JobStarted()
	m.JobFinished(model.JobCompleted)

	assert.InDelta(t, 1, testutil.ToFloat64(m.JobsCurrentlyActive), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.JobsTotal.WithLabelValues("completed")), 0)

	m.Notification(false)
	assert.InDelta(t, 1, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("failed")), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveOutcome(model.Outcome{Kind: model.OutcomeFlagged}, model.BucketOther)
	m.JobStarted()
	m.JobFinished(model.JobError)
	m.Notification(true)
}
