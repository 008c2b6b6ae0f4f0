package jobs

import (
	"testing"
	"time"

	"github.com/creatorhub/media-orchestrator/internal/models"
)

func TestMonitorEvaluate(t *testing.T) {
	t.Parallel()

	monitor := NewMonitor(5*time.Minute, 60*time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	progressAt := func(d time.Duration) *time.Time {
		ts := base.Add(d)
		return &ts
	}

	cases := []struct {
		name string
		job  *models.JobRecord
		now  time.Time
		want MonitorState
	}{
		{
			name: "fresh job is ok",
			job:  &models.JobRecord{Status: models.JobStatusProcessing, CreatedAt: base},
			now:  base.Add(2 * time.Minute),
			want: MonitorOK,
		},
		{
			name: "recent progress resets the stale timer",
			job: &models.JobRecord{
				Status:         models.JobStatusProcessing,
				CreatedAt:      base,
				LastProgressAt: progressAt(10 * time.Minute),
			},
			now:  base.Add(13 * time.Minute),
			want: MonitorOK,
		},
		{
			name: "no progress past the threshold is stalled",
			job: &models.JobRecord{
				Status:         models.JobStatusProcessing,
				CreatedAt:      base,
				LastProgressAt: progressAt(1 * time.Minute),
			},
			now:  base.Add(7 * time.Minute),
			want: MonitorStalled,
		},
		{
			name: "never any progress is stalled off created_at",
			job:  &models.JobRecord{Status: models.JobStatusClaimed, CreatedAt: base},
			now:  base.Add(6 * time.Minute),
			want: MonitorStalled,
		},
		{
			name: "max duration wins over recent progress",
			job: &models.JobRecord{
				Status:         models.JobStatusProcessing,
				CreatedAt:      base,
				LastProgressAt: progressAt(61 * time.Minute),
			},
			now:  base.Add(62 * time.Minute),
			want: MonitorTimedOut,
		},
		{
			name: "ready job is done even after an hour",
			job:  &models.JobRecord{Status: models.JobStatusReady, CreatedAt: base},
			now:  base.Add(90 * time.Minute),
			want: MonitorDone,
		},
		{
			name: "cancelled job is done",
			job:  &models.JobRecord{Status: models.JobStatusCancelled, CreatedAt: base},
			now:  base.Add(10 * time.Minute),
			want: MonitorDone,
		},
		{
			name: "failed job is done",
			job:  &models.JobRecord{Status: models.JobStatusFailed, CreatedAt: base},
			now:  base.Add(2 * time.Minute),
			want: MonitorDone,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := monitor.Evaluate(tc.job, tc.now); got != tc.want {
				t.Errorf("Evaluate() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestMonitorZeroThresholdsDisableTimers(t *testing.T) {
	t.Parallel()

	monitor := NewMonitor(0, 0)
	job := &models.JobRecord{
		Status:    models.JobStatusProcessing,
		CreatedAt: time.Now().Add(-24 * time.Hour),
	}
	if got := monitor.Evaluate(job, time.Now()); got != MonitorOK {
		t.Errorf("Evaluate() with disabled timers = %s, want %s", got, MonitorOK)
	}
}
