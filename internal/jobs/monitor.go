package jobs

import (
	"time"

	"github.com/creatorhub/media-orchestrator/internal/models"
)

type MonitorState string

const (
	MonitorOK       MonitorState = "ok"
	MonitorStalled  MonitorState = "stalled"
	MonitorTimedOut MonitorState = "timed_out"
	MonitorDone     MonitorState = "done"
)

// Monitor evaluates job liveness for the progress UI. It runs two independent
// timers against a snapshot: a stale-progress timer reset whenever progress
// advances, and a max-duration timer anchored at job creation. Evaluation is
// pure; server truth is never mutated from here.
type Monitor struct {
	StaleThreshold time.Duration
	MaxDuration    time.Duration
}

func NewMonitor(staleThreshold, maxDuration time.Duration) Monitor {
	return Monitor{StaleThreshold: staleThreshold, MaxDuration: maxDuration}
}

func (m Monitor) Evaluate(job *models.JobRecord, now time.Time) MonitorState {
	if job.Status.IsTerminal() {
		return MonitorDone
	}
	if m.MaxDuration > 0 && now.Sub(job.CreatedAt) > m.MaxDuration {
		return MonitorTimedOut
	}
	lastActivity := job.CreatedAt
	if job.LastProgressAt != nil {
		lastActivity = *job.LastProgressAt
	}
	if m.StaleThreshold > 0 && now.Sub(lastActivity) > m.StaleThreshold {
		return MonitorStalled
	}
	return MonitorOK
}
