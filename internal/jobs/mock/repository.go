// Package mock provides in-memory implementations of the jobs repositories
// for tests. The fakes enforce the same guarded-update semantics as the SQL
// queries so state-machine tests exercise real transition rules.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/jobs"
	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/pkg/utils"
)

type MemJobRepo struct {
	mu        sync.Mutex
	jobsByID  map[uuid.UUID]*models.JobRecord
	artifacts map[uuid.UUID][]*models.Artifact
}

func NewMemJobRepo() *MemJobRepo {
	return &MemJobRepo{
		jobsByID:  make(map[uuid.UUID]*models.JobRecord),
		artifacts: make(map[uuid.UUID][]*models.Artifact),
	}
}

func (m *MemJobRepo) clone(job *models.JobRecord) *models.JobRecord {
	cp := *job
	return &cp
}

func (m *MemJobRepo) CreateJob(_ context.Context, job *models.JobRecord) (*models.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := m.clone(job)
	created.JobID = uuid.New()
	created.Status = models.JobStatusCreated
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	if created.AttemptCount == 0 {
		created.AttemptCount = 1
	}
	m.jobsByID[created.JobID] = created
	return m.clone(created), nil
}

func (m *MemJobRepo) GetJobByID(_ context.Context, jobID uuid.UUID) (*models.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobsByID[jobID]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	return m.clone(job), nil
}

func (m *MemJobRepo) GetJobs(_ context.Context, userID uuid.UUID, pq *utils.Pagination) (*models.JobList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*models.JobRecord, 0)
	for _, job := range m.jobsByID {
		if job.UserID == userID {
			list = append(list, m.clone(job))
		}
	}
	return &models.JobList{
		Jobs:       list,
		TotalCount: len(list),
		Page:       pq.GetPage(),
		PageSize:   pq.GetSize(),
	}, nil
}

func (m *MemJobRepo) DeleteJob(_ context.Context, userID, jobID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobsByID[jobID]
	if !ok || job.UserID != userID || !job.Status.IsTerminal() {
		return jobs.ErrNotFound
	}
	delete(m.jobsByID, jobID)
	return nil
}

func (m *MemJobRepo) UpdateStatus(_ context.Context, jobID uuid.UUID, from, to models.JobStatus, step string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobsByID[jobID]
	if !ok || job.Status != from {
		return jobs.ErrInvalidTransition
	}
	job.Status = to
	if step != "" {
		job.CurrentStep = step
	}
	job.Version++
	job.UpdatedAt = time.Now()
	return nil
}

func (m *MemJobRepo) ApplyProgress(_ context.Context, jobID uuid.UUID, progress int, step string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobsByID[jobID]
	if !ok || job.Status.IsTerminal() || job.Progress > progress {
		return false, nil
	}
	job.Progress = progress
	if step != "" {
		job.CurrentStep = step
	}
	now := time.Now()
	job.LastProgressAt = &now
	job.Version++
	job.UpdatedAt = now
	return true, nil
}

func (m *MemJobRepo) MarkReadyWithArtifacts(_ context.Context, jobID uuid.UUID, artifacts []*models.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobsByID[jobID]
	if !ok || job.Status.IsTerminal() {
		return jobs.ErrTerminalState
	}
	m.insertArtifactsLocked(artifacts)
	now := time.Now()
	job.Status = models.JobStatusReady
	job.Progress = 100
	job.Error = ""
	job.ErrorStage = ""
	job.CompletedAt = &now
	job.Version++
	job.UpdatedAt = now
	return nil
}

func (m *MemJobRepo) MarkFailed(_ context.Context, jobID uuid.UUID, stage, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobsByID[jobID]
	if !ok || job.Status.IsTerminal() {
		return jobs.ErrTerminalState
	}
	now := time.Now()
	job.Status = models.JobStatusFailed
	job.Error = message
	job.ErrorStage = stage
	job.CompletedAt = &now
	job.Version++
	job.UpdatedAt = now
	return nil
}

func (m *MemJobRepo) MarkCancelled(_ context.Context, jobID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobsByID[jobID]
	if !ok || job.Status.IsTerminal() {
		return jobs.ErrTerminalState
	}
	now := time.Now()
	job.Status = models.JobStatusCancelled
	job.CompletedAt = &now
	job.Version++
	job.UpdatedAt = now
	return nil
}

func (m *MemJobRepo) AcquireLock(_ context.Context, jobID, lockID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobsByID[jobID]
	if !ok || job.Status != models.JobStatusUploaded || job.ProcessingLockID != nil {
		return jobs.ErrAlreadyClaimed
	}
	now := time.Now()
	job.ProcessingLockID = &lockID
	job.ProcessingStartedAt = &now
	job.Status = models.JobStatusClaimed
	job.Version++
	job.UpdatedAt = now
	return nil
}

func (m *MemJobRepo) ReleaseLock(_ context.Context, jobID, lockID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobsByID[jobID]
	if !ok || job.ProcessingLockID == nil || *job.ProcessingLockID != lockID {
		return nil
	}
	job.ProcessingLockID = nil
	job.ProcessingStartedAt = nil
	job.Version++
	job.UpdatedAt = time.Now()
	return nil
}

func (m *MemJobRepo) SetExternalTask(_ context.Context, jobID uuid.UUID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobsByID[jobID]; ok {
		job.ExternalTaskID = taskID
		job.Version++
	}
	return nil
}

func (m *MemJobRepo) ResetStaleJob(_ context.Context, jobID uuid.UUID, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobsByID[jobID]
	if !ok || job.Status.IsTerminal() || job.ProcessingLockID == nil ||
		job.ProcessingStartedAt == nil || time.Since(*job.ProcessingStartedAt) < ttl {
		return jobs.ErrLockActive
	}
	now := time.Now()
	job.Status = models.JobStatusFailed
	job.Error = "processing lock expired"
	job.ErrorStage = "supervision"
	job.ProcessingLockID = nil
	job.ProcessingStartedAt = nil
	job.CompletedAt = &now
	job.Version++
	return nil
}

func (m *MemJobRepo) insertArtifactsLocked(artifacts []*models.Artifact) {
	for _, a := range artifacts {
		duplicate := false
		for _, existing := range m.artifacts[a.JobID] {
			if existing.S3Key == a.S3Key {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		cp := *a
		cp.ArtifactID = uuid.New()
		cp.CreatedAt = time.Now()
		m.artifacts[a.JobID] = append(m.artifacts[a.JobID], &cp)
	}
}

func (m *MemJobRepo) GetArtifacts(_ context.Context, jobID uuid.UUID) ([]*models.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Artifact, len(m.artifacts[jobID]))
	for i, a := range m.artifacts[jobID] {
		cp := *a
		out[i] = &cp
	}
	return out, nil
}

// Seed installs a job in a given state, bypassing the normal transitions.
func (m *MemJobRepo) Seed(job *models.JobRecord) *models.JobRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.JobID == uuid.Nil {
		job.JobID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	m.jobsByID[job.JobID] = job
	cp := *job
	return &cp
}
