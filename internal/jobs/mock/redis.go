package mock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/models"
)

type claim struct {
	holder    uuid.UUID
	expiresAt time.Time
}

type MemRedisRepo struct {
	mu          sync.Mutex
	claims      map[uuid.UUID]claim
	cached      map[uuid.UUID]*models.JobRecord
	subscribers map[uuid.UUID][]chan *models.JobRecord

	Published []*models.JobRecord
}

func NewMemRedisRepo() *MemRedisRepo {
	return &MemRedisRepo{
		claims:      make(map[uuid.UUID]claim),
		cached:      make(map[uuid.UUID]*models.JobRecord),
		subscribers: make(map[uuid.UUID][]chan *models.JobRecord),
	}
}

func (m *MemRedisRepo) PublishUpdate(_ context.Context, job *models.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.Published = append(m.Published, &cp)
	for _, ch := range m.subscribers[job.JobID] {
		select {
		case ch <- &cp:
		default:
		}
	}
	return nil
}

func (m *MemRedisRepo) SubscribeToJob(_ context.Context, jobID uuid.UUID) (<-chan *models.JobRecord, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *models.JobRecord, 16)
	m.subscribers[jobID] = append(m.subscribers[jobID], ch)
	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subs := m.subscribers[jobID]
		for i, sub := range subs {
			if sub == ch {
				m.subscribers[jobID] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
	}
	return ch, cancel, nil
}

func (m *MemRedisRepo) CacheJob(_ context.Context, job *models.JobRecord, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.cached[job.JobID] = &cp
	return nil
}

func (m *MemRedisRepo) GetCachedJob(_ context.Context, jobID uuid.UUID) (*models.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.cached[jobID]; ok {
		cp := *job
		return &cp, nil
	}
	return nil, nil
}

func (m *MemRedisRepo) TryClaim(_ context.Context, jobID, lockID uuid.UUID, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.claims[jobID]; ok && time.Now().Before(c.expiresAt) {
		return false, nil
	}
	m.claims[jobID] = claim{holder: lockID, expiresAt: time.Now().Add(ttl)}
	return true, nil
}

func (m *MemRedisRepo) ReleaseClaim(_ context.Context, jobID, lockID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.claims[jobID]; ok && c.holder == lockID {
		delete(m.claims, jobID)
	}
	return nil
}
