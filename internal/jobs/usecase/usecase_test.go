package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/config"
	"github.com/creatorhub/media-orchestrator/internal/jobs"
	"github.com/creatorhub/media-orchestrator/internal/jobs/mock"
	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/pkg/logger"
	"github.com/creatorhub/media-orchestrator/pkg/utils"
)

type fakeDispatcher struct {
	mu        sync.Mutex
	submits   int
	stops     []uuid.UUID
	submitErr error
}

func (f *fakeDispatcher) Submit(_ context.Context, job *models.JobRecord, _ map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submits++
	return "task-" + job.JobID.String()[:8], nil
}

func (f *fakeDispatcher) Stop(_ context.Context, job *models.JobRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops = append(f.stops, job.JobID)
	return nil
}

type fakeAborter struct {
	mu      sync.Mutex
	aborted []uuid.UUID
}

func (f *fakeAborter) AbortActiveSessionForJob(_ context.Context, jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = append(f.aborted, jobID)
	return nil
}

type fixture struct {
	uc         jobs.UseCase
	jobRepo    *mock.MemJobRepo
	redisRepo  *mock.MemRedisRepo
	dispatcher *fakeDispatcher
	aborter    *fakeAborter
	user       *models.User
	ctx        context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		S3: config.S3Config{UploadBucket: "uploads"},
		Worker: config.WorkerConfig{
			LockTTL:         15 * time.Minute,
			DispatchTimeout: 5 * time.Second,
		},
		Monitor: config.MonitorConfig{
			StaleThreshold: 5 * time.Minute,
			MaxDuration:    60 * time.Minute,
		},
		Logger: config.Logger{Development: true, Level: "error"},
	}
	log := logger.NewApiLogger(cfg)
	log.InitLogger()

	jobRepo := mock.NewMemJobRepo()
	redisRepo := mock.NewMemRedisRepo()
	dispatcher := &fakeDispatcher{}
	aborter := &fakeAborter{}
	user := &models.User{UserID: uuid.New(), Role: models.UserRole}

	return &fixture{
		uc:         NewJobUseCase(cfg, jobRepo, redisRepo, dispatcher, aborter, log),
		jobRepo:    jobRepo,
		redisRepo:  redisRepo,
		dispatcher: dispatcher,
		aborter:    aborter,
		user:       user,
		ctx:        context.WithValue(context.Background(), utils.UserCtxKey{}, user),
	}
}

func (f *fixture) seedUploaded() *models.JobRecord {
	return f.jobRepo.Seed(&models.JobRecord{
		UserID:         f.user.UserID,
		Kind:           models.JobKindClip,
		SourceFileName: "stream.mp4",
		SourceS3Key:    "uploads/job/stream.mp4",
		SourceBucket:   "uploads",
		Status:         models.JobStatusUploaded,
		AttemptCount:   1,
	})
}

func TestCreateJobAssignsObjectKey(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	created, err := f.uc.CreateJob(f.ctx, &models.JobCreateInput{
		Kind:           models.JobKindClip,
		SourceFileName: "stream.mp4",
	})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if created.Status != models.JobStatusCreated {
		t.Errorf("status = %s, want created", created.Status)
	}
	if created.SourceS3Key == "" || created.SourceBucket != "uploads" {
		t.Errorf("object location not assigned: %q/%q", created.SourceBucket, created.SourceS3Key)
	}
	if created.AttemptCount != 1 {
		t.Errorf("attempt count = %d, want 1", created.AttemptCount)
	}
}

func TestDispatchClaimsAndSubmits(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	job := f.seedUploaded()

	dispatched, err := f.uc.Dispatch(f.ctx, job.JobID)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if dispatched.Status != models.JobStatusClaimed {
		t.Errorf("status = %s, want claimed", dispatched.Status)
	}
	if dispatched.ProcessingLockID == nil {
		t.Error("processing lock not set")
	}
	if dispatched.ExternalTaskID == "" {
		t.Error("external task id not recorded")
	}
	if f.dispatcher.submits != 1 {
		t.Errorf("worker submits = %d, want 1", f.dispatcher.submits)
	}

	// A second dispatch of the same job hits the live lock.
	if _, err = f.uc.Dispatch(f.ctx, job.JobID); !errors.Is(err, jobs.ErrAlreadyClaimed) {
		t.Errorf("second dispatch error = %v, want ErrAlreadyClaimed", err)
	}
}

func TestDispatchConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	job := f.seedUploaded()

	const racers = 8
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Dispatch(f.ctx, job.JobID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, claimed int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, jobs.ErrAlreadyClaimed):
			claimed++
		default:
			t.Errorf("unexpected race error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("winners = %d, want exactly 1", wins)
	}
	if claimed != racers-1 {
		t.Errorf("rejected racers = %d, want %d", claimed, racers-1)
	}
	if f.dispatcher.submits != 1 {
		t.Errorf("worker submits = %d, want 1", f.dispatcher.submits)
	}
}

func TestDispatchRequiresUploadedState(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	job := f.jobRepo.Seed(&models.JobRecord{
		UserID:         f.user.UserID,
		Kind:           models.JobKindClip,
		SourceFileName: "stream.mp4",
		Status:         models.JobStatusUploading,
	})
	if _, err := f.uc.Dispatch(f.ctx, job.JobID); !errors.Is(err, jobs.ErrInvalidTransition) {
		t.Errorf("dispatch of uploading job: %v, want ErrInvalidTransition", err)
	}

	cancelled := f.jobRepo.Seed(&models.JobRecord{
		UserID:         f.user.UserID,
		Kind:           models.JobKindClip,
		SourceFileName: "stream.mp4",
		Status:         models.JobStatusCancelled,
	})
	if _, err := f.uc.Dispatch(f.ctx, cancelled.JobID); !errors.Is(err, jobs.ErrTerminalState) {
		t.Errorf("dispatch of cancelled job: %v, want ErrTerminalState", err)
	}
}

func TestDispatchSubmitFailureReleasesLock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	job := f.seedUploaded()
	f.dispatcher.submitErr = errors.New("worker unreachable")

	if _, err := f.uc.Dispatch(f.ctx, job.JobID); err == nil {
		t.Fatal("expected submit failure to surface")
	}

	got, _ := f.jobRepo.GetJobByID(f.ctx, job.JobID)
	if got.Status != models.JobStatusFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
	if got.ErrorStage != "dispatch" {
		t.Errorf("error stage = %q, want dispatch", got.ErrorStage)
	}
	if got.ProcessingLockID != nil {
		t.Error("lock not released after submit failure")
	}
}

func TestCancelJobMarksTerminalAndCleansUp(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	job := f.seedUploaded()
	if _, err := f.uc.Dispatch(f.ctx, job.JobID); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if err := f.uc.CancelJob(f.ctx, job.JobID); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}

	got, _ := f.jobRepo.GetJobByID(f.ctx, job.JobID)
	if got.Status != models.JobStatusCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}
	if len(f.aborter.aborted) != 1 {
		t.Errorf("upload aborts = %d, want 1", len(f.aborter.aborted))
	}
	if len(f.dispatcher.stops) != 1 {
		t.Errorf("worker stops = %d, want 1", len(f.dispatcher.stops))
	}

	if err := f.uc.CancelJob(f.ctx, job.JobID); !errors.Is(err, jobs.ErrTerminalState) {
		t.Errorf("second cancel error = %v, want ErrTerminalState", err)
	}
}

func TestCancelJobWithoutWorkerSkipsStop(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	job := f.seedUploaded()

	if err := f.uc.CancelJob(f.ctx, job.JobID); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}
	if len(f.dispatcher.stops) != 0 {
		t.Errorf("worker stop sent for a never-dispatched job")
	}
}

func TestRetryJobCreatesFreshRecord(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	failed := f.jobRepo.Seed(&models.JobRecord{
		UserID:         f.user.UserID,
		Kind:           models.JobKindTrailer,
		SourceFileName: "vod.mp4",
		SourceS3Key:    "uploads/job/vod.mp4",
		SourceBucket:   "uploads",
		Status:         models.JobStatusFailed,
		Error:          "render crashed",
		AttemptCount:   1,
	})

	fresh, err := f.uc.RetryJob(f.ctx, failed.JobID)
	if err != nil {
		t.Fatalf("RetryJob: %v", err)
	}
	if fresh.JobID == failed.JobID {
		t.Fatal("retry mutated the original record instead of creating a new one")
	}
	if fresh.AttemptCount != 2 {
		t.Errorf("attempt count = %d, want 2", fresh.AttemptCount)
	}
	// Source already in the store: the new job skips the upload phase.
	if fresh.Status != models.JobStatusUploaded {
		t.Errorf("status = %s, want uploaded", fresh.Status)
	}
	if fresh.SourceS3Key != failed.SourceS3Key {
		t.Errorf("source key = %q, want reuse of %q", fresh.SourceS3Key, failed.SourceS3Key)
	}

	// The original stays terminal and untouched.
	original, _ := f.jobRepo.GetJobByID(f.ctx, failed.JobID)
	if original.Status != models.JobStatusFailed || original.Error != "render crashed" {
		t.Errorf("original record changed: %s/%q", original.Status, original.Error)
	}
}

func TestRetryJobBeforeUploadStartsOver(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	abandoned := f.jobRepo.Seed(&models.JobRecord{
		UserID:         f.user.UserID,
		Kind:           models.JobKindClip,
		SourceFileName: "stream.mp4",
		SourceS3Key:    "uploads/job/stream.mp4",
		SourceBucket:   "uploads",
		Status:         models.JobStatusUploading,
		AttemptCount:   1,
	})

	fresh, err := f.uc.RetryJob(f.ctx, abandoned.JobID)
	if err != nil {
		t.Fatalf("RetryJob: %v", err)
	}
	// No finished source exists yet; the retry must upload again.
	if fresh.Status != models.JobStatusCreated {
		t.Errorf("status = %s, want created", fresh.Status)
	}
}

func TestGetStatusEnrichesWithMonitorAndArtifacts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	stalledAt := time.Now().Add(-10 * time.Minute)
	stalled := f.jobRepo.Seed(&models.JobRecord{
		UserID:         f.user.UserID,
		Kind:           models.JobKindClip,
		SourceFileName: "stream.mp4",
		Status:         models.JobStatusProcessing,
		CreatedAt:      stalledAt,
		LastProgressAt: &stalledAt,
	})

	view, err := f.uc.GetStatus(f.ctx, stalled.JobID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if view.Monitor != jobs.MonitorStalled {
		t.Errorf("monitor = %s, want stalled", view.Monitor)
	}
	if view.Artifacts != nil {
		t.Error("artifacts attached to a non-ready job")
	}

	ready := f.jobRepo.Seed(&models.JobRecord{
		UserID:         f.user.UserID,
		Kind:           models.JobKindClip,
		SourceFileName: "stream.mp4",
		Status:         models.JobStatusProcessing,
	})
	if err = f.jobRepo.MarkReadyWithArtifacts(f.ctx, ready.JobID, []*models.Artifact{
		{JobID: ready.JobID, Kind: models.ArtifactKindClip, S3Key: "clips/a.mp4", S3Bucket: "outputs"},
	}); err != nil {
		t.Fatal(err)
	}

	view, err = f.uc.GetStatus(f.ctx, ready.JobID)
	if err != nil {
		t.Fatalf("GetStatus(ready): %v", err)
	}
	if view.Monitor != jobs.MonitorDone {
		t.Errorf("monitor = %s, want done", view.Monitor)
	}
	if len(view.Artifacts) != 1 {
		t.Errorf("artifacts = %d, want 1", len(view.Artifacts))
	}
}

func TestGetJobFillsSnapshotCache(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	job := f.seedUploaded()

	got, err := f.uc.GetJob(f.ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.JobID != job.JobID {
		t.Fatalf("got job %s, want %s", got.JobID, job.JobID)
	}

	cached, err := f.redisRepo.GetCachedJob(f.ctx, job.JobID)
	if err != nil || cached == nil {
		t.Fatalf("snapshot not cached after read: %v", err)
	}

	// A cached snapshot never bypasses the ownership check.
	stranger := context.WithValue(context.Background(), utils.UserCtxKey{},
		&models.User{UserID: uuid.New(), Role: models.UserRole})
	if _, err = f.uc.GetJob(stranger, job.JobID); !errors.Is(err, jobs.ErrForbidden) {
		t.Errorf("cached read by stranger: %v, want ErrForbidden", err)
	}
}

func TestForeignJobAccessForbidden(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	job := f.seedUploaded()
	stranger := context.WithValue(context.Background(), utils.UserCtxKey{},
		&models.User{UserID: uuid.New(), Role: models.UserRole})

	if _, err := f.uc.GetJob(stranger, job.JobID); !errors.Is(err, jobs.ErrForbidden) {
		t.Errorf("GetJob by stranger: %v, want ErrForbidden", err)
	}
	if _, err := f.uc.Dispatch(stranger, job.JobID); !errors.Is(err, jobs.ErrForbidden) {
		t.Errorf("Dispatch by stranger: %v, want ErrForbidden", err)
	}

	admin := context.WithValue(context.Background(), utils.UserCtxKey{},
		&models.User{UserID: uuid.New(), Role: models.AdminRole})
	if _, err := f.uc.GetJob(admin, job.JobID); err != nil {
		t.Errorf("GetJob by admin: %v", err)
	}
}

func TestResetStaleJobAdminOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	lockID := uuid.New()
	expired := time.Now().Add(-30 * time.Minute)
	wedged := f.jobRepo.Seed(&models.JobRecord{
		UserID:              f.user.UserID,
		Kind:                models.JobKindClip,
		SourceFileName:      "stream.mp4",
		Status:              models.JobStatusProcessing,
		ProcessingLockID:    &lockID,
		ProcessingStartedAt: &expired,
	})

	if err := f.uc.ResetStaleJob(f.ctx, wedged.JobID); !errors.Is(err, jobs.ErrForbidden) {
		t.Fatalf("non-admin reset: %v, want ErrForbidden", err)
	}

	admin := context.WithValue(context.Background(), utils.UserCtxKey{},
		&models.User{UserID: uuid.New(), Role: models.AdminRole})
	if err := f.uc.ResetStaleJob(admin, wedged.JobID); err != nil {
		t.Fatalf("admin reset: %v", err)
	}

	got, _ := f.jobRepo.GetJobByID(f.ctx, wedged.JobID)
	if got.Status != models.JobStatusFailed || got.ProcessingLockID != nil {
		t.Errorf("after reset: status %s, lock %v", got.Status, got.ProcessingLockID)
	}
}

func TestWatchJobReceivesPublishedUpdates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	job := f.seedUploaded()

	ch, cancel, err := f.uc.WatchJob(f.ctx, job.JobID)
	if err != nil {
		t.Fatalf("WatchJob: %v", err)
	}
	defer cancel()

	if _, err = f.uc.Dispatch(f.ctx, job.JobID); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	select {
	case update := <-ch:
		if update.Status != models.JobStatusClaimed {
			t.Errorf("watched update status = %s, want claimed", update.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("no update received on watch channel")
	}
}
