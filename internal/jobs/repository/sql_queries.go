package repository

const (
	createJobQuery = `INSERT INTO job_records (user_id, profile_id, kind, source_file_name, source_s3_key, source_bucket, status, attempt_count)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING *`

	getJobByIDQuery = `SELECT job_id, user_id, profile_id, kind, source_file_name, source_s3_key, source_bucket, status, progress,
					current_step, processing_lock_id, processing_started_at, external_task_id, error, error_stage,
					attempt_count, last_progress_at, version, created_at, updated_at, completed_at
					FROM job_records WHERE job_id = $1`

	getJobsByUserIDQuery = `SELECT job_id, user_id, profile_id, kind, source_file_name, source_s3_key, source_bucket, status, progress,
					current_step, processing_lock_id, processing_started_at, external_task_id, error, error_stage,
					attempt_count, last_progress_at, version, created_at, updated_at, completed_at
					FROM job_records WHERE user_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`

	getTotalJobsByUserIDQuery = `SELECT COUNT(job_id) FROM job_records WHERE user_id = $1`

	// Deletion is an explicit user action and only valid once the job has
	// settled; the pipeline itself never destroys a record.
	deleteJobQuery = `DELETE FROM job_records WHERE job_id = $1 AND user_id = $2 AND status IN ('ready', 'failed', 'cancelled')`

	updateStatusQuery = `UPDATE job_records
					SET status = $3, current_step = COALESCE(NULLIF($4, ''), current_step), version = version + 1, updated_at = now()
					WHERE job_id = $1 AND status = $2`

	// Progress applies only when it does not move backwards and the job is
	// still active: this is what makes duplicate and out-of-order webhook
	// deliveries no-ops.
	applyProgressQuery = `UPDATE job_records
					SET progress = $2, current_step = COALESCE(NULLIF($3, ''), current_step),
					    last_progress_at = now(), version = version + 1, updated_at = now()
					WHERE job_id = $1 AND progress <= $2 AND status NOT IN ('ready', 'failed', 'cancelled')`

	markReadyQuery = `UPDATE job_records
					SET status = 'ready', progress = 100, error = '', error_stage = '',
					    completed_at = now(), version = version + 1, updated_at = now()
					WHERE job_id = $1 AND status NOT IN ('ready', 'failed', 'cancelled')`

	markFailedQuery = `UPDATE job_records
					SET status = 'failed', error = $3, error_stage = $2, completed_at = now(),
					    version = version + 1, updated_at = now()
					WHERE job_id = $1 AND status NOT IN ('ready', 'failed', 'cancelled')`

	markCancelledQuery = `UPDATE job_records
					SET status = 'cancelled', completed_at = now(), version = version + 1, updated_at = now()
					WHERE job_id = $1 AND status NOT IN ('ready', 'failed', 'cancelled')`

	// Compare-and-set claim: only an uploaded job with no lock can be
	// claimed. An expired lock on a wedged job is recovered through the
	// stale-job reset and a retry, never reclaimed in place.
	acquireLockQuery = `UPDATE job_records
					SET processing_lock_id = $2, processing_started_at = now(), status = 'claimed',
					    version = version + 1, updated_at = now()
					WHERE job_id = $1
					  AND status = 'uploaded'
					  AND processing_lock_id IS NULL`

	releaseLockQuery = `UPDATE job_records
					SET processing_lock_id = NULL, processing_started_at = NULL,
					    version = version + 1, updated_at = now()
					WHERE job_id = $1 AND processing_lock_id = $2`

	setExternalTaskQuery = `UPDATE job_records
					SET external_task_id = $2, version = version + 1, updated_at = now()
					WHERE job_id = $1`

	resetStaleJobQuery = `UPDATE job_records
					SET status = 'failed', error = 'processing lock expired', error_stage = 'supervision',
					    processing_lock_id = NULL, processing_started_at = NULL,
					    completed_at = now(), version = version + 1, updated_at = now()
					WHERE job_id = $1
					  AND status NOT IN ('ready', 'failed', 'cancelled')
					  AND processing_lock_id IS NOT NULL
					  AND processing_started_at < now() - $2::interval`

	insertArtifactQuery = `INSERT INTO job_artifacts (job_id, kind, s3_key, s3_bucket, title, duration)
					VALUES ($1, $2, $3, $4, $5, $6)
					ON CONFLICT (job_id, s3_key) DO NOTHING`

	getArtifactsQuery = `SELECT artifact_id, job_id, kind, s3_key, s3_bucket, title, duration, created_at
					FROM job_artifacts WHERE job_id = $1 ORDER BY created_at`
)
