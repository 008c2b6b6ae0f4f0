package repository

const (
	createSessionQuery = `INSERT INTO upload_sessions (job_id, s3_key, s3_bucket, upload_id, content_type, total_bytes, part_size, total_parts, status)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'ACTIVE') RETURNING *`

	getSessionByIDQuery = `SELECT session_id, job_id, s3_key, s3_bucket, upload_id, content_type, total_bytes, part_size, total_parts,
					COALESCE((SELECT SUM(size) FROM upload_parts p WHERE p.session_id = s.session_id), 0) AS bytes_uploaded,
					status, created_at, updated_at
					FROM upload_sessions s WHERE session_id = $1`

	getActiveSessionByJobIDQuery = `SELECT session_id, job_id, s3_key, s3_bucket, upload_id, content_type, total_bytes, part_size, total_parts,
					COALESCE((SELECT SUM(size) FROM upload_parts p WHERE p.session_id = s.session_id), 0) AS bytes_uploaded,
					status, created_at, updated_at
					FROM upload_sessions s WHERE job_id = $1 AND status IN ('ACTIVE', 'PAUSED')`

	updateSessionStatusQuery = `UPDATE upload_sessions SET status = $3, updated_at = now()
					WHERE session_id = $1 AND status = $2`

	// Re-uploading a part replaces its recorded ETag; the store keeps only
	// the latest copy of a part, so must we.
	upsertPartQuery = `INSERT INTO upload_parts (session_id, part_number, etag, size)
					VALUES ($1, $2, $3, $4)
					ON CONFLICT (session_id, part_number)
					DO UPDATE SET etag = EXCLUDED.etag, size = EXCLUDED.size, uploaded_at = now()`

	getPartsQuery = `SELECT session_id, part_number, etag, size, uploaded_at
					FROM upload_parts WHERE session_id = $1 ORDER BY part_number`
)
