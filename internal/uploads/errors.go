package uploads

import "errors"

var (
	// ErrInvalidJob is returned when a session is requested for a job that is
	// not in a pre-upload state.
	ErrInvalidJob = errors.New("job is not in a pre-upload state")

	// ErrSessionNotFound is returned when the session id does not resolve.
	ErrSessionNotFound = errors.New("upload session not found")

	// ErrSessionClosed is returned when a part operation hits a completed or
	// aborted session.
	ErrSessionClosed = errors.New("upload session is closed")

	// ErrSessionPaused is returned when a presign is requested on a paused
	// session; recorded parts are still accepted so in-flight transfers can
	// land.
	ErrSessionPaused = errors.New("upload session is paused")

	// ErrIncompleteUpload is returned at finalize when parts 1..totalParts
	// are not each present exactly once.
	ErrIncompleteUpload = errors.New("upload has missing parts")

	// ErrStoreFinalization is returned when the blob store rejects the
	// complete-multipart call, typically over ETag formatting.
	ErrStoreFinalization = errors.New("store rejected multipart finalization")

	// ErrInvalidPart is returned when the part number is outside
	// 1..totalParts.
	ErrInvalidPart = errors.New("part number out of range")
)
