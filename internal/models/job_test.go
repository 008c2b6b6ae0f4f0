package models

import "testing"

func TestJobStatusCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		from JobStatus
		to   JobStatus
		want bool
	}{
		{"created to uploading", JobStatusCreated, JobStatusUploading, true},
		{"created to uploaded", JobStatusCreated, JobStatusUploaded, true},
		{"uploading to uploaded", JobStatusUploading, JobStatusUploaded, true},
		{"uploaded to claimed", JobStatusUploaded, JobStatusClaimed, true},
		{"claimed to processing", JobStatusClaimed, JobStatusProcessing, true},
		{"claimed to proxy", JobStatusClaimed, JobStatusProxy, true},
		{"proxy to transcribe", JobStatusProxy, JobStatusTranscribe, true},
		{"render to upload_output", JobStatusRender, JobStatusUploadOutput, true},

		{"no backwards to created", JobStatusUploaded, JobStatusCreated, false},
		{"no backwards sub-state", JobStatusScenes, JobStatusProxy, false},
		{"forward skip is allowed", JobStatusUploading, JobStatusProcessing, true},
		{"uploaded cannot regress", JobStatusUploaded, JobStatusUploading, false},

		{"ready only from processing", JobStatusUploaded, JobStatusReady, false},
		{"ready from claimed", JobStatusClaimed, JobStatusReady, true},
		{"ready from processing", JobStatusProcessing, JobStatusReady, true},
		{"ready from render", JobStatusRender, JobStatusReady, true},
		{"created cannot go ready", JobStatusCreated, JobStatusReady, false},

		{"failed from created", JobStatusCreated, JobStatusFailed, true},
		{"failed from processing", JobStatusProcessing, JobStatusFailed, true},
		{"cancelled from created", JobStatusCreated, JobStatusCancelled, true},
		{"cancelled from claimed", JobStatusClaimed, JobStatusCancelled, true},

		{"ready is terminal", JobStatusReady, JobStatusFailed, false},
		{"failed is terminal", JobStatusFailed, JobStatusCancelled, false},
		{"cancelled is terminal", JobStatusCancelled, JobStatusReady, false},
		{"cancelled stays cancelled", JobStatusCancelled, JobStatusProcessing, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.from.CanTransition(tc.to); got != tc.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	t.Parallel()

	terminal := []JobStatus{JobStatusReady, JobStatusFailed, JobStatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}

	active := []JobStatus{
		JobStatusCreated, JobStatusUploading, JobStatusUploaded,
		JobStatusClaimed, JobStatusProcessing, JobStatusRender,
	}
	for _, s := range active {
		if s.IsTerminal() {
			t.Errorf("expected %s to be active", s)
		}
	}
}

func TestJobStatusIsProcessing(t *testing.T) {
	t.Parallel()

	if !JobStatusProxy.IsProcessing() || !JobStatusProcessing.IsProcessing() {
		t.Error("expected worker sub-states to report processing")
	}
	if JobStatusClaimed.IsProcessing() || JobStatusReady.IsProcessing() {
		t.Error("claimed and terminal states are not worker-owned")
	}
}
