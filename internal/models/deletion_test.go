package models

import "testing"

func TestDeletionStatusIsActive(t *testing.T) {
	tests := []struct {
		status DeletionStatus
		active bool
	}{
		{DeletionPending, true},
		{DeletionInProgress, true},
		{DeletionRetrying, true},
		{DeletionCompleted, false},
		{DeletionNeedsManualReview, false},
		{DeletionCancelled, false},
		// Reserved; never holds the per-user slot
		{DeletionFailed, false},
		{DeletionStatus(""), false},
	}
	for _, tt := range tests {
		if got := tt.status.IsActive(); got != tt.active {
			t.Errorf("%q.IsActive() = %v, want %v", tt.status, got, tt.active)
		}
	}
}
