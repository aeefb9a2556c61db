package components

import (
	"testing"

	"github.com/redlantern/fortunebot/fortunebot/presenter"
	"github.com/redlantern/fortunebot/internal/domain/errs"
)

func TestParseReviewID(t *testing.T) {
	tests := []struct {
		customID   string
		wantAction string
		wantID     int64
		wantErr    bool
	}{
		{customID: presenter.ReviewCustomID(presenter.ActionApprove, 12), wantAction: "approve", wantID: 12},
		{customID: presenter.ReviewCustomID(presenter.ActionReject, 3), wantAction: "reject", wantID: 3},
		{customID: "/review/revoke/3", wantErr: true},
		{customID: "/review/approve/abc", wantErr: true},
		{customID: "/review/approve/0", wantErr: true},
		{customID: "/review/approve", wantErr: true},
		{customID: "/claim/3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.customID, func(t *testing.T) {
			action, id, err := ParseReviewID(tt.customID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseReviewID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if errs.KindOf(err) != errs.Validation {
					t.Errorf("kind = %v, want validation", errs.KindOf(err))
				}
				return
			}
			if action != tt.wantAction || id != tt.wantID {
				t.Errorf("ParseReviewID() = %q, %d", action, id)
			}
		})
	}
}
