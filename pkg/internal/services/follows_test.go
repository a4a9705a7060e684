package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/socialdistribution/node/pkg/internal/models"
)

func TestFollowRenewal(t *testing.T) {
	tests := []struct {
		name      string
		current   models.FollowStatus
		requested models.FollowStatus
		want      models.FollowStatus
		wantRenew bool
	}{
		{"rejected revives to pending", models.FollowStatusRejected, models.FollowStatusPending, models.FollowStatusPending, true},
		{"rejected revives to approved", models.FollowStatusRejected, models.FollowStatusApproved, models.FollowStatusApproved, true},
		{"pending edge is untouched", models.FollowStatusPending, models.FollowStatusPending, models.FollowStatusPending, false},
		{"approved edge is untouched", models.FollowStatusApproved, models.FollowStatusPending, models.FollowStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, renew := followRenewal(tt.current, tt.requested)
			if got != tt.want || renew != tt.wantRenew {
				t.Errorf("followRenewal(%s, %s) = (%s, %v), want (%s, %v)",
					tt.current, tt.requested, got, renew, tt.want, tt.wantRenew)
			}
		})
	}
}

func TestApproveFollowRequestIdempotent(t *testing.T) {
	request := models.FollowRequest{
		ID:         uuid.New(),
		FollowerID: uuid.New(),
		FolloweeID: uuid.New(),
		Status:     models.FollowStatusApproved,
	}

	// A second approve of an already approved edge is a no-op: no write is
	// attempted and no error comes back.
	if err := ApproveFollowRequest(request); err != nil {
		t.Errorf("ApproveFollowRequest(approved) = %v, want nil", err)
	}
}

func TestRejectFollowRequestIdempotent(t *testing.T) {
	request := models.FollowRequest{
		ID:         uuid.New(),
		FollowerID: uuid.New(),
		FolloweeID: uuid.New(),
		Status:     models.FollowStatusRejected,
	}

	if err := RejectFollowRequest(request); err != nil {
		t.Errorf("RejectFollowRequest(rejected) = %v, want nil", err)
	}
}

func TestGetOrCreateFollowRequestRejectsSelfFollow(t *testing.T) {
	author := models.Author{ID: uuid.New()}

	_, _, err := GetOrCreateFollowRequest(author, author, models.FollowStatusPending)
	if err == nil {
		t.Fatal("self-follow should be rejected")
	}
}
