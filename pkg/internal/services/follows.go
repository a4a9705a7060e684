package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	localCache "github.com/socialdistribution/node/pkg/internal/cache"
	"github.com/socialdistribution/node/pkg/internal/database"
	"github.com/socialdistribution/node/pkg/internal/models"
)

func GetFollowRequest(follower, followee uuid.UUID) (models.FollowRequest, error) {
	var request models.FollowRequest
	if err := database.C.
		Where("follower_id = ? AND followee_id = ?", follower, followee).
		Preload("Follower").Preload("Followee").
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return request, ErrNotFound
		}
		return request, fmt.Errorf("unable to get follow request: %v", err)
	}
	return request, nil
}

// GetOrCreateFollowRequest creates the single edge for the ordered pair, or
// returns the live one. A re-request after a rejection resets the same row
// back to the given status instead of inserting a second edge.
func GetOrCreateFollowRequest(follower, followee models.Author, status models.FollowStatus) (models.FollowRequest, bool, error) {
	var request models.FollowRequest

	if follower.ID == followee.ID {
		return request, false, fmt.Errorf("author cannot follow themselves")
	}

	if err := database.C.
		Where("follower_id = ? AND followee_id = ?", follower.ID, followee.ID).
		First(&request).Error; err == nil {
		if next, renew := followRenewal(request.Status, status); renew {
			request.Status = next
			if err := database.C.Model(&request).Update("status", next).Error; err != nil {
				return request, false, fmt.Errorf("unable to renew follow request: %v", err)
			}
			invalidateFriendState(follower.ID, followee.ID)
		}
		return request, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return request, false, fmt.Errorf("unable to check follow request: %v", err)
	}

	request = models.FollowRequest{
		ID:         uuid.New(),
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
		Status:     status,
	}

	if err := database.C.Create(&request).Error; err != nil {
		return request, false, fmt.Errorf("unable to create follow request: %v", err)
	}

	invalidateFriendState(follower.ID, followee.ID)
	return request, true, nil
}

// followRenewal decides what a repeated follow request does to the edge
// that already occupies the pair's unique slot: only a REJECTED edge is
// revived to the requested status, live edges stay as they are.
func followRenewal(current, requested models.FollowStatus) (models.FollowStatus, bool) {
	if current == models.FollowStatusRejected {
		return requested, true
	}
	return current, false
}

// ApproveFollowRequest moves a pending edge to APPROVED. Calling it on an
// already approved edge is a no-op.
func ApproveFollowRequest(request models.FollowRequest) error {
	if request.Status == models.FollowStatusApproved {
		return nil
	}
	if err := database.C.Model(&request).
		Update("status", models.FollowStatusApproved).Error; err != nil {
		return fmt.Errorf("unable to approve follow request: %v", err)
	}
	invalidateFriendState(request.FollowerID, request.FolloweeID)
	return nil
}

// RejectFollowRequest moves an edge to REJECTED from any state, no-op when
// already rejected.
func RejectFollowRequest(request models.FollowRequest) error {
	if request.Status == models.FollowStatusRejected {
		return nil
	}
	if err := database.C.Model(&request).
		Update("status", models.FollowStatusRejected).Error; err != nil {
		return fmt.Errorf("unable to reject follow request: %v", err)
	}
	invalidateFriendState(request.FollowerID, request.FolloweeID)
	return nil
}

// DeleteFollowRequest removes the edge entirely (unfollow), freeing the
// unique slot for a fresh PENDING request.
func DeleteFollowRequest(request models.FollowRequest) error {
	if err := database.C.Delete(&request).Error; err != nil {
		return fmt.Errorf("unable to delete follow request: %v", err)
	}
	invalidateFriendState(request.FollowerID, request.FolloweeID)
	return nil
}

func ListFollowers(author uuid.UUID) ([]models.Author, error) {
	var edges []models.FollowRequest
	if err := database.C.
		Where("followee_id = ? AND status = ? AND follower_id != ?",
			author, models.FollowStatusApproved, author).
		Preload("Follower").
		Find(&edges).Error; err != nil {
		return nil, fmt.Errorf("unable to list followers: %v", err)
	}

	return lo.Map(edges, func(item models.FollowRequest, _ int) models.Author {
		return item.Follower
	}), nil
}

func ListFollowing(author uuid.UUID) ([]models.Author, error) {
	var edges []models.FollowRequest
	if err := database.C.
		Where("follower_id = ? AND status = ?", author, models.FollowStatusApproved).
		Preload("Followee").
		Find(&edges).Error; err != nil {
		return nil, fmt.Errorf("unable to list following: %v", err)
	}

	return lo.Map(edges, func(item models.FollowRequest, _ int) models.Author {
		return item.Followee
	}), nil
}

// ListFriends returns the followers the author also follows back, both
// edges APPROVED.
func ListFriends(author uuid.UUID) ([]models.Author, error) {
	followers, err := ListFollowers(author)
	if err != nil {
		return nil, err
	}
	following, err := ListFollowing(author)
	if err != nil {
		return nil, err
	}

	followingIdx := lo.SliceToMap(following, func(item models.Author) (uuid.UUID, bool) {
		return item.ID, true
	})

	return lo.Filter(followers, func(item models.Author, _ int) bool {
		return followingIdx[item.ID]
	}), nil
}

func CountPendingIncoming(author uuid.UUID) (int64, error) {
	var count int64
	if err := database.C.Model(&models.FollowRequest{}).
		Where("followee_id = ? AND status = ?", author, models.FollowStatusPending).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("unable to count pending follow requests: %v", err)
	}
	return count, nil
}

// IsFollowing reports whether an APPROVED follower -> followee edge exists.
func IsFollowing(follower, followee uuid.UUID) bool {
	var count int64
	if err := database.C.Model(&models.FollowRequest{}).
		Where("follower_id = ? AND followee_id = ? AND status = ?",
			follower, followee, models.FollowStatusApproved).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// AreFriends reports whether APPROVED edges exist in both directions. The
// answer is symmetric and cached for a short window since the visibility
// engine asks it on every FRIENDS read.
func AreFriends(a, b uuid.UUID) bool {
	if a == b {
		return false
	}

	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	ctx := context.Background()

	key := friendStateKey(a, b)
	if cached, err := marshal.Get(ctx, key, new(bool)); err == nil {
		return *(cached.(*bool))
	}

	// Two existence queries, short-circuit on the first miss.
	state := IsFollowing(a, b) && IsFollowing(b, a)

	_ = marshal.Set(ctx, key, state,
		store.WithExpiration(5*time.Minute),
		store.WithTags([]string{friendStateTag(a), friendStateTag(b)}),
	)

	return state
}

func friendStateKey(a, b uuid.UUID) string {
	if b.String() < a.String() {
		a, b = b, a
	}
	return fmt.Sprintf("friend-state#%s:%s", a, b)
}

func friendStateTag(id uuid.UUID) string {
	return fmt.Sprintf("friend-state-author#%s", id)
}

func invalidateFriendState(a, b uuid.UUID) {
	cacheManager := cache.New[any](localCache.S)
	ctx := context.Background()
	_ = cacheManager.Invalidate(ctx, store.WithInvalidateTags([]string{
		friendStateTag(a), friendStateTag(b),
	}))
}
