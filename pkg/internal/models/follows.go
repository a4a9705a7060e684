package models

import (
	"time"

	"github.com/google/uuid"
)

type FollowStatus string

const (
	FollowStatusPending  = FollowStatus("PENDING")
	FollowStatusApproved = FollowStatus("APPROVED")
	FollowStatusRejected = FollowStatus("REJECTED")
)

// FollowRequest is a directed follower -> followee edge. At most one row
// exists per ordered pair; re-following after a rejection reuses the row.
type FollowRequest struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`

	FollowerID uuid.UUID `json:"follower_id" gorm:"type:uuid;uniqueIndex:idx_follow_pair"`
	FolloweeID uuid.UUID `json:"followee_id" gorm:"type:uuid;uniqueIndex:idx_follow_pair"`
	Follower   Author    `json:"follower" gorm:"foreignKey:FollowerID"`
	Followee   Author    `json:"followee" gorm:"foreignKey:FolloweeID"`

	Status FollowStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
