package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is attached to exactly one entry and inherits the entry's
// visibility gating.
type Comment struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`

	EntryID uuid.UUID `json:"entry_id" gorm:"type:uuid"`
	Entry   Entry     `json:"entry"`

	AuthorID uuid.UUID `json:"author_id" gorm:"type:uuid"`
	Author   Author    `json:"author"`

	Content     string `json:"content"`
	ContentType string `json:"content_type"`

	LikedBy []Author `json:"liked_by" gorm:"many2many:comment_likes"`

	CreatedAt time.Time `json:"created_at"`
}
