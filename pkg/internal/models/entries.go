package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Visibility string

const (
	VisibilityPublic   = Visibility("PUBLIC")
	VisibilityFriends  = Visibility("FRIENDS")
	VisibilityUnlisted = Visibility("UNLISTED")
	VisibilityDeleted  = Visibility("DELETED")
)

// ParseVisibility maps a federation dialect visibility string onto the
// closed enum. Unknown values are treated as PUBLIC, matching the lenient
// receive side of the dialect.
func ParseVisibility(raw string) Visibility {
	switch Visibility(strings.ToUpper(strings.TrimSpace(raw))) {
	case VisibilityFriends:
		return VisibilityFriends
	case VisibilityUnlisted:
		return VisibilityUnlisted
	case VisibilityDeleted:
		return VisibilityDeleted
	case VisibilityPublic:
		return VisibilityPublic
	default:
		return VisibilityPublic
	}
}

const (
	ContentTypePlain    = "text/plain"
	ContentTypeMarkdown = "text/markdown"
	ContentTypePNG      = "image/png;base64"
	ContentTypeJPEG     = "image/jpeg;base64"
)

// Entry is a post. Deleting an entry only flips its visibility to DELETED;
// rows are never physically removed so peers can be told about the removal.
type Entry struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`

	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	ContentType string     `json:"content_type"`
	Visibility  Visibility `json:"visibility"`

	AuthorID uuid.UUID `json:"author_id" gorm:"type:uuid"`
	Author   Author    `json:"author"`

	LikedBy []Author `json:"liked_by" gorm:"many2many:entry_likes"`

	// SourceID dedupes entries drawn from external feeds (GitHub events).
	SourceID *string `json:"source_id,omitempty" gorm:"uniqueIndex"`

	Published time.Time `json:"published"`
	Updated   time.Time `json:"updated" gorm:"autoUpdateTime"`
}
