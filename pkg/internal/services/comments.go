package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/socialdistribution/node/pkg/internal/database"
	"github.com/socialdistribution/node/pkg/internal/models"
)

// NewComment attaches a comment to an entry and notifies the entry's author
// when that author is remote.
func NewComment(entry models.Entry, author models.Author, content, contentType string) (models.Comment, error) {
	comment := models.Comment{
		ID:          uuid.New(),
		EntryID:     entry.ID,
		AuthorID:    author.ID,
		Content:     content,
		ContentType: contentType,
		CreatedAt:   time.Now(),
	}

	if err := database.C.Create(&comment).Error; err != nil {
		return comment, fmt.Errorf("unable to create comment: %v", err)
	}

	entryAuthor := entry.Author
	if entryAuthor.ID == uuid.Nil {
		if loaded, err := GetAuthor(entry.AuthorID); err == nil {
			entryAuthor = loaded
		}
	}
	DispatchComment(comment, entry, entryAuthor, author)

	return comment, nil
}

func GetComment(id uuid.UUID) (models.Comment, error) {
	var comment models.Comment
	if err := database.C.
		Where("id = ?", id).
		Preload("Author").
		Preload("Entry").Preload("Entry.Author").
		First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return comment, ErrNotFound
		}
		return comment, fmt.Errorf("unable to get comment: %v", err)
	}
	return comment, nil
}

// ListComments returns the comments under an entry the viewer may see,
// newest first. Under FRIENDS visibility that is only the exchange between
// each commenter and the entry's author.
func ListComments(entry models.Entry, viewer *models.Author, take, offset int) ([]models.Comment, error) {
	if take > 100 {
		take = 100
	}

	comments, err := viewableComments(entry, viewer)
	if err != nil {
		return comments, err
	}

	return pageComments(comments, take, offset), nil
}

// CountComments reports how many comments the viewer may see, unpaged.
func CountComments(entry models.Entry, viewer *models.Author) (int64, error) {
	comments, err := viewableComments(entry, viewer)
	if err != nil {
		return 0, err
	}
	return int64(len(comments)), nil
}

func viewableComments(entry models.Entry, viewer *models.Author) ([]models.Comment, error) {
	var comments []models.Comment
	if err := database.C.
		Where("entry_id = ?", entry.ID).
		Preload("Author").
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		return comments, fmt.Errorf("unable to list comments: %v", err)
	}

	return filterViewableComments(comments, entry, viewer, AreFriends), nil
}

func filterViewableComments(comments []models.Comment, entry models.Entry, viewer *models.Author, mutual FriendChecker) []models.Comment {
	return lo.Filter(comments, func(item models.Comment, _ int) bool {
		return canViewComment(item, entry, viewer, mutual)
	})
}

func pageComments(comments []models.Comment, take, offset int) []models.Comment {
	if offset >= len(comments) {
		return []models.Comment{}
	}
	comments = comments[offset:]
	if take < len(comments) {
		comments = comments[:take]
	}
	return comments
}

// UpsertRemoteComment converges the local copy of a federated comment onto
// the latest delivered revision, keyed by the comment's UUID.
func UpsertRemoteComment(id uuid.UUID, entry models.Entry, author models.Author, content, contentType string, published time.Time) (models.Comment, error) {
	var comment models.Comment
	err := database.C.Where("id = ?", id).First(&comment).Error
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		return comment, fmt.Errorf("unable to look up comment: %v", err)
	}

	comment.ID = id
	comment.EntryID = entry.ID
	comment.AuthorID = author.ID
	comment.Content = content
	comment.ContentType = contentType
	if created {
		comment.CreatedAt = published
		if comment.CreatedAt.IsZero() {
			comment.CreatedAt = time.Now()
		}
	}

	if err := database.C.Save(&comment).Error; err != nil {
		return comment, fmt.Errorf("unable to save comment: %v", err)
	}

	return comment, nil
}
