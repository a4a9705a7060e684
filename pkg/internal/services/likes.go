package services

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/socialdistribution/node/pkg/internal/database"
	"github.com/socialdistribution/node/pkg/internal/models"
)

const (
	LikeTargetEntry   = "entry"
	LikeTargetComment = "comment"
)

// EncodeLikeID packs a like's identity into an opaque, stateless token.
// Likes have no table of their own; the join rows on entries and comments
// are the source of truth and the token is derived from them.
func EncodeLikeID(targetType string, targetID, likerID uuid.UUID) string {
	raw := strings.Join([]string{targetType, targetID.String(), likerID.String()}, "|")
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeLikeID unpacks a like token. Tokens travel unpadded but padded
// ones are tolerated by re-padding to a multiple of four. Every malformed
// token, whatever the reason, comes back as ErrNotFound so the API answers
// 404 uniformly.
func DecodeLikeID(encoded string) (targetType string, targetID, likerID uuid.UUID, err error) {
	if rem := len(encoded) % 4; rem != 0 {
		encoded += strings.Repeat("=", 4-rem)
	}
	raw, decodeErr := base64.URLEncoding.DecodeString(encoded)
	if decodeErr != nil {
		return "", uuid.Nil, uuid.Nil, ErrNotFound
	}

	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 {
		return "", uuid.Nil, uuid.Nil, ErrNotFound
	}
	if parts[0] != LikeTargetEntry && parts[0] != LikeTargetComment {
		return "", uuid.Nil, uuid.Nil, ErrNotFound
	}

	targetID, decodeErr = uuid.Parse(parts[1])
	if decodeErr != nil {
		return "", uuid.Nil, uuid.Nil, ErrNotFound
	}
	likerID, decodeErr = uuid.Parse(parts[2])
	if decodeErr != nil {
		return "", uuid.Nil, uuid.Nil, ErrNotFound
	}

	return parts[0], targetID, likerID, nil
}

// LikeObject is the dialect's synthetic like, assembled on demand from a
// join row.
type LikeObject struct {
	Type      string           `json:"type"`
	ID        string           `json:"id"`
	Summary   string           `json:"summary"`
	Object    string           `json:"object"`
	Published string           `json:"published"`
	Author    models.AuthorRef `json:"author"`
}

// LikeAPIURL addresses a like on the liker's node.
func LikeAPIURL(targetType string, targetID uuid.UUID, liker models.Author) string {
	host := liker.Host
	if liker.IsLocal() {
		host = LocalAPIBase()
	}
	return fmt.Sprintf("%sauthors/%s/liked/%s", host, liker.ID, EncodeLikeID(targetType, targetID, liker.ID))
}

func buildLikeObject(targetType string, targetID uuid.UUID, objectURL string, liker models.Author) LikeObject {
	return LikeObject{
		Type:      "like",
		ID:        LikeAPIURL(targetType, targetID, liker),
		Summary:   fmt.Sprintf("%s liked your post", liker.DisplayName),
		Object:    objectURL,
		Published: time.Now().Format(time.RFC3339),
		Author:    BuildAuthorRef(liker),
	}
}

// LikeEntry records the like and notifies the entry's author when remote.
// Liking twice is a no-op.
func LikeEntry(entry models.Entry, liker models.Author) (LikeObject, error) {
	object := buildLikeObject(LikeTargetEntry, entry.ID, EntryAPIURL(entry, entry.Author), liker)

	added, err := appendEntryLike(entry, liker)
	if err != nil {
		return object, err
	}
	if added {
		DispatchLike(object, entry.Author)
	}

	return object, nil
}

// LikeComment records the like and notifies the comment's author when
// remote.
func LikeComment(comment models.Comment, liker models.Author) (LikeObject, error) {
	object := buildLikeObject(LikeTargetComment, comment.ID, CommentAPIURL(comment, comment.Author), liker)

	added, err := appendCommentLike(comment, liker)
	if err != nil {
		return object, err
	}
	if added {
		DispatchLike(object, comment.Author)
	}

	return object, nil
}

func appendEntryLike(entry models.Entry, liker models.Author) (bool, error) {
	var count int64
	if err := database.C.Table("entry_likes").
		Where("entry_id = ? AND author_id = ?", entry.ID, liker.ID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("unable to check entry like: %v", err)
	}
	if count > 0 {
		return false, nil
	}

	if err := database.C.Model(&entry).
		Omit("LikedBy.*").
		Association("LikedBy").Append(&liker); err != nil {
		return false, fmt.Errorf("unable to like entry: %v", err)
	}
	return true, nil
}

func appendCommentLike(comment models.Comment, liker models.Author) (bool, error) {
	var count int64
	if err := database.C.Table("comment_likes").
		Where("comment_id = ? AND author_id = ?", comment.ID, liker.ID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("unable to check comment like: %v", err)
	}
	if count > 0 {
		return false, nil
	}

	if err := database.C.Model(&comment).
		Omit("LikedBy.*").
		Association("LikedBy").Append(&liker); err != nil {
		return false, fmt.Errorf("unable to like comment: %v", err)
	}
	return true, nil
}

// ListEntryLikes materializes the synthetic like objects on an entry.
func ListEntryLikes(entry models.Entry) ([]LikeObject, error) {
	var likers []models.Author
	if err := database.C.Model(&entry).Association("LikedBy").Find(&likers); err != nil {
		return nil, fmt.Errorf("unable to list entry likes: %v", err)
	}

	objectURL := EntryAPIURL(entry, entry.Author)
	return lo.Map(likers, func(item models.Author, _ int) LikeObject {
		return buildLikeObject(LikeTargetEntry, entry.ID, objectURL, item)
	}), nil
}

// ListCommentLikes materializes the synthetic like objects on a comment.
func ListCommentLikes(comment models.Comment) ([]LikeObject, error) {
	var likers []models.Author
	if err := database.C.Model(&comment).Association("LikedBy").Find(&likers); err != nil {
		return nil, fmt.Errorf("unable to list comment likes: %v", err)
	}

	objectURL := CommentAPIURL(comment, comment.Author)
	return lo.Map(likers, func(item models.Author, _ int) LikeObject {
		return buildLikeObject(LikeTargetComment, comment.ID, objectURL, item)
	}), nil
}

// ListAuthorLikes materializes everything an author has liked on public
// objects, for the public liked collection.
func ListAuthorLikes(liker models.Author) ([]LikeObject, error) {
	var entries []models.Entry
	if err := database.C.
		Joins("JOIN entry_likes ON entry_likes.entry_id = entries.id").
		Where("entry_likes.author_id = ? AND visibility = ?", liker.ID, models.VisibilityPublic).
		Preload("Author").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("unable to list liked entries: %v", err)
	}

	var comments []models.Comment
	if err := database.C.
		Joins("JOIN comment_likes ON comment_likes.comment_id = comments.id").
		Joins("JOIN entries ON entries.id = comments.entry_id").
		Where("comment_likes.author_id = ? AND entries.visibility = ?", liker.ID, models.VisibilityPublic).
		Preload("Author").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("unable to list liked comments: %v", err)
	}

	objects := lo.Map(entries, func(item models.Entry, _ int) LikeObject {
		return buildLikeObject(LikeTargetEntry, item.ID, EntryAPIURL(item, item.Author), liker)
	})
	objects = append(objects, lo.Map(comments, func(item models.Comment, _ int) LikeObject {
		return buildLikeObject(LikeTargetComment, item.ID, CommentAPIURL(item, item.Author), liker)
	})...)

	return objects, nil
}

// GetLike resolves a like token back into its synthetic object, enforcing
// the liked object's visibility for the viewer.
func GetLike(encoded string, viewer *models.Author) (LikeObject, error) {
	targetType, targetID, likerID, err := DecodeLikeID(encoded)
	if err != nil {
		return LikeObject{}, err
	}

	liker, err := GetAuthor(likerID)
	if err != nil {
		return LikeObject{}, err
	}

	switch targetType {
	case LikeTargetEntry:
		entry, err := GetEntryForViewer(targetID, viewer)
		if err != nil {
			return LikeObject{}, err
		}
		if liked, err := hasEntryLike(entry.ID, likerID); err != nil || !liked {
			return LikeObject{}, ErrNotFound
		}
		return buildLikeObject(LikeTargetEntry, entry.ID, EntryAPIURL(entry, entry.Author), liker), nil
	case LikeTargetComment:
		comment, err := GetComment(targetID)
		if err != nil {
			return LikeObject{}, err
		}
		if !CanViewComment(comment, comment.Entry, viewer) {
			return LikeObject{}, ErrNotFound
		}
		if liked, err := hasCommentLike(comment.ID, likerID); err != nil || !liked {
			return LikeObject{}, ErrNotFound
		}
		return buildLikeObject(LikeTargetComment, comment.ID, CommentAPIURL(comment, comment.Author), liker), nil
	default:
		return LikeObject{}, ErrNotFound
	}
}

func hasEntryLike(entry, liker uuid.UUID) (bool, error) {
	var count int64
	err := database.C.Table("entry_likes").
		Where("entry_id = ? AND author_id = ?", entry, liker).
		Count(&count).Error
	return count > 0, err
}

func hasCommentLike(comment, liker uuid.UUID) (bool, error) {
	var count int64
	err := database.C.Table("comment_likes").
		Where("comment_id = ? AND author_id = ?", comment, liker).
		Count(&count).Error
	return count > 0, err
}
