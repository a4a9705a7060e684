package services

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/socialdistribution/node/pkg/internal/models"
)

// FriendChecker answers whether two authors have mutual APPROVED follow
// edges. The production checker is AreFriends; tests substitute their own.
type FriendChecker func(a, b uuid.UUID) bool

// CanViewEntry decides whether viewer may see the entry. A nil viewer is an
// anonymous request.
func CanViewEntry(entry models.Entry, viewer *models.Author) bool {
	return canViewEntry(entry, viewer, AreFriends)
}

func canViewEntry(entry models.Entry, viewer *models.Author, mutual FriendChecker) bool {
	switch entry.Visibility {
	case models.VisibilityPublic:
		return true
	case models.VisibilityUnlisted:
		// Anyone holding the direct link may read an unlisted entry; it is
		// only hidden from aggregate feeds.
		return true
	case models.VisibilityDeleted:
		return false
	case models.VisibilityFriends:
		if viewer == nil {
			return false
		}
		if viewer.ID == entry.AuthorID {
			return true
		}
		return mutual(viewer.ID, entry.AuthorID)
	default:
		return false
	}
}

// CanViewComment applies the entry's gating plus the lateral privacy rule:
// under FRIENDS visibility a comment is only shared between its own author
// and the entry's author, never between two friends of the author.
func CanViewComment(comment models.Comment, entry models.Entry, viewer *models.Author) bool {
	return canViewComment(comment, entry, viewer, AreFriends)
}

func canViewComment(comment models.Comment, entry models.Entry, viewer *models.Author, mutual FriendChecker) bool {
	if !canViewEntry(entry, viewer, mutual) {
		return false
	}
	if entry.Visibility != models.VisibilityFriends {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.ID == entry.AuthorID || viewer.ID == comment.AuthorID
}

// CanViewDeletedEntry is the privileged override around the engine: staff
// may inspect soft-deleted entries, nobody else can.
func CanViewDeletedEntry(viewer *models.Author) bool {
	return viewer != nil && viewer.IsStaff
}

// FilterEntriesWithViewerContext narrows an entry query to what the viewer
// may see in aggregate feeds. Unlisted entries stay reachable by direct
// link but are not listed here.
func FilterEntriesWithViewerContext(tx *gorm.DB, viewer *models.Author) *gorm.DB {
	if viewer == nil {
		return tx.Where("visibility = ?", models.VisibilityPublic)
	}

	friends, err := ListFriends(viewer.ID)
	if err != nil {
		friends = nil
	}
	friendIdx := lo.Map(friends, func(item models.Author, _ int) uuid.UUID {
		return item.ID
	})

	return tx.Where(
		"(visibility = ? OR author_id = ? OR (visibility = ? AND author_id IN ?))",
		models.VisibilityPublic,
		viewer.ID,
		models.VisibilityFriends,
		append(friendIdx, viewer.ID),
	).Where("visibility != ?", models.VisibilityDeleted)
}
