package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/socialdistribution/node/pkg/internal/models"
)

func noFriends(a, b uuid.UUID) bool  { return false }
func allFriends(a, b uuid.UUID) bool { return true }

func TestCanViewEntry(t *testing.T) {
	author := models.Author{ID: uuid.New()}
	friend := models.Author{ID: uuid.New()}
	stranger := models.Author{ID: uuid.New()}

	entry := func(visibility models.Visibility) models.Entry {
		return models.Entry{ID: uuid.New(), AuthorID: author.ID, Visibility: visibility}
	}

	tests := []struct {
		name   string
		entry  models.Entry
		viewer *models.Author
		mutual FriendChecker
		want   bool
	}{
		{"public anonymous", entry(models.VisibilityPublic), nil, noFriends, true},
		{"public stranger", entry(models.VisibilityPublic), &stranger, noFriends, true},
		{"unlisted anonymous", entry(models.VisibilityUnlisted), nil, noFriends, true},
		{"unlisted stranger", entry(models.VisibilityUnlisted), &stranger, noFriends, true},
		{"deleted author", entry(models.VisibilityDeleted), &author, allFriends, false},
		{"deleted anonymous", entry(models.VisibilityDeleted), nil, allFriends, false},
		{"friends anonymous", entry(models.VisibilityFriends), nil, allFriends, false},
		{"friends author", entry(models.VisibilityFriends), &author, noFriends, true},
		{"friends mutual", entry(models.VisibilityFriends), &friend, allFriends, true},
		{"friends stranger", entry(models.VisibilityFriends), &stranger, noFriends, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canViewEntry(tt.entry, tt.viewer, tt.mutual); got != tt.want {
				t.Errorf("canViewEntry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanViewCommentLateralPrivacy(t *testing.T) {
	author := models.Author{ID: uuid.New()}
	commenter := models.Author{ID: uuid.New()}
	otherFriend := models.Author{ID: uuid.New()}

	entry := models.Entry{ID: uuid.New(), AuthorID: author.ID, Visibility: models.VisibilityFriends}
	comment := models.Comment{ID: uuid.New(), EntryID: entry.ID, AuthorID: commenter.ID}

	tests := []struct {
		name   string
		viewer *models.Author
		mutual FriendChecker
		want   bool
	}{
		{"entry author sees it", &author, allFriends, true},
		{"comment author sees it", &commenter, allFriends, true},
		// A third friend can read the entry but not someone else's comment
		// under it.
		{"other friend cannot", &otherFriend, allFriends, false},
		{"anonymous cannot", nil, allFriends, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canViewComment(comment, entry, tt.viewer, tt.mutual); got != tt.want {
				t.Errorf("canViewComment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanViewCommentOnPublicEntry(t *testing.T) {
	author := models.Author{ID: uuid.New()}
	commenter := models.Author{ID: uuid.New()}
	entry := models.Entry{ID: uuid.New(), AuthorID: author.ID, Visibility: models.VisibilityPublic}
	comment := models.Comment{ID: uuid.New(), EntryID: entry.ID, AuthorID: commenter.ID}

	if !canViewComment(comment, entry, nil, noFriends) {
		t.Error("comments on public entries should be visible to everyone")
	}
}

func TestCanViewDeletedEntry(t *testing.T) {
	staff := models.Author{ID: uuid.New(), IsStaff: true}
	regular := models.Author{ID: uuid.New()}

	if !CanViewDeletedEntry(&staff) {
		t.Error("staff should see deleted entries")
	}
	if CanViewDeletedEntry(&regular) {
		t.Error("regular authors should not see deleted entries")
	}
	if CanViewDeletedEntry(nil) {
		t.Error("anonymous viewers should not see deleted entries")
	}
}

func TestParseVisibility(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Visibility
	}{
		{"PUBLIC", models.VisibilityPublic},
		{"public", models.VisibilityPublic},
		{" friends ", models.VisibilityFriends},
		{"UNLISTED", models.VisibilityUnlisted},
		{"DELETED", models.VisibilityDeleted},
		{"", models.VisibilityPublic},
		{"whatever", models.VisibilityPublic},
	}

	for _, tt := range tests {
		if got := models.ParseVisibility(tt.raw); got != tt.want {
			t.Errorf("ParseVisibility(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
