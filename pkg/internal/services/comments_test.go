package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/socialdistribution/node/pkg/internal/models"
)

func TestFilterViewableCommentsIsUncapped(t *testing.T) {
	author := models.Author{ID: uuid.New()}
	entry := models.Entry{ID: uuid.New(), AuthorID: author.ID, Visibility: models.VisibilityPublic}

	comments := make([]models.Comment, 150)
	for i := range comments {
		comments[i] = models.Comment{ID: uuid.New(), EntryID: entry.ID, AuthorID: uuid.New()}
	}

	// The visibility filter never pages; counts above any page size must
	// come through intact.
	got := filterViewableComments(comments, entry, nil, noFriends)
	if len(got) != 150 {
		t.Errorf("got %d comments, want 150", len(got))
	}
}

func TestFilterViewableCommentsKeepsLateralPrivacy(t *testing.T) {
	author := models.Author{ID: uuid.New()}
	commenter := models.Author{ID: uuid.New()}
	otherFriend := models.Author{ID: uuid.New()}
	entry := models.Entry{ID: uuid.New(), AuthorID: author.ID, Visibility: models.VisibilityFriends}

	comments := []models.Comment{
		{ID: uuid.New(), EntryID: entry.ID, AuthorID: commenter.ID},
		{ID: uuid.New(), EntryID: entry.ID, AuthorID: otherFriend.ID},
	}

	got := filterViewableComments(comments, entry, &otherFriend, allFriends)
	if len(got) != 1 || got[0].AuthorID != otherFriend.ID {
		t.Errorf("a friend should only see their own comments, got %d", len(got))
	}

	got = filterViewableComments(comments, entry, &author, allFriends)
	if len(got) != 2 {
		t.Errorf("the entry author should see every comment, got %d", len(got))
	}
}

func TestPageComments(t *testing.T) {
	comments := make([]models.Comment, 5)
	for i := range comments {
		comments[i] = models.Comment{ID: uuid.New()}
	}

	tests := []struct {
		name   string
		take   int
		offset int
		want   int
	}{
		{"first page", 2, 0, 2},
		{"middle page", 2, 2, 2},
		{"short last page", 2, 4, 1},
		{"offset beyond end", 2, 10, 0},
		{"take beyond end", 10, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageComments(comments, tt.take, tt.offset); len(got) != tt.want {
				t.Errorf("pageComments(take=%d, offset=%d) returned %d, want %d",
					tt.take, tt.offset, len(got), tt.want)
			}
		})
	}
}
