package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/socialdistribution/node/pkg/internal/models"
)

func TestApplyEntryRevisionLastWriteWins(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	entry := models.Entry{
		ID:          uuid.New(),
		Title:       "first",
		Content:     "first body",
		ContentType: models.ContentTypePlain,
		Visibility:  models.VisibilityPublic,
		Published:   first,
	}

	got := applyEntryRevision(entry, models.Entry{
		Title:       "second",
		Description: "edited",
		Content:     "second body",
		ContentType: models.ContentTypeMarkdown,
		Visibility:  models.VisibilityFriends,
		Published:   second,
	})

	if got.Title != "second" || got.Content != "second body" {
		t.Errorf("revision fields did not win: %+v", got)
	}
	if got.Visibility != models.VisibilityFriends {
		t.Errorf("visibility = %s, want FRIENDS", got.Visibility)
	}
	// A re-delivered edit carries its own published timestamp and it must
	// replace the stored one.
	if !got.Published.Equal(second) {
		t.Errorf("published = %v, want %v", got.Published, second)
	}
}

func TestApplyEntryRevisionFallsBackToReceiveTime(t *testing.T) {
	stored := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entry := models.Entry{ID: uuid.New(), Published: stored}

	got := applyEntryRevision(entry, models.Entry{Title: "edit"})

	if got.Published.IsZero() {
		t.Fatal("published should fall back to receive time, not zero")
	}
	if got.Published.Equal(stored) {
		t.Error("published should not silently keep the stored timestamp")
	}
}
