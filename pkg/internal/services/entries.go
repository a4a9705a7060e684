package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socialdistribution/node/pkg/internal/database"
	"github.com/socialdistribution/node/pkg/internal/models"
)

// NewEntry persists a freshly authored entry and fans it out to remote
// followers.
func NewEntry(entry models.Entry, author models.Author) (models.Entry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Published.IsZero() {
		entry.Published = time.Now()
	}
	entry.AuthorID = author.ID

	if err := database.C.Create(&entry).Error; err != nil {
		return entry, fmt.Errorf("unable to create entry: %v", err)
	}

	DispatchEntry(entry, author)
	return entry, nil
}

// EditEntry rewrites the mutable fields of an entry and re-dispatches it so
// peers converge on the new revision.
func EditEntry(entry models.Entry, author models.Author) (models.Entry, error) {
	if err := database.C.Model(&entry).
		Select("Title", "Description", "Content", "ContentType", "Visibility").
		Updates(&entry).Error; err != nil {
		return entry, fmt.Errorf("unable to update entry: %v", err)
	}

	DispatchEntry(entry, author)
	return entry, nil
}

// DeleteEntry soft-deletes an entry by flipping it to DELETED and tells the
// author's followers. The row stays so the tombstone can keep federating.
func DeleteEntry(entry models.Entry, author models.Author) error {
	if entry.Visibility == models.VisibilityDeleted {
		return nil
	}

	entry.Visibility = models.VisibilityDeleted
	if err := database.C.Model(&entry).
		Update("visibility", models.VisibilityDeleted).Error; err != nil {
		return fmt.Errorf("unable to delete entry: %v", err)
	}

	DispatchEntry(entry, author)
	return nil
}

func GetEntry(id uuid.UUID) (models.Entry, error) {
	var entry models.Entry
	if err := database.C.
		Where("id = ?", id).
		Preload("Author").
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entry, ErrNotFound
		}
		return entry, fmt.Errorf("unable to get entry: %v", err)
	}
	return entry, nil
}

// GetEntryForViewer loads an entry and enforces the visibility engine; both
// a missing row and a forbidden one come back as ErrNotFound.
func GetEntryForViewer(id uuid.UUID, viewer *models.Author) (models.Entry, error) {
	entry, err := GetEntry(id)
	if err != nil {
		return entry, err
	}
	if entry.Visibility == models.VisibilityDeleted && CanViewDeletedEntry(viewer) {
		return entry, nil
	}
	if !CanViewEntry(entry, viewer) {
		return entry, ErrNotFound
	}
	return entry, nil
}

// ListPublicEntries is the node-wide public feed.
func ListPublicEntries(take, offset int) ([]models.Entry, error) {
	if take > 100 {
		take = 100
	}

	var entries []models.Entry
	if err := database.C.
		Where("visibility = ?", models.VisibilityPublic).
		Preload("Author").
		Order("published DESC").
		Limit(take).Offset(offset).
		Find(&entries).Error; err != nil {
		return entries, fmt.Errorf("unable to list public entries: %v", err)
	}

	return entries, nil
}

// ListAuthorEntries lists one author's entries, narrowed to what the viewer
// may see.
func ListAuthorEntries(author uuid.UUID, viewer *models.Author, take, offset int) ([]models.Entry, error) {
	if take > 100 {
		take = 100
	}

	tx := database.C.Where("author_id = ?", author)
	tx = FilterEntriesWithViewerContext(tx, viewer)

	var entries []models.Entry
	if err := tx.
		Preload("Author").
		Order("published DESC").
		Limit(take).Offset(offset).
		Find(&entries).Error; err != nil {
		return entries, fmt.Errorf("unable to list author entries: %v", err)
	}

	return entries, nil
}

// ListStreamEntries is the signed-in stream: everything the viewer may see
// in aggregate feeds, newest first.
func ListStreamEntries(viewer models.Author, take, offset int) ([]models.Entry, error) {
	if take > 100 {
		take = 100
	}

	tx := FilterEntriesWithViewerContext(database.C.Model(&models.Entry{}), &viewer)

	var entries []models.Entry
	if err := tx.
		Preload("Author").
		Order("published DESC").
		Limit(take).Offset(offset).
		Find(&entries).Error; err != nil {
		return entries, fmt.Errorf("unable to list stream entries: %v", err)
	}

	return entries, nil
}

func CountAuthorEntries(author uuid.UUID, viewer *models.Author) (int64, error) {
	tx := database.C.Model(&models.Entry{}).Where("author_id = ?", author)
	tx = FilterEntriesWithViewerContext(tx, viewer)

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("unable to count entries: %v", err)
	}
	return count, nil
}

// UpsertRemoteEntry converges the local copy of a federated entry onto the
// latest delivered revision, keyed by the entry's UUID. Last write wins.
func UpsertRemoteEntry(id uuid.UUID, author models.Author, revision models.Entry) (models.Entry, error) {
	var entry models.Entry
	err := database.C.Where("id = ?", id).First(&entry).Error
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		return entry, fmt.Errorf("unable to look up entry: %v", err)
	}

	entry = applyEntryRevision(entry, revision)
	entry.ID = id
	entry.AuthorID = author.ID

	if err := database.C.Save(&entry).Error; err != nil {
		return entry, fmt.Errorf("unable to save entry: %v", err)
	}

	return entry, nil
}

// applyEntryRevision copies a delivered revision onto the local copy.
// Every delivered field wins, the published timestamp included; a revision
// without a usable timestamp falls back to receive time.
func applyEntryRevision(entry, revision models.Entry) models.Entry {
	entry.Title = revision.Title
	entry.Description = revision.Description
	entry.Content = revision.Content
	entry.ContentType = revision.ContentType
	entry.Visibility = revision.Visibility
	entry.Published = revision.Published
	if entry.Published.IsZero() {
		entry.Published = time.Now()
	}
	return entry
}
