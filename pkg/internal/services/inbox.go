package services

import (
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/socialdistribution/node/pkg/internal/database"
	"github.com/socialdistribution/node/pkg/internal/models"
)

// Inbox payload shapes. The dialect is loose, so every field is optional at
// parse time and validated by the ingest path that needs it.
type inboxEntryPayload struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Content     string           `json:"content"`
	ContentType string           `json:"contentType"`
	Visibility  string           `json:"visibility"`
	Published   string           `json:"published"`
	Author      models.AuthorRef `json:"author"`
}

type inboxCommentPayload struct {
	ID          string           `json:"id"`
	Entry       string           `json:"entry"`
	Post        string           `json:"post"`
	Comment     string           `json:"comment"`
	ContentType string           `json:"contentType"`
	Published   string           `json:"published"`
	Author      models.AuthorRef `json:"author"`
}

type inboxLikePayload struct {
	Object string           `json:"object"`
	Author models.AuthorRef `json:"author"`
}

type inboxFollowPayload struct {
	Actor  models.AuthorRef `json:"actor"`
	Object models.AuthorRef `json:"object"`
}

// IngestInboxPayload demultiplexes one federation payload addressed to a
// local author. The payload kind is the lowercased "type" field; "post" is
// accepted as a legacy alias of "entry". Unknown kinds and missing required
// fields come back as ErrMalformedPayload.
func IngestInboxPayload(recipient models.Author, body []byte) (string, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := jsoniter.Unmarshal(body, &envelope); err != nil {
		return "", ErrMalformedPayload
	}

	kind := strings.ToLower(strings.TrimSpace(envelope.Type))
	var err error
	switch kind {
	case "entry", "post":
		kind = "entry"
		err = ingestEntry(body)
	case "like":
		err = ingestLike(body)
	case "comment":
		err = ingestComment(body)
	case "follow":
		err = ingestFollow(recipient, body)
	default:
		return kind, ErrMalformedPayload
	}

	if err != nil {
		return kind, err
	}

	recordInboxActivity(recipient, kind, body)
	return kind, nil
}

func ingestEntry(body []byte) error {
	var payload inboxEntryPayload
	if err := jsoniter.Unmarshal(body, &payload); err != nil {
		return ErrMalformedPayload
	}

	id, err := ExtractUUIDFromURL(payload.ID)
	if err != nil {
		return ErrMalformedPayload
	}

	author, err := ResolveRemoteAuthor(payload.Author)
	if err != nil {
		return err
	}

	revision := models.Entry{
		Title:       payload.Title,
		Description: payload.Description,
		Content:     payload.Content,
		ContentType: payload.ContentType,
		Visibility:  models.ParseVisibility(payload.Visibility),
		Published:   parseDialectTime(payload.Published),
	}

	_, err = UpsertRemoteEntry(id, author, revision)
	return err
}

func ingestComment(body []byte) error {
	var payload inboxCommentPayload
	if err := jsoniter.Unmarshal(body, &payload); err != nil {
		return ErrMalformedPayload
	}

	entryRef := payload.Entry
	if len(entryRef) == 0 {
		entryRef = payload.Post
	}
	entryID, err := ExtractUUIDFromURL(entryRef)
	if err != nil {
		return ErrMalformedPayload
	}

	entry, err := GetEntry(entryID)
	if err != nil {
		return err
	}

	author, err := ResolveRemoteAuthor(payload.Author)
	if err != nil {
		return err
	}

	id, err := ExtractUUIDFromURL(payload.ID)
	if err != nil {
		return ErrMalformedPayload
	}

	_, err = UpsertRemoteComment(id, entry, author, payload.Comment, payload.ContentType, parseDialectTime(payload.Published))
	return err
}

func ingestLike(body []byte) error {
	var payload inboxLikePayload
	if err := jsoniter.Unmarshal(body, &payload); err != nil {
		return ErrMalformedPayload
	}

	liker, err := ResolveRemoteAuthor(payload.Author)
	if err != nil {
		return err
	}

	objectID, err := ExtractUUIDFromURL(payload.Object)
	if err != nil {
		return ErrMalformedPayload
	}

	if likeTargetFromObject(payload.Object) == LikeTargetComment {
		comment, err := GetComment(objectID)
		if err != nil {
			return err
		}
		_, err = appendCommentLike(comment, liker)
		return err
	}

	entry, err := GetEntry(objectID)
	if err != nil {
		return err
	}
	_, err = appendEntryLike(entry, liker)
	return err
}

// likeTargetFromObject classifies a like's object URL. Entry path segments
// take precedence over comment ones, so a URL carrying both still resolves
// against the entry; anything without a comment segment, bare UUIDs
// included, is an entry like.
func likeTargetFromObject(object string) string {
	if strings.Contains(object, "/entries/") || strings.Contains(object, "/entry/") {
		return LikeTargetEntry
	}
	if strings.Contains(object, "/comment") {
		return LikeTargetComment
	}
	return LikeTargetEntry
}

// ingestFollow always lands as PENDING, even when the sending node believes
// it was already approved; approval is the followee's decision here.
func ingestFollow(recipient models.Author, body []byte) error {
	var payload inboxFollowPayload
	if err := jsoniter.Unmarshal(body, &payload); err != nil {
		return ErrMalformedPayload
	}

	actor, err := ResolveRemoteAuthor(payload.Actor)
	if err != nil {
		return err
	}

	followee := recipient
	if len(payload.Object.ID) > 0 {
		resolved, err := ResolveAuthor(payload.Object.ID)
		if err != nil {
			return err
		}
		followee = resolved
	}
	if !followee.IsLocal() {
		return ErrMalformedPayload
	}

	_, _, err = GetOrCreateFollowRequest(actor, followee, models.FollowStatusPending)
	return err
}

func recordInboxActivity(recipient models.Author, kind string, body []byte) {
	var payload map[string]any
	if err := jsoniter.Unmarshal(body, &payload); err != nil {
		return
	}

	activity := models.InboxActivity{
		RecipientID: recipient.ID,
		Kind:        kind,
		Payload:     datatypes.JSONMap(payload),
	}
	if err := database.C.Create(&activity).Error; err != nil {
		log.Warn().Err(err).Msg("Unable to record inbox activity...")
	}
}

// ListInboxActivities pages through the audit trail of an author's inbox.
func ListInboxActivities(recipient models.Author, take, offset int) ([]models.InboxActivity, error) {
	if take > 100 {
		take = 100
	}

	var activities []models.InboxActivity
	if err := database.C.
		Where("recipient_id = ?", recipient.ID).
		Order("created_at DESC").
		Limit(take).Offset(offset).
		Find(&activities).Error; err != nil {
		return activities, fmt.Errorf("unable to list inbox activities: %v", err)
	}

	return activities, nil
}

// SweepInboxActivities drops audit rows older than the retention window.
func SweepInboxActivities(retention time.Duration) {
	deadline := time.Now().Add(-retention)
	tx := database.C.
		Where("created_at < ?", deadline).
		Delete(&models.InboxActivity{})
	if tx.Error != nil {
		log.Error().Err(tx.Error).Msg("Unable to sweep inbox activities...")
	} else if tx.RowsAffected > 0 {
		log.Debug().Int64("count", tx.RowsAffected).Msg("Swept outdated inbox activities.")
	}
}

func parseDialectTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if len(raw) == 0 {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
