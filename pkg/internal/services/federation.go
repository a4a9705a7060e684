package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/socialdistribution/node/pkg/internal/models"
)

// InboxURL builds the delivery endpoint of a remote author.
func InboxURL(author models.Author) string {
	return fmt.Sprintf("%sauthors/%s/inbox/", CanonicalHost(author.Host), author.ID)
}

// EntryAPIURL builds the fully-qualified identifier of an entry, rooted at
// the node its author lives on.
func EntryAPIURL(entry models.Entry, author models.Author) string {
	host := author.Host
	if author.IsLocal() {
		host = LocalAPIBase()
	}
	return fmt.Sprintf("%sauthors/%s/entries/%s", host, author.ID, entry.ID)
}

// CommentAPIURL identifies a comment underneath its entry. Comments are
// addressed on the commenter's node in the dialect.
func CommentAPIURL(comment models.Comment, commenter models.Author) string {
	host := commenter.Host
	if commenter.IsLocal() {
		host = LocalAPIBase()
	}
	return fmt.Sprintf("%sauthors/%s/commented/%s", host, commenter.ID, comment.ID)
}

type entryMessage struct {
	Type        string           `json:"type"`
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Content     string           `json:"content"`
	ContentType string           `json:"contentType"`
	Visibility  string           `json:"visibility"`
	Published   string           `json:"published"`
	Author      models.AuthorRef `json:"author"`
	Web         string           `json:"web"`
}

type commentMessage struct {
	Type        string           `json:"type"`
	ID          string           `json:"id"`
	Entry       string           `json:"entry"`
	Comment     string           `json:"comment"`
	ContentType string           `json:"contentType"`
	Published   string           `json:"published"`
	Author      models.AuthorRef `json:"author"`
}

type followMessage struct {
	Type    string           `json:"type"`
	Summary string           `json:"summary"`
	Actor   models.AuthorRef `json:"actor"`
	Object  models.AuthorRef `json:"object"`
}

func buildEntryMessage(entry models.Entry, author models.Author) entryMessage {
	id := EntryAPIURL(entry, author)
	return entryMessage{
		Type:        "entry",
		ID:          id,
		Title:       entry.Title,
		Description: entry.Description,
		Content:     entry.Content,
		ContentType: entry.ContentType,
		Visibility:  string(entry.Visibility),
		Published:   entry.Published.Format(time.RFC3339),
		Author:      BuildAuthorRef(author),
		Web:         strings.Replace(id, "/api/", "/", 1),
	}
}

func buildCommentMessage(comment models.Comment, entry models.Entry, entryAuthor, commenter models.Author) commentMessage {
	return commentMessage{
		Type:        "comment",
		ID:          CommentAPIURL(comment, commenter),
		Entry:       EntryAPIURL(entry, entryAuthor),
		Comment:     comment.Content,
		ContentType: comment.ContentType,
		Published:   comment.CreatedAt.Format(time.RFC3339),
		Author:      BuildAuthorRef(commenter),
	}
}

// FederationDeps are the collaborators of the dispatcher; production wiring
// comes from productionFederationDeps, tests inject fakes.
type FederationDeps struct {
	Sink        FederationSink
	Followers   func(author uuid.UUID) ([]models.Author, error)
	FollowsBack func(follower, followee uuid.UUID) bool
	NodeForHost func(host string) (models.RemoteNode, bool)
}

func productionFederationDeps() FederationDeps {
	return FederationDeps{
		Sink:        DefaultSink(),
		Followers:   ListFollowers,
		FollowsBack: IsFollowing,
		NodeForHost: NodeForHost,
	}
}

// DispatchEntry pushes an entry to the inboxes of the author's remote
// followers. FRIENDS entries only go to mutual followers; DELETED entries
// still go out so peers can hide their copies. Per-recipient failures are
// logged and never abort the fan-out.
func DispatchEntry(entry models.Entry, author models.Author) {
	dispatchEntry(entry, author, productionFederationDeps())
}

func dispatchEntry(entry models.Entry, author models.Author, deps FederationDeps) {
	recipients, err := deps.Followers(author.ID)
	if err != nil {
		log.Error().Err(err).Str("entry", entry.ID.String()).Msg("Unable to list followers for dispatch...")
		return
	}

	switch entry.Visibility {
	case models.VisibilityFriends:
		recipients = lo.Filter(recipients, func(item models.Author, _ int) bool {
			return deps.FollowsBack(author.ID, item.ID)
		})
	case models.VisibilityPublic, models.VisibilityUnlisted, models.VisibilityDeleted:
		// Full follower set.
	}

	message := buildEntryMessage(entry, author)
	deliverToAuthors(recipients, message, deps)
}

// DispatchComment pushes a comment to the entry's author when that author
// lives on another node, and to the author's remote followers under the
// same visibility filtering as the entry itself.
func DispatchComment(comment models.Comment, entry models.Entry, entryAuthor, commenter models.Author) {
	dispatchComment(comment, entry, entryAuthor, commenter, productionFederationDeps())
}

func dispatchComment(comment models.Comment, entry models.Entry, entryAuthor, commenter models.Author, deps FederationDeps) {
	var recipients []models.Author
	if !entryAuthor.IsLocal() {
		recipients = append(recipients, entryAuthor)
	}

	if followers, err := deps.Followers(entryAuthor.ID); err == nil {
		if entry.Visibility == models.VisibilityFriends {
			followers = lo.Filter(followers, func(item models.Author, _ int) bool {
				return deps.FollowsBack(entryAuthor.ID, item.ID)
			})
		}
		recipients = append(recipients, followers...)
	} else {
		log.Warn().Err(err).Str("comment", comment.ID.String()).Msg("Unable to list followers for comment dispatch...")
	}

	recipients = lo.UniqBy(recipients, func(item models.Author) uuid.UUID {
		return item.ID
	})

	message := buildCommentMessage(comment, entry, entryAuthor, commenter)
	deliverToAuthors(recipients, message, deps)
}

// DispatchLike notifies the liked object's author when remote.
func DispatchLike(object LikeObject, objectAuthor models.Author) {
	dispatchLike(object, objectAuthor, productionFederationDeps())
}

func dispatchLike(object LikeObject, objectAuthor models.Author, deps FederationDeps) {
	if objectAuthor.IsLocal() {
		return
	}
	deliverToAuthors([]models.Author{objectAuthor}, object, deps)
}

func deliverToAuthors(recipients []models.Author, payload any, deps FederationDeps) {
	for _, recipient := range recipients {
		if recipient.IsLocal() {
			continue
		}
		node, ok := deps.NodeForHost(recipient.Host)
		if !ok {
			log.Warn().
				Str("host", recipient.Host).
				Str("recipient", recipient.ID.String()).
				Msg("No active node configured for follower host, skipping delivery...")
			continue
		}
		if err := deps.Sink.Deliver(node, InboxURL(recipient), payload); err != nil {
			log.Warn().Err(err).
				Str("recipient", recipient.ID.String()).
				Msg("Unable to deliver payload to peer...")
		}
	}
}

// FollowRemoteAuthor sends a follow request to an author on another node
// and records the local APPROVED edge once the peer acknowledged it. This
// is the one federation call whose failure is surfaced to the caller.
func FollowRemoteAuthor(user, target models.Author) (models.FollowRequest, error) {
	node, ok := NodeForHost(target.Host)
	if !ok {
		return models.FollowRequest{}, fmt.Errorf("%w: no active node for host %s", ErrUpstreamDelivery, target.Host)
	}

	message := followMessage{
		Type:    "follow",
		Summary: fmt.Sprintf("%s wants to follow %s", user.DisplayName, target.DisplayName),
		Actor:   BuildAuthorRef(user),
		Object:  BuildAuthorRef(target),
	}

	// Intentionally synchronous regardless of dispatcher.mode, the peer's
	// acknowledgement decides whether the local edge is written.
	if err := httpSink.Deliver(node, InboxURL(target), message); err != nil {
		return models.FollowRequest{}, fmt.Errorf("%w: %v", ErrUpstreamDelivery, err)
	}

	request, _, err := GetOrCreateFollowRequest(user, target, models.FollowStatusApproved)
	if err != nil {
		return request, err
	}
	if request.Status != models.FollowStatusApproved {
		if err := ApproveFollowRequest(request); err != nil {
			return request, err
		}
		request.Status = models.FollowStatusApproved
	}

	return request, nil
}
