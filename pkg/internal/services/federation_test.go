package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/socialdistribution/node/pkg/internal/models"
)

type fakeSink struct {
	mu         sync.Mutex
	deliveries []fakeDelivery
}

type fakeDelivery struct {
	node     models.RemoteNode
	inboxURL string
	payload  any
}

func (v *fakeSink) Deliver(node models.RemoteNode, inboxURL string, payload any) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.deliveries = append(v.deliveries, fakeDelivery{node, inboxURL, payload})
	return nil
}

type failingSink struct{ calls int }

func (v *failingSink) Deliver(models.RemoteNode, string, any) error {
	v.calls++
	return fmt.Errorf("peer unreachable")
}

const peerHost = "https://peer.example/api/"

func testDeps(sink FederationSink, followers []models.Author, mutual map[uuid.UUID]bool) FederationDeps {
	return FederationDeps{
		Sink: sink,
		Followers: func(uuid.UUID) ([]models.Author, error) {
			return followers, nil
		},
		FollowsBack: func(_, follower uuid.UUID) bool {
			return mutual[follower]
		},
		NodeForHost: func(host string) (models.RemoteNode, bool) {
			if CanonicalHost(host) == peerHost {
				return models.RemoteNode{Name: "peer", BaseURL: "https://peer.example"}, true
			}
			return models.RemoteNode{}, false
		},
	}
}

func TestDispatchEntryFanOut(t *testing.T) {
	viper.Set("base_url", "https://node.example")
	defer viper.Set("base_url", "")

	author := models.Author{ID: uuid.New(), DisplayName: "Jane"}
	remoteFollower := models.Author{ID: uuid.New(), Host: peerHost}
	localFollower := models.Author{ID: uuid.New()}
	unknownHostFollower := models.Author{ID: uuid.New(), Host: "https://nowhere.example/api/"}

	tests := []struct {
		name       string
		visibility models.Visibility
		followers  []models.Author
		mutual     map[uuid.UUID]bool
		want       int
	}{
		{
			name:       "public goes to remote followers",
			visibility: models.VisibilityPublic,
			followers:  []models.Author{remoteFollower},
			want:       1,
		},
		{
			name:       "local followers are skipped",
			visibility: models.VisibilityPublic,
			followers:  []models.Author{localFollower, remoteFollower},
			want:       1,
		},
		{
			name:       "unknown host is skipped",
			visibility: models.VisibilityPublic,
			followers:  []models.Author{unknownHostFollower},
			want:       0,
		},
		{
			name:       "friends entry needs mutual follow",
			visibility: models.VisibilityFriends,
			followers:  []models.Author{remoteFollower},
			mutual:     map[uuid.UUID]bool{},
			want:       0,
		},
		{
			name:       "friends entry reaches mutual follower",
			visibility: models.VisibilityFriends,
			followers:  []models.Author{remoteFollower},
			mutual:     map[uuid.UUID]bool{remoteFollower.ID: true},
			want:       1,
		},
		{
			name:       "deleted entry still federates",
			visibility: models.VisibilityDeleted,
			followers:  []models.Author{remoteFollower},
			want:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			entry := models.Entry{ID: uuid.New(), AuthorID: author.ID, Visibility: tt.visibility}

			dispatchEntry(entry, author, testDeps(sink, tt.followers, tt.mutual))

			if len(sink.deliveries) != tt.want {
				t.Fatalf("got %d deliveries, want %d", len(sink.deliveries), tt.want)
			}
		})
	}
}

func TestDispatchEntryInboxURL(t *testing.T) {
	viper.Set("base_url", "https://node.example")
	defer viper.Set("base_url", "")

	author := models.Author{ID: uuid.New(), DisplayName: "Jane"}
	follower := models.Author{ID: uuid.New(), Host: peerHost}
	entry := models.Entry{ID: uuid.New(), AuthorID: author.ID, Visibility: models.VisibilityPublic}

	sink := &fakeSink{}
	dispatchEntry(entry, author, testDeps(sink, []models.Author{follower}, nil))

	if len(sink.deliveries) != 1 {
		t.Fatalf("got %d deliveries, want 1", len(sink.deliveries))
	}

	wantURL := fmt.Sprintf("https://peer.example/api/authors/%s/inbox/", follower.ID)
	if sink.deliveries[0].inboxURL != wantURL {
		t.Errorf("inbox url = %q, want %q", sink.deliveries[0].inboxURL, wantURL)
	}

	message, ok := sink.deliveries[0].payload.(entryMessage)
	if !ok {
		t.Fatalf("payload is %T, want entryMessage", sink.deliveries[0].payload)
	}
	if message.Type != "entry" {
		t.Errorf("payload type = %q, want %q", message.Type, "entry")
	}
	wantID := fmt.Sprintf("https://node.example/api/authors/%s/entries/%s", author.ID, entry.ID)
	if message.ID != wantID {
		t.Errorf("payload id = %q, want %q", message.ID, wantID)
	}
}

func TestDispatchEntrySurvivesDeliveryFailure(t *testing.T) {
	viper.Set("base_url", "https://node.example")
	defer viper.Set("base_url", "")

	author := models.Author{ID: uuid.New()}
	followers := []models.Author{
		{ID: uuid.New(), Host: peerHost},
		{ID: uuid.New(), Host: peerHost},
	}
	entry := models.Entry{ID: uuid.New(), AuthorID: author.ID, Visibility: models.VisibilityPublic}

	sink := &failingSink{}
	dispatchEntry(entry, author, testDeps(sink, followers, nil))

	// Both recipients are attempted even though each delivery fails.
	if sink.calls != 2 {
		t.Errorf("got %d delivery attempts, want 2", sink.calls)
	}
}

func TestDispatchComment(t *testing.T) {
	viper.Set("base_url", "https://node.example")
	defer viper.Set("base_url", "")

	remoteAuthor := models.Author{ID: uuid.New(), Host: peerHost}
	localAuthor := models.Author{ID: uuid.New()}
	remoteFollower := models.Author{ID: uuid.New(), Host: peerHost}
	commenter := models.Author{ID: uuid.New(), DisplayName: "Alex"}

	entry := models.Entry{ID: uuid.New(), AuthorID: remoteAuthor.ID, Visibility: models.VisibilityPublic}
	comment := models.Comment{ID: uuid.New(), EntryID: entry.ID, AuthorID: commenter.ID, Content: "hi"}

	sink := &fakeSink{}
	dispatchComment(comment, entry, remoteAuthor, commenter, testDeps(sink, nil, nil))
	if len(sink.deliveries) != 1 {
		t.Fatalf("remote entry author: got %d deliveries, want 1", len(sink.deliveries))
	}

	sink = &fakeSink{}
	localEntry := models.Entry{ID: uuid.New(), AuthorID: localAuthor.ID, Visibility: models.VisibilityPublic}
	dispatchComment(comment, localEntry, localAuthor, commenter, testDeps(sink, nil, nil))
	if len(sink.deliveries) != 0 {
		t.Fatalf("local entry author, no followers: got %d deliveries, want 0", len(sink.deliveries))
	}

	// A remote follower of a local entry author hears about the comment.
	sink = &fakeSink{}
	dispatchComment(comment, localEntry, localAuthor, commenter, testDeps(sink, []models.Author{remoteFollower}, nil))
	if len(sink.deliveries) != 1 {
		t.Fatalf("local entry author with remote follower: got %d deliveries, want 1", len(sink.deliveries))
	}

	// The entry author is never delivered to twice even when they appear
	// in their own follower listing.
	sink = &fakeSink{}
	dispatchComment(comment, entry, remoteAuthor, commenter, testDeps(sink, []models.Author{remoteAuthor}, nil))
	if len(sink.deliveries) != 1 {
		t.Fatalf("deduplicated recipients: got %d deliveries, want 1", len(sink.deliveries))
	}
}

func TestDispatchLikeSkipsLocalAuthor(t *testing.T) {
	viper.Set("base_url", "https://node.example")
	defer viper.Set("base_url", "")

	localAuthor := models.Author{ID: uuid.New()}
	remoteAuthor := models.Author{ID: uuid.New(), Host: peerHost}
	object := LikeObject{Type: "like", Object: "https://node.example/api/whatever"}

	sink := &fakeSink{}
	dispatchLike(object, localAuthor, testDeps(sink, nil, nil))
	if len(sink.deliveries) != 0 {
		t.Fatalf("local object author: got %d deliveries, want 0", len(sink.deliveries))
	}

	sink = &fakeSink{}
	dispatchLike(object, remoteAuthor, testDeps(sink, nil, nil))
	if len(sink.deliveries) != 1 {
		t.Fatalf("remote object author: got %d deliveries, want 1", len(sink.deliveries))
	}
}
