package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/socialdistribution/node/pkg/internal/models"
)

func TestIngestInboxPayloadRejectsMalformedEnvelopes(t *testing.T) {
	recipient := models.Author{ID: uuid.New()}

	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json at all"},
		{"no type", `{"content": "hello"}`},
		{"unknown type", `{"type": "poke"}`},
		{"entry without id", `{"type": "entry", "title": "hi"}`},
		{"post alias without id", `{"type": "post", "title": "hi"}`},
		{"entry with non-uuid id", `{"type": "entry", "id": "https://peer.example/api/authors/x/entries/not-a-uuid"}`},
		{"follow with malformed actor", `{"type": "follow", "actor": {"id": "nope"}}`},
		{"like with malformed author", `{"type": "like", "author": {"id": "nope"}, "object": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := IngestInboxPayload(recipient, []byte(tt.body))
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("IngestInboxPayload() error = %v, want ErrMalformedPayload", err)
			}
		})
	}
}

func TestIngestInboxPayloadKindAliases(t *testing.T) {
	recipient := models.Author{ID: uuid.New()}

	// "Post" is the legacy alias of "entry" and type matching is
	// case-insensitive; both still fail later on the missing id, but the
	// demultiplexer must pick the entry path for them.
	for _, raw := range []string{`{"type": "Post"}`, `{"type": "ENTRY"}`} {
		kind, err := IngestInboxPayload(recipient, []byte(raw))
		if kind != "entry" {
			t.Errorf("IngestInboxPayload(%s) kind = %q, want %q", raw, kind, "entry")
		}
		if !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("IngestInboxPayload(%s) error = %v, want ErrMalformedPayload", raw, err)
		}
	}
}

func TestLikeTargetFromObject(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name   string
		object string
		want   string
	}{
		{"entry url", "https://peer.example/api/authors/a/entries/" + id, LikeTargetEntry},
		{"singular entry url", "https://peer.example/api/entry/" + id, LikeTargetEntry},
		{"comment url", "https://peer.example/api/authors/a/comments/" + id, LikeTargetComment},
		{"commented url", "https://peer.example/api/authors/a/commented/" + id, LikeTargetComment},
		// Entry segments win when both appear in the path.
		{"nested comment under entry", "https://peer.example/api/entries/x/comments/" + id, LikeTargetEntry},
		{"bare uuid", id, LikeTargetEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := likeTargetFromObject(tt.object); got != tt.want {
				t.Errorf("likeTargetFromObject(%q) = %q, want %q", tt.object, got, tt.want)
			}
		})
	}
}

func TestParseDialectTime(t *testing.T) {
	want := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", "2024-03-15T12:30:00Z", want},
		{"rfc3339 nano", "2024-03-15T12:30:00.000000000Z", want},
		{"naive timestamp", "2024-03-15T12:30:00", want},
		{"empty", "", time.Time{}},
		{"garbage", "yesterday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDialectTime(tt.raw)
			if !got.Equal(tt.want) {
				t.Errorf("parseDialectTime(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
