package services

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestLikeIDRoundTrip(t *testing.T) {
	targets := []string{LikeTargetEntry, LikeTargetComment}
	for _, target := range targets {
		targetID := uuid.New()
		likerID := uuid.New()

		encoded := EncodeLikeID(target, targetID, likerID)

		gotType, gotTarget, gotLiker, err := DecodeLikeID(encoded)
		if err != nil {
			t.Fatalf("DecodeLikeID(%q) returned error: %v", encoded, err)
		}
		if gotType != target || gotTarget != targetID || gotLiker != likerID {
			t.Errorf("round trip mismatch: got (%s, %s, %s), want (%s, %s, %s)",
				gotType, gotTarget, gotLiker, target, targetID, likerID)
		}
	}
}

func TestDecodeLikeIDToleratesPadding(t *testing.T) {
	targetID := uuid.New()
	likerID := uuid.New()

	encoded := EncodeLikeID(LikeTargetEntry, targetID, likerID)
	if rem := len(encoded) % 4; rem != 0 {
		encoded += "===="[:4-rem]
	}

	gotType, gotTarget, gotLiker, err := DecodeLikeID(encoded)
	if err != nil {
		t.Fatalf("DecodeLikeID(padded) returned error: %v", err)
	}
	if gotType != LikeTargetEntry || gotTarget != targetID || gotLiker != likerID {
		t.Errorf("padded decode mismatch: got (%s, %s, %s)", gotType, gotTarget, gotLiker)
	}
}

func TestDecodeLikeIDRejectsMalformedTokens(t *testing.T) {
	valid := EncodeLikeID(LikeTargetEntry, uuid.New(), uuid.New())

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "???not-base64???"},
		{"truncated token", valid[:len(valid)/2]},
		{"too few parts", base64.RawURLEncoding.EncodeToString([]byte("entry|" + uuid.NewString()))},
		{"too many parts", base64.RawURLEncoding.EncodeToString([]byte("entry|" + uuid.NewString() + "|" + uuid.NewString() + "|extra"))},
		{"unknown target type", base64.RawURLEncoding.EncodeToString([]byte("post|" + uuid.NewString() + "|" + uuid.NewString()))},
		{"bad target uuid", base64.RawURLEncoding.EncodeToString([]byte("entry|nope|" + uuid.NewString()))},
		{"bad liker uuid", base64.RawURLEncoding.EncodeToString([]byte("entry|" + uuid.NewString() + "|nope"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := DecodeLikeID(tt.token)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("DecodeLikeID(%q) error = %v, want ErrNotFound", tt.token, err)
			}
		})
	}
}
