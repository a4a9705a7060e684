package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

func TestCanonicalHost(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://node.example", "https://node.example/api/"},
		{"https://node.example/", "https://node.example/api/"},
		{"https://node.example/api", "https://node.example/api/"},
		{"https://node.example/api/", "https://node.example/api/"},
		{"https://node.example/api/authors/abc", "https://node.example/api/"},
		{"  https://node.example/api  ", "https://node.example/api/"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CanonicalHost(tt.raw); got != tt.want {
			t.Errorf("CanonicalHost(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIsLocalHost(t *testing.T) {
	viper.Set("base_url", "https://node.example")
	defer viper.Set("base_url", "")

	tests := []struct {
		host string
		want bool
	}{
		{"", true},
		{"https://node.example", true},
		{"https://node.example/api/", true},
		{"https://peer.example/api/", false},
	}

	for _, tt := range tests {
		if got := IsLocalHost(tt.host); got != tt.want {
			t.Errorf("IsLocalHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestExtractUUIDFromURL(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		raw     string
		want    uuid.UUID
		wantErr bool
	}{
		{"bare uuid", id.String(), id, false},
		{"uuid with trailing slash", id.String() + "/", id, false},
		{"full url", "https://peer.example/api/authors/" + id.String(), id, false},
		{"full url with trailing slash", "https://peer.example/api/authors/" + id.String() + "/", id, false},
		{"whitespace", "  " + id.String() + "  ", id, false},
		{"not a uuid", "https://peer.example/api/authors/someone", uuid.Nil, true},
		{"empty", "", uuid.Nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractUUIDFromURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractUUIDFromURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractUUIDFromURL(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestUsernameFromDisplayName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Jane Doe", "jane_doe"},
		{"  Jane Doe  ", "jane_doe"},
		{"JANE", "jane"},
		{"", "unknown"},
		{"   ", "unknown"},
	}

	for _, tt := range tests {
		if got := UsernameFromDisplayName(tt.raw); got != tt.want {
			t.Errorf("UsernameFromDisplayName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
