package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/socialdistribution/node/pkg/internal/database"
	"github.com/socialdistribution/node/pkg/internal/models"
)

// LocalAPIBase returns this node's own API base URL with a trailing slash,
// e.g. "https://node.example/api/".
func LocalAPIBase() string {
	return CanonicalHost(viper.GetString("base_url"))
}

// CanonicalHost normalizes a node host reference onto the single canonical
// representation used everywhere: "{scheme}://{host}/api/". The dialect is
// inconsistent about whether hosts carry the "/api" suffix, so the value is
// truncated at the first "/api" and the suffix re-appended.
func CanonicalHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	if idx := strings.Index(raw, "/api"); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimRight(raw, "/") + "/api/"
}

// IsLocalHost reports whether host refers to this node itself.
func IsLocalHost(host string) bool {
	return len(host) == 0 || CanonicalHost(host) == LocalAPIBase()
}

// AuthorAPIURL builds the fully-qualified identifier of an author.
func AuthorAPIURL(author models.Author) string {
	host := author.Host
	if author.IsLocal() {
		host = LocalAPIBase()
	}
	return fmt.Sprintf("%sauthors/%s", host, author.ID)
}

// ExtractUUIDFromURL pulls the trailing UUID out of an identifier that may
// be a bare UUID or a fully-qualified URL with an optional trailing slash.
func ExtractUUIDFromURL(raw string) (uuid.UUID, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if id, err := uuid.Parse(raw); err == nil {
		return id, nil
	}
	if idx := strings.LastIndex(raw, "/"); idx >= 0 {
		if id, err := uuid.Parse(raw[idx+1:]); err == nil {
			return id, nil
		}
	}
	return uuid.Nil, ErrMalformedPayload
}

// ResolveAuthor maps any author reference onto the canonical local row.
// Accepted forms: a bare UUID, a local API URL, or a remote FQID. The
// identifier is URL-decoded and the trailing path segment is tried as a
// UUID when the whole string is not one.
func ResolveAuthor(identifier string) (models.Author, error) {
	var account models.Author

	decoded := identifier
	if unescaped, err := url.QueryUnescape(identifier); err == nil {
		decoded = unescaped
	}

	id, err := ExtractUUIDFromURL(decoded)
	if err != nil {
		return account, ErrNotFound
	}

	if err := database.C.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, ErrNotFound
		}
		return account, fmt.Errorf("unable to resolve author: %v", err)
	}

	return account, nil
}

func GetAuthor(id uuid.UUID) (models.Author, error) {
	var account models.Author
	if err := database.C.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, ErrNotFound
		}
		return account, fmt.Errorf("unable to get author by id: %v", err)
	}
	return account, nil
}

func ListAuthors(take int, offset int) ([]models.Author, error) {
	if take > 100 {
		take = 100
	}

	var accounts []models.Author
	if err := database.C.
		Limit(take).Offset(offset).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return accounts, err
	}

	return accounts, nil
}

// UsernameFromDisplayName derives a local username for a shadow author the
// way remote display names come over the wire.
func UsernameFromDisplayName(displayName string) string {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(displayName), " ", "_"))
	if len(name) == 0 {
		name = "unknown"
	}
	return name
}

// ResolveRemoteAuthor materializes a shadow row for the author payload of a
// federation message, or returns the existing one. Identity metadata is
// written only on first sight; repeated deliveries never thrash it. The
// host is backfilled once when a previous delivery left it empty.
func ResolveRemoteAuthor(ref models.AuthorRef) (models.Author, error) {
	id, err := ExtractUUIDFromURL(ref.ID)
	if err != nil {
		return models.Author{}, ErrMalformedPayload
	}

	host := CanonicalHost(ref.Host)

	var account models.Author
	if err := database.C.Where("id = ?", id).First(&account).Error; err == nil {
		if len(account.Host) == 0 && len(host) > 0 && !account.IsActive {
			account.Host = host
			if err := database.C.Model(&account).Update("host", host).Error; err != nil {
				return account, fmt.Errorf("unable to backfill author host: %v", err)
			}
		}
		return account, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return account, fmt.Errorf("unable to look up remote author: %v", err)
	}

	account = models.Author{
		ID:           id,
		Name:         uniqueAuthorName(UsernameFromDisplayName(ref.DisplayName)),
		DisplayName:  defaultString(ref.DisplayName, "Unknown"),
		Github:       ref.Github,
		ProfileImage: ref.ProfileImage,
		Host:         host,
		IsActive:     false,
		IsApproved:   false,
	}

	if err := database.C.Create(&account).Error; err != nil {
		// Another request may have materialized the same shadow concurrently;
		// the uniqueness constraint keeps exactly one row per UUID.
		var existing models.Author
		if lookupErr := database.C.Where("id = ?", id).First(&existing).Error; lookupErr == nil {
			return existing, nil
		}
		return account, fmt.Errorf("unable to create remote author: %v", err)
	}

	log.Info().Str("id", id.String()).Str("host", host).Msg("Materialized a shadow author.")
	return account, nil
}

// uniqueAuthorName resolves username collisions deterministically with a
// numeric suffix instead of overwriting an unrelated account.
func uniqueAuthorName(base string) string {
	name := base
	for suffix := 2; ; suffix++ {
		var count int64
		if err := database.C.Model(&models.Author{}).Where("name = ?", name).Count(&count).Error; err != nil || count == 0 {
			return name
		}
		name = fmt.Sprintf("%s-%d", base, suffix)
	}
}

func defaultString(value, fallback string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallback
	}
	return value
}

// BuildAuthorRef serializes an author into the dialect's nested object.
func BuildAuthorRef(author models.Author) models.AuthorRef {
	host := author.Host
	if author.IsLocal() {
		host = LocalAPIBase()
	}
	return models.AuthorRef{
		Type:         "author",
		ID:           AuthorAPIURL(author),
		Host:         host,
		DisplayName:  author.DisplayName,
		Github:       author.Github,
		ProfileImage: author.ProfileImage,
		Web:          strings.TrimSuffix(host, "api/") + "authors/" + author.ID.String(),
	}
}

func UpdateAuthorProfile(account models.Author) (models.Author, error) {
	err := database.C.Model(&account).
		Select("DisplayName", "Github", "ProfileImage").
		Updates(&account).Error
	return account, err
}
