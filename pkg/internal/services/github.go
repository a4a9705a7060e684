package services

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/socialdistribution/node/pkg/internal/database"
	"github.com/socialdistribution/node/pkg/internal/models"
)

type githubEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Repo struct {
		Name string `json:"name"`
	} `json:"repo"`
	CreatedAt time.Time `json:"created_at"`
}

var githubClient = &http.Client{Timeout: 10 * time.Second}

// SyncGithubActivity turns recent public GitHub events of every local
// author with a linked GitHub handle into PUBLIC markdown entries. Events
// already imported are skipped via their source id.
func SyncGithubActivity() {
	var authors []models.Author
	if err := database.C.
		Where("host = '' AND is_active = ? AND github != ''", true).
		Find(&authors).Error; err != nil {
		log.Error().Err(err).Msg("Unable to list authors for activity sync...")
		return
	}

	for _, author := range authors {
		if err := syncAuthorGithubActivity(author); err != nil {
			log.Warn().Err(err).Str("author", author.Name).Msg("Unable to sync GitHub activity...")
		}
	}
}

func syncAuthorGithubActivity(author models.Author) error {
	handle := strings.TrimPrefix(strings.TrimSpace(author.Github), "@")
	if idx := strings.LastIndex(handle, "/"); idx >= 0 {
		handle = handle[idx+1:]
	}
	if len(handle) == 0 {
		return nil
	}

	events, err := fetchGithubEvents(handle)
	if err != nil {
		return err
	}

	for _, event := range events {
		sourceID := fmt.Sprintf("github:%s", event.ID)

		var count int64
		if err := database.C.Model(&models.Entry{}).
			Where("source_id = ?", sourceID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("unable to check imported event: %v", err)
		}
		if count > 0 {
			continue
		}

		entry := models.Entry{
			ID:          uuid.New(),
			Title:       fmt.Sprintf("GitHub activity: %s", describeGithubEvent(event)),
			Description: fmt.Sprintf("Imported from %s's GitHub activity", handle),
			Content: fmt.Sprintf("**%s** %s in [%s](https://github.com/%s)",
				handle, describeGithubEvent(event), event.Repo.Name, event.Repo.Name),
			ContentType: models.ContentTypeMarkdown,
			Visibility:  models.VisibilityPublic,
			AuthorID:    author.ID,
			SourceID:    &sourceID,
			Published:   event.CreatedAt,
		}

		if err := database.C.Create(&entry).Error; err != nil {
			return fmt.Errorf("unable to import event: %v", err)
		}
		DispatchEntry(entry, author)
	}

	return nil
}

func fetchGithubEvents(handle string) ([]githubEvent, error) {
	url := fmt.Sprintf("https://api.github.com/users/%s/events/public?per_page=30", handle)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := githubClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github returned status %d", resp.StatusCode)
	}

	var events []githubEvent
	if err := jsoniter.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("unable to decode events: %v", err)
	}

	return events, nil
}

func describeGithubEvent(event githubEvent) string {
	switch event.Type {
	case "PushEvent":
		return "pushed commits"
	case "PullRequestEvent":
		return "worked on a pull request"
	case "IssuesEvent":
		return "worked on an issue"
	case "IssueCommentEvent":
		return "commented on an issue"
	case "CreateEvent":
		return "created something"
	case "ForkEvent":
		return "forked a repository"
	case "WatchEvent":
		return "starred a repository"
	case "ReleaseEvent":
		return "published a release"
	default:
		return "did something"
	}
}
