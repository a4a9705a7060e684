package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/socialdistribution/node/pkg/internal/models"
)

func MapAPIs(app *fiber.App) {
	api := app.Group("/api").Name("API")
	{
		authors := api.Group("/authors").Name("Authors API")
		{
			authors.Get("/", listAuthors)
			authors.Post("/register", registerAuthor)
			authors.Post("/follow", followAuthor)

			authors.Get("/:authorId", getAuthor)
			authors.Put("/:authorId", updateAuthor)

			authors.Get("/:authorId/entries", listAuthorEntries)

			authors.Get("/:authorId/followers", listFollowers)
			authors.Get("/:authorId/following", listFollowing)
			authors.Get("/:authorId/friends", listFriends)
			authors.Get("/:authorId/followers/:fqid", getFollower)
			authors.Put("/:authorId/followers/:fqid", putFollower)
			authors.Delete("/:authorId/followers/:fqid", deleteFollower)

			authors.Get("/:authorId/inbox/count", countInbox)
			authors.Post("/:authorId/inbox/", postInbox)

			authors.Get("/:authorId/liked", listAuthorLiked)
			authors.Get("/:authorId/liked/:likeId", getLike)
		}

		entries := api.Group("/entries").Name("Entries API")
		{
			entries.Get("/", listPublicEntries)
			entries.Post("/", createEntry)

			entries.Get("/:entryId", getEntry)
			entries.Put("/:entryId", updateEntry)
			entries.Delete("/:entryId", deleteEntry)

			entries.Post("/:entryId/like", likeEntry)
			entries.Get("/:entryId/likes", listEntryLikes)

			entries.Get("/:entryId/comments", listComments)
			entries.Post("/:entryId/comments", createComment)
		}

		comments := api.Group("/comments").Name("Comments API")
		{
			comments.Get("/:commentId", getComment)
			comments.Post("/:commentId/like", likeComment)
		}

		api.Get("/stream", getStream)
		api.Get("/liked/:likeId", getLike)
	}
}

// requester pulls the already-authenticated local author off the request.
func requester(c *fiber.Ctx) (models.Author, bool) {
	user, ok := c.Locals("user").(models.Author)
	return user, ok
}

// viewerContext adapts the requester into the optional viewer the
// visibility engine expects.
func viewerContext(c *fiber.Ctx) *models.Author {
	if user, ok := requester(c); ok {
		return &user
	}
	return nil
}

func requesterNode(c *fiber.Ctx) (models.RemoteNode, bool) {
	node, ok := c.Locals("node").(models.RemoteNode)
	return node, ok
}
