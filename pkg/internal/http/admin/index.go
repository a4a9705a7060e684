package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/socialdistribution/node/pkg/internal/models"
)

func MapAPIs(app *fiber.App) {
	admin := app.Group("/api/admin").Name("Admin API")
	{
		admin.Get("/nodes", listNodes)
		admin.Post("/nodes", upsertNode)

		admin.Post("/authors/:authorId/approve", approveAuthor)

		admin.Post("/github-sync", triggerGithubSync)
	}
}

// staff guards every admin route; non-staff callers get 403.
func staff(c *fiber.Ctx) (models.Author, error) {
	user, ok := c.Locals("user").(models.Author)
	if !ok {
		return user, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	if !user.IsStaff {
		return user, fiber.NewError(fiber.StatusForbidden, "staff only")
	}
	return user, nil
}
