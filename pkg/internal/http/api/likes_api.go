package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/socialdistribution/node/pkg/internal/services"
)

func likeEntry(c *fiber.Ctx) error {
	user, ok := requester(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	entry, err := viewableEntry(c)
	if err != nil {
		return err
	}

	object, err := services.LikeEntry(entry, user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(object)
}

func listEntryLikes(c *fiber.Ctx) error {
	entry, err := viewableEntry(c)
	if err != nil {
		return err
	}

	items, err := services.ListEntryLikes(entry)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"type":  "likes",
		"likes": items,
	})
}

func listAuthorLiked(c *fiber.Ctx) error {
	account, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	items, err := services.ListAuthorLikes(account)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"type":  "liked",
		"items": items,
	})
}

// getLike resolves an opaque like token. Any malformed token and any token
// pointing at content the viewer may not see answers 404.
func getLike(c *fiber.Ctx) error {
	object, err := services.GetLike(c.Params("likeId"), viewerContext(c))
	if err != nil {
		return maskNotFound(err)
	}

	return c.JSON(object)
}
