package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/socialdistribution/node/pkg/internal/http/exts"
	"github.com/socialdistribution/node/pkg/internal/models"
	"github.com/socialdistribution/node/pkg/internal/services"
)

func listComments(c *fiber.Ctx) error {
	take := c.QueryInt("take", 20)
	offset := c.QueryInt("offset", 0)

	entry, err := viewableEntry(c)
	if err != nil {
		return err
	}

	items, err := services.ListComments(entry, viewerContext(c), take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"type":     "comments",
		"comments": items,
	})
}

func createComment(c *fiber.Ctx) error {
	user, ok := requester(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	entry, err := viewableEntry(c)
	if err != nil {
		return err
	}

	var data struct {
		Content     string `json:"content" validate:"required"`
		ContentType string `json:"content_type"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}
	if len(data.ContentType) == 0 {
		data.ContentType = models.ContentTypePlain
	}

	comment, err := services.NewComment(entry, user, data.Content, data.ContentType)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

func getComment(c *fiber.Ctx) error {
	id, err := services.ExtractUUIDFromURL(c.Params("commentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "no such comment")
	}

	comment, err := services.GetComment(id)
	if err != nil {
		return maskNotFound(err)
	}
	if !services.CanViewComment(comment, comment.Entry, viewerContext(c)) {
		return fiber.NewError(fiber.StatusNotFound, "no such comment")
	}

	return c.JSON(comment)
}

func likeComment(c *fiber.Ctx) error {
	user, ok := requester(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	id, err := services.ExtractUUIDFromURL(c.Params("commentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "no such comment")
	}

	comment, err := services.GetComment(id)
	if err != nil {
		return maskNotFound(err)
	}
	if !services.CanViewComment(comment, comment.Entry, &user) {
		return fiber.NewError(fiber.StatusNotFound, "no such comment")
	}

	object, err := services.LikeComment(comment, user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(object)
}
