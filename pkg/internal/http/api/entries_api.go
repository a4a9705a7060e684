package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/socialdistribution/node/pkg/internal/http/exts"
	"github.com/socialdistribution/node/pkg/internal/models"
	"github.com/socialdistribution/node/pkg/internal/services"
)

func listPublicEntries(c *fiber.Ctx) error {
	take := c.QueryInt("take", 20)
	offset := c.QueryInt("offset", 0)

	items, err := services.ListPublicEntries(take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(items)
}

func getStream(c *fiber.Ctx) error {
	user, ok := requester(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	take := c.QueryInt("take", 20)
	offset := c.QueryInt("offset", 0)

	items, err := services.ListStreamEntries(user, take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(items)
}

func getEntry(c *fiber.Ctx) error {
	id, err := services.ExtractUUIDFromURL(c.Params("entryId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "no such entry")
	}

	entry, err := services.GetEntryForViewer(id, viewerContext(c))
	if err != nil {
		return maskNotFound(err)
	}

	return c.JSON(entry)
}

func createEntry(c *fiber.Ctx) error {
	user, ok := requester(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var data struct {
		Title       string `json:"title" validate:"required,max=256"`
		Description string `json:"description" validate:"max=1024"`
		Content     string `json:"content" validate:"required"`
		ContentType string `json:"content_type"`
		Visibility  string `json:"visibility"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}
	if len(data.ContentType) == 0 {
		data.ContentType = models.ContentTypePlain
	}

	entry, err := services.NewEntry(models.Entry{
		Title:       data.Title,
		Description: data.Description,
		Content:     data.Content,
		ContentType: data.ContentType,
		Visibility:  models.ParseVisibility(data.Visibility),
	}, user)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

func updateEntry(c *fiber.Ctx) error {
	user, entry, err := ownEntry(c)
	if err != nil {
		return err
	}

	var data struct {
		Title       string `json:"title" validate:"required,max=256"`
		Description string `json:"description" validate:"max=1024"`
		Content     string `json:"content" validate:"required"`
		ContentType string `json:"content_type" validate:"required"`
		Visibility  string `json:"visibility" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	entry.Title = data.Title
	entry.Description = data.Description
	entry.Content = data.Content
	entry.ContentType = data.ContentType
	entry.Visibility = models.ParseVisibility(data.Visibility)

	entry, err = services.EditEntry(entry, user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(entry)
}

func deleteEntry(c *fiber.Ctx) error {
	user, entry, err := ownEntry(c)
	if err != nil {
		return err
	}

	if err := services.DeleteEntry(entry, user); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ownEntry loads the addressed entry for a mutation. An entry owned by
// someone else answers 404, not 403, so ownership does not leak existence.
func ownEntry(c *fiber.Ctx) (models.Author, models.Entry, error) {
	user, ok := requester(c)
	if !ok {
		return user, models.Entry{}, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	id, err := services.ExtractUUIDFromURL(c.Params("entryId"))
	if err != nil {
		return user, models.Entry{}, fiber.NewError(fiber.StatusNotFound, "no such entry")
	}

	entry, err := services.GetEntry(id)
	if err != nil {
		return user, entry, maskNotFound(err)
	}
	if entry.AuthorID != user.ID {
		return user, entry, fiber.NewError(fiber.StatusNotFound, "no such entry")
	}

	return user, entry, nil
}

// viewableEntry loads the addressed entry for a read, through the
// visibility engine.
func viewableEntry(c *fiber.Ctx) (models.Entry, error) {
	id, err := services.ExtractUUIDFromURL(c.Params("entryId"))
	if err != nil {
		return models.Entry{}, fiber.NewError(fiber.StatusNotFound, "no such entry")
	}

	entry, err := services.GetEntryForViewer(id, viewerContext(c))
	if err != nil {
		return entry, maskNotFound(err)
	}

	return entry, nil
}
