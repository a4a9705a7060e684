package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/socialdistribution/node/pkg/internal/http/exts"
	"github.com/socialdistribution/node/pkg/internal/models"
	"github.com/socialdistribution/node/pkg/internal/services"
)

func listAuthors(c *fiber.Ctx) error {
	take := c.QueryInt("take", 20)
	offset := c.QueryInt("offset", 0)

	items, err := services.ListAuthors(take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"type": "authors",
		"authors": lo.Map(items, func(item models.Author, _ int) models.AuthorRef {
			return services.BuildAuthorRef(item)
		}),
	})
}

func getAuthor(c *fiber.Ctx) error {
	account, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return c.JSON(services.BuildAuthorRef(account))
}

func registerAuthor(c *fiber.Ctx) error {
	var data struct {
		Name        string `json:"name" validate:"required,min=2,max=64"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password" validate:"required,min=8"`
		Github      string `json:"github"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	account, err := services.CreateAccount(data.Name, data.DisplayName, data.Password, data.Github)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(services.BuildAuthorRef(account))
}

func updateAuthor(c *fiber.Ctx) error {
	user, ok := requester(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	target, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if target.ID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "cannot update another author's profile")
	}

	var data struct {
		DisplayName  string `json:"display_name" validate:"required,max=128"`
		Github       string `json:"github" validate:"max=256"`
		ProfileImage string `json:"profile_image" validate:"max=1024"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	target.DisplayName = data.DisplayName
	target.Github = data.Github
	target.ProfileImage = data.ProfileImage

	account, err := services.UpdateAuthorProfile(target)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(services.BuildAuthorRef(account))
}

func listAuthorEntries(c *fiber.Ctx) error {
	take := c.QueryInt("take", 20)
	offset := c.QueryInt("offset", 0)

	account, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	items, err := services.ListAuthorEntries(account.ID, viewerContext(c), take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	count, err := services.CountAuthorEntries(account.ID, viewerContext(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  items,
	})
}

func maskNotFound(err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
