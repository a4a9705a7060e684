package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/socialdistribution/node/pkg/internal/http/exts"
	"github.com/socialdistribution/node/pkg/internal/services"
)

func listNodes(c *fiber.Ctx) error {
	if _, err := staff(c); err != nil {
		return err
	}

	nodes, err := services.ListActiveNodes()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(nodes)
}

// upsertNode provisions or refreshes a federation peer, keyed by base URL.
func upsertNode(c *fiber.Ctx) error {
	if _, err := staff(c); err != nil {
		return err
	}

	var data struct {
		Name     string `json:"name" validate:"required,max=128"`
		BaseURL  string `json:"base_url" validate:"required,url"`
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
		IsActive *bool  `json:"is_active"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	active := true
	if data.IsActive != nil {
		active = *data.IsActive
	}

	node, created, err := services.UpsertRemoteNode(data.Name, data.BaseURL, data.Username, data.Password, active)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(node)
}

func approveAuthor(c *fiber.Ctx) error {
	if _, err := staff(c); err != nil {
		return err
	}

	account, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if err := services.ApproveAccount(account); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}

func triggerGithubSync(c *fiber.Ctx) error {
	if _, err := staff(c); err != nil {
		return err
	}

	go services.SyncGithubActivity()

	return c.SendStatus(fiber.StatusOK)
}
