package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/socialdistribution/node/pkg/internal/services"
)

// postInbox receives one federation payload addressed to a local author.
// Only authenticated peer nodes may deliver here.
func postInbox(c *fiber.Ctx) error {
	node, ok := requesterNode(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "node authentication required")
	}

	recipient, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if !recipient.IsLocal() {
		return fiber.NewError(fiber.StatusNotFound, "recipient does not live on this node")
	}

	kind, err := services.IngestInboxPayload(recipient, c.Body())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMalformedPayload):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		default:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}

	log.Debug().
		Str("kind", kind).
		Str("node", node.Name).
		Str("recipient", recipient.ID.String()).
		Msg("Accepted an inbox payload.")

	return c.JSON(fiber.Map{"type": kind})
}
