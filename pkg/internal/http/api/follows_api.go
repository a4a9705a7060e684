package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/socialdistribution/node/pkg/internal/http/exts"
	"github.com/socialdistribution/node/pkg/internal/models"
	"github.com/socialdistribution/node/pkg/internal/services"
)

// followAuthor starts following a target given by UUID or URL. Following a
// local author opens a PENDING request awaiting approval; following a
// remote author pushes a follow payload to the peer first and fails with
// 502 when it cannot be delivered.
func followAuthor(c *fiber.Ctx) error {
	user, ok := requester(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var data struct {
		AuthorID string `json:"author_id" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	target, err := services.ResolveAuthor(data.AuthorID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if target.IsLocal() {
		request, created, err := services.GetOrCreateFollowRequest(user, target, models.FollowStatusPending)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(request)
	}

	request, err := services.FollowRemoteAuthor(user, target)
	if err != nil {
		if errors.Is(err, services.ErrUpstreamDelivery) {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

func listFollowers(c *fiber.Ctx) error {
	account, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	items, err := services.ListFollowers(account.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"type": "followers",
		"followers": lo.Map(items, func(item models.Author, _ int) models.AuthorRef {
			return services.BuildAuthorRef(item)
		}),
	})
}

func listFollowing(c *fiber.Ctx) error {
	account, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	items, err := services.ListFollowing(account.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"type": "following",
		"following": lo.Map(items, func(item models.Author, _ int) models.AuthorRef {
			return services.BuildAuthorRef(item)
		}),
	})
}

func listFriends(c *fiber.Ctx) error {
	account, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	items, err := services.ListFriends(account.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"type": "friends",
		"friends": lo.Map(items, func(item models.Author, _ int) models.AuthorRef {
			return services.BuildAuthorRef(item)
		}),
	})
}

// getFollower answers whether the author identified by fqid is an approved
// follower of the addressed author.
func getFollower(c *fiber.Ctx) error {
	account, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	follower, err := services.ResolveAuthor(c.Params("fqid"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	request, err := services.GetFollowRequest(follower.ID, account.ID)
	if err != nil || request.Status != models.FollowStatusApproved {
		return fiber.NewError(fiber.StatusNotFound, "not a follower")
	}

	return c.JSON(services.BuildAuthorRef(follower))
}

// putFollower approves a follower; only the followed author may do that.
// An edge that does not exist yet is written as APPROVED directly, which is
// how peers record follows accepted out of band.
func putFollower(c *fiber.Ctx) error {
	user, ok := requester(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	account, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if account.ID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "only the followed author may approve followers")
	}

	follower, err := services.ResolveAuthor(c.Params("fqid"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	request, err := services.GetFollowRequest(follower.ID, account.ID)
	if errors.Is(err, services.ErrNotFound) {
		request, _, err = services.GetOrCreateFollowRequest(follower, account, models.FollowStatusApproved)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(request)
	} else if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := services.ApproveFollowRequest(request); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	request.Status = models.FollowStatusApproved

	return c.JSON(request)
}

// deleteFollower removes the follow edge; either side of the edge may do
// it, the followed author to reject and the follower to unfollow.
func deleteFollower(c *fiber.Ctx) error {
	user, ok := requester(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	account, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	follower, err := services.ResolveAuthor(c.Params("fqid"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if user.ID != account.ID && user.ID != follower.ID {
		return fiber.NewError(fiber.StatusForbidden, "not a party of this follow")
	}

	request, err := services.GetFollowRequest(follower.ID, account.ID)
	if err != nil {
		return maskNotFound(err)
	}

	if err := services.DeleteFollowRequest(request); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// countInbox reports the pending follow requests awaiting the author's
// decision; the author may only ask about their own inbox.
func countInbox(c *fiber.Ctx) error {
	user, ok := requester(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	account, err := services.ResolveAuthor(c.Params("authorId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if account.ID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "cannot read another author's inbox")
	}

	count, err := services.CountPendingIncoming(account.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{"count": count})
}
