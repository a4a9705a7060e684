package http

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/socialdistribution/node/pkg/internal/services"
)

// authenticate resolves the Basic Auth credential exactly once per request
// into either a peer node or a local author. Handlers only ever look at
// c.Locals("node") and c.Locals("user"); requests without a credential
// continue anonymously and are rejected by the guarded routes themselves.
func authenticate(c *fiber.Ctx) error {
	username, password, ok := basicCredential(c)
	if !ok {
		return c.Next()
	}

	if node, ok := services.AuthenticateNode(username, password); ok {
		c.Locals("node", node)
		return c.Next()
	}

	if account, err := services.AuthenticateAuthor(username, password); err == nil {
		c.Locals("user", account)
		return c.Next()
	}

	return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
}

func basicCredential(c *fiber.Ctx) (string, string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) == 0 {
		return "", "", false
	}

	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}

	raw, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}

	username, password, found := strings.Cut(string(raw), ":")
	if !found {
		return "", "", false
	}

	return username, password, true
}
