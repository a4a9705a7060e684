package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/socialdistribution/node/pkg/internal/http/admin"
	"github.com/socialdistribution/node/pkg/internal/http/api"
)

type App struct {
	app *fiber.App
}

func NewServer() *App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		EnableIPValidation:    true,
		ServerHeader:          "SocialDistribution.Node",
		AppName:               "SocialDistribution.Node",
		ProxyHeader:           fiber.HeaderXForwardedFor,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		BodyLimit:             10 * 1024 * 1024,
	})

	app.Use(authenticate)

	api.MapAPIs(app)
	admin.MapAPIs(app)

	return &App{app}
}

func (v *App) Listen() {
	if err := v.app.Listen(viper.GetString("bind")); err != nil &&
		!strings.Contains(err.Error(), "Server closed") {
		log.Fatal().Err(err).Msg("An error occurred when starting http server.")
	}
}
