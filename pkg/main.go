package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	pkg "github.com/socialdistribution/node/pkg/internal"
	"github.com/socialdistribution/node/pkg/internal/cache"
	"github.com/socialdistribution/node/pkg/internal/database"
	"github.com/socialdistribution/node/pkg/internal/http"
	"github.com/socialdistribution/node/pkg/internal/services"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" ____             _       _ ____  _     _        _ _           _   _\n/ ___|  ___   ___(_) __ _| |  _ \\(_)___| |_ _ __(_) |__  _   _| |_(_) ___  _ __\n\\___ \\ / _ \\ / __| |/ _` | | | | | / __| __| '__| | '_ \\| | | | __| |/ _ \\| '_ \\\n ___) | (_) | (__| | (_| | | |_| | \\__ \\ |_| |  | | |_) | |_| | |_| | (_) | | | |\n|____/ \\___/ \\___|_|\\__,_|_|____/|_|___/\\__|_|  |_|_.__/ \\__,_|\\__|_|\\___/|_| |_|"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("SocialDistribution.Node"), pkg.AppVersion)
	fmt.Printf("The federated social networking node\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// In-memory cache for friendship lookups
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when setting up cache store.")
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", services.SyncGithubActivity)
	quartz.AddFunc("@midnight", func() {
		services.SweepInboxActivities(30 * 24 * time.Hour)
	})
	quartz.Start()

	// Server
	go http.NewServer().Listen()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
}
