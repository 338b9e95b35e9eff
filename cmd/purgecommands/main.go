// Command purgecommands deletes every guild slash command registered by the
// bot application.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/wyr-bot/internal/config"
	"github.com/tbourn/wyr-bot/internal/purge"
	"github.com/tbourn/wyr-bot/internal/sysutil"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadPurge()
	if err != nil {
		sysutil.SetupLogger(os.Stderr, "info", true)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := api.NewClient("Bot " + cfg.Token).WithContext(ctx)
	if _, err := purge.All(ctx, client, cfg.AppID, cfg.GuildID); err != nil {
		log.Error().Err(err).Msg("purge failed")
		stop()
		os.Exit(1)
	}
}
