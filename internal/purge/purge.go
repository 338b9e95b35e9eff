// Package purge deletes every guild-scoped application command of the bot.
package purge

import (
	"context"
	"fmt"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/rs/zerolog/log"
)

// CommandAPI is the command registration surface used by All. *api.Client
// satisfies it.
type CommandAPI interface {
	GuildCommands(appID discord.AppID, guildID discord.GuildID) ([]discord.Command, error)
	DeleteGuildCommand(appID discord.AppID, guildID discord.GuildID, commandID discord.CommandID) error
}

// All lists the guild commands of appID and deletes them one by one. It stops
// at the first API error and returns how many commands were deleted.
func All(ctx context.Context, c CommandAPI, appID discord.AppID, guildID discord.GuildID) (int, error) {
	log.Info().Msg("Started deleting all application (/) commands.")

	cmds, err := c.GuildCommands(appID, guildID)
	if err != nil {
		return 0, fmt.Errorf("list guild commands: %w", err)
	}

	deleted := 0
	for _, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if err := c.DeleteGuildCommand(appID, guildID, cmd.ID); err != nil {
			return deleted, fmt.Errorf("delete command %q: %w", cmd.Name, err)
		}
		deleted++
		log.Info().Str("command", cmd.Name).Str("command_id", cmd.ID.String()).Msgf("Deleted command: %s", cmd.Name)
	}

	log.Info().Int("deleted", deleted).Msg("Successfully deleted all application (/) commands.")
	return deleted, nil
}
