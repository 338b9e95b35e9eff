package services

import (
	"fmt"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
)

// Messenger is the subset of the platform REST client used by the services.
// *state.State satisfies it.
type Messenger interface {
	SendMessageComplex(channelID discord.ChannelID, data api.SendMessageData) (*discord.Message, error)
	DeleteMessage(channelID discord.ChannelID, messageID discord.MessageID, reason api.AuditLogReason) error
	CreatePrivateChannel(recipient discord.UserID) (*discord.Channel, error)
	RespondInteraction(id discord.InteractionID, token string, resp api.InteractionResponse) error
}

// sendDM opens (or reuses) the direct message channel with user and sends data.
func sendDM(m Messenger, user discord.UserID, data api.SendMessageData) error {
	ch, err := m.CreatePrivateChannel(user)
	if err != nil {
		return fmt.Errorf("open dm with %s: %w", user, err)
	}
	if _, err := m.SendMessageComplex(ch.ID, data); err != nil {
		return fmt.Errorf("send dm to %s: %w", user, err)
	}
	return nil
}
