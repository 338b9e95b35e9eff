// Package bot connects the services to the platform gateway: it subscribes
// to ready, message and interaction events, sets the presence, and resolves
// the daily channel when the scheduler fires.
package bot

import (
	"context"
	"fmt"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/diamondburned/arikawa/v3/utils/ws"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/wyr-bot/internal/services"
)

// Intents required by the bot; message content is needed for commands.
const Intents = gateway.IntentGuilds | gateway.IntentGuildMessages | gateway.IntentMessageContent

// Platform is what the bot needs from the gateway session. *state.State
// satisfies it.
type Platform interface {
	services.Messenger
	Channel(id discord.ChannelID) (*discord.Channel, error)
	SendGateway(ctx context.Context, cmd ws.Event) error
}

// Bot routes gateway events to the services.
type Bot struct {
	Platform     Platform
	Commands     *services.CommandHandler
	Collectors   *services.Collectors
	Poster       services.Poster
	Notifier     *services.Notifier
	DailyChannel discord.ChannelID
	Status       string

	ctx context.Context
}

// NewState returns a gateway session for token with the bot's intents.
func NewState(token string) *state.State {
	s := state.New("Bot " + token)
	s.AddIntents(Intents)
	return s
}

// Attach registers the event handlers on s. Handlers run with ctx.
func (b *Bot) Attach(ctx context.Context, s *state.State) {
	b.ctx = ctx
	s.AddHandler(b.onReady)
	s.AddHandler(b.onMessage)
	s.AddHandler(b.onInteraction)
}

func (b *Bot) context() context.Context {
	if b.ctx == nil {
		return context.Background()
	}
	return b.ctx
}

// guard keeps a handler panic from taking the process down.
func (b *Bot) guard(event string) {
	if r := recover(); r != nil {
		err := fmt.Errorf("panic in %s handler: %v", event, r)
		log.Error().Err(err).Str("event", event).Msg("handler panicked")
		b.Notifier.Notify(b.context(), err)
	}
}

func (b *Bot) onReady(ev *gateway.ReadyEvent) {
	defer b.guard("ready")
	log.Info().Str("user", ev.User.Tag()).Msg("connected")
	if b.Commands != nil {
		b.Commands.SetBotID(ev.User.ID)
	}
	if err := b.SetPresence(b.context()); err != nil {
		log.Error().Err(err).Msg("failed to set presence")
		b.Notifier.Notify(b.context(), err)
	}
}

// SetPresence shows "Watching <Status>" on the bot's profile.
func (b *Bot) SetPresence(ctx context.Context) error {
	if b.Status == "" {
		return nil
	}
	return b.Platform.SendGateway(ctx, &gateway.UpdatePresenceCommand{
		Activities: []discord.Activity{{Name: b.Status, Type: discord.WatchingActivity}},
		Status:     discord.OnlineStatus,
	})
}

func (b *Bot) onMessage(ev *gateway.MessageCreateEvent) {
	defer b.guard("message_create")
	if b.Commands == nil {
		return
	}
	b.Commands.Handle(b.context(), services.IncomingMessage{
		ID:        ev.ID,
		ChannelID: ev.ChannelID,
		AuthorID:  ev.Author.ID,
		Content:   ev.Content,
	})
}

func (b *Bot) onInteraction(ev *gateway.InteractionCreateEvent) {
	defer b.guard("interaction_create")
	if b.Collectors == nil || ev.Message == nil {
		return
	}
	data, ok := ev.Data.(*discord.ButtonInteraction)
	if !ok {
		return
	}
	b.Collectors.Handle(b.context(), services.ButtonPress{
		InteractionID: ev.ID,
		Token:         ev.Token,
		MessageID:     ev.Message.ID,
		CustomID:      string(data.CustomID),
	})
}

// FireDaily posts the daily question when the daily channel resolves, and
// skips the run silently otherwise.
func (b *Bot) FireDaily(ctx context.Context) {
	ch, err := b.Platform.Channel(b.DailyChannel)
	if err != nil || ch == nil {
		log.Debug().Err(err).Str("channel_id", b.DailyChannel.String()).Msg("daily channel unavailable, skipping")
		return
	}
	b.Poster.Run(ctx, ch.ID)
}
