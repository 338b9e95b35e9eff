// Package services – CommandHandler
//
// CommandHandler reacts to chat messages from the single authorized user.
// A leading bot mention is stripped and the rest is lowercased, then:
//
//	start          post a question in the message's channel
//	settime <0-23> store "0 <hour> * * *" as the daily schedule
//	help           send the command list by direct message
//
// The triggering message is deleted afterwards. Direct messages and deletions
// are best-effort: failures are logged and never returned.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/wyr-bot/internal/observability"
	"github.com/tbourn/wyr-bot/internal/render"
)

// Command names as reported by Handle.
const (
	CommandStart   = "start"
	CommandSetTime = "settime"
	CommandHelp    = "help"
)

var leadingMention = regexp.MustCompile(`^\s*<@!?\d+>`)

// IncomingMessage is the part of a created chat message the handler needs.
type IncomingMessage struct {
	ID        discord.MessageID
	ChannelID discord.ChannelID
	AuthorID  discord.UserID
	Content   string
}

// Poster posts a question to a channel without returning errors.
type Poster interface {
	Run(ctx context.Context, channelID discord.ChannelID)
}

// Rescheduler re-arms the running daily trigger.
type Rescheduler interface {
	Reschedule(expr string) error
}

// CommandHandler dispatches the authorized user's commands.
type CommandHandler struct {
	Messenger  Messenger
	Poster     Poster
	Schedules  *ScheduleService
	Notifier   *Notifier
	Authorized discord.UserID

	// Rescheduler, when set, is told about a new schedule right after it is
	// stored. When nil the new time applies from the next start.
	Rescheduler Rescheduler

	Now func() time.Time

	botID atomic.Uint64
}

// SetBotID records the bot's own user ID, used in the help text.
func (h *CommandHandler) SetBotID(id discord.UserID) { h.botID.Store(uint64(id)) }

func (h *CommandHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Normalize strips one leading mention, trims and lowercases content.
func Normalize(content string) string {
	content = leadingMention.ReplaceAllString(content, "")
	return cases.Lower(language.French).String(strings.TrimSpace(content))
}

// Handle processes one message and returns the dispatched command name, or
// "" when nothing was done.
func (h *CommandHandler) Handle(ctx context.Context, m IncomingMessage) string {
	if !h.Authorized.IsValid() || m.AuthorID != h.Authorized {
		return ""
	}
	content := Normalize(m.Content)

	var cmd string
	switch {
	case content == CommandStart:
		cmd = CommandStart
	case strings.HasPrefix(content, CommandSetTime) && firstField(content) == CommandSetTime:
		cmd = CommandSetTime
	case strings.HasPrefix(content, CommandHelp):
		cmd = CommandHelp
	default:
		return ""
	}

	tr := otel.Tracer("services/CommandHandler")
	ctx, span := tr.Start(ctx, "Handle",
		trace.WithAttributes(
			attribute.String("command", cmd),
			attribute.String("channel.id", m.ChannelID.String()),
		),
	)
	defer span.End()
	observability.CommandsDispatched.WithLabelValues(cmd).Inc()
	log.Info().Str("command", cmd).Str("channel_id", m.ChannelID.String()).Msg("command received")

	switch cmd {
	case CommandStart:
		h.Poster.Run(ctx, m.ChannelID)
	case CommandSetTime:
		if !h.setTime(ctx, m, content) {
			return cmd
		}
	case CommandHelp:
		h.dm(ctx, m.AuthorID, render.HelpEmbed(discord.UserID(h.botID.Load()), h.now()))
	}
	h.deleteTrigger(ctx, m)
	return cmd
}

// setTime reports whether the triggering message should be deleted.
func (h *CommandHandler) setTime(ctx context.Context, m IncomingMessage, content string) bool {
	var token string
	if f := strings.Fields(content); len(f) > 1 {
		token = f[1]
	}

	sch, hour, err := h.Schedules.SetHour(ctx, token)
	if errors.Is(err, ErrInvalidHour) {
		log.Info().Str("token", token).Msg("settime rejected")
		h.dm(ctx, m.AuthorID, render.SetTimeErrorEmbed(h.now()))
		return true
	}
	if err != nil {
		log.Error().Err(err).Str("token", token).Msg("failed to store schedule")
		h.Notifier.Notify(ctx, err)
		return false
	}

	log.Info().Str("schedule", sch.Time).Msg("daily schedule updated")
	h.dm(ctx, m.AuthorID, render.SetTimeOKEmbed(hour, h.now()))

	if h.Rescheduler != nil {
		if err := h.Rescheduler.Reschedule(sch.Time); err != nil {
			log.Error().Err(err).Str("schedule", sch.Time).Msg("failed to re-arm daily trigger")
			h.Notifier.Notify(ctx, err)
		}
	}
	return true
}

func (h *CommandHandler) dm(ctx context.Context, user discord.UserID, e discord.Embed) {
	if err := sendDM(h.Messenger, user, api.SendMessageData{Embeds: []discord.Embed{e}}); err != nil {
		log.Error().Err(err).Str("user_id", user.String()).Msg("direct message failed")
		h.Notifier.Notify(ctx, err)
	}
}

func (h *CommandHandler) deleteTrigger(ctx context.Context, m IncomingMessage) {
	if err := h.Messenger.DeleteMessage(m.ChannelID, m.ID, ""); err != nil {
		log.Error().Err(err).Str("message_id", m.ID.String()).Msg("failed to delete command message")
		h.Notifier.Notify(ctx, err)
	}
}

func firstField(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
