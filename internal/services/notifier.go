package services

import (
	"context"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/tbourn/wyr-bot/internal/observability"
	"github.com/tbourn/wyr-bot/internal/render"
)

// Notifier forwards unexpected errors to a single user by direct message.
// Delivery is best-effort and throttled by a token bucket; a nil Notifier or
// one without a recipient does nothing.
type Notifier struct {
	Messenger Messenger
	Recipient discord.UserID
	Limiter   *rate.Limiter
}

// NewNotifier builds a Notifier allowing perSecond messages with the given burst.
func NewNotifier(m Messenger, recipient discord.UserID, perSecond float64, burst int) *Notifier {
	if burst < 1 {
		burst = 1
	}
	return &Notifier{
		Messenger: m,
		Recipient: recipient,
		Limiter:   rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Notify sends "Une erreur s'est produite : <err>" to the recipient. The
// caller is expected to have logged err already.
func (n *Notifier) Notify(ctx context.Context, err error) {
	if n == nil || err == nil || !n.Recipient.IsValid() || n.Messenger == nil {
		return
	}
	if ctx.Err() != nil {
		return
	}
	if n.Limiter != nil && !n.Limiter.Allow() {
		observability.NotificationsDropped.Inc()
		log.Debug().Err(err).Msg("error notification dropped by rate limiter")
		return
	}
	if serr := sendDM(n.Messenger, n.Recipient, api.SendMessageData{Content: render.ErrorText(err)}); serr != nil {
		log.Error().Err(serr).Str("recipient", n.Recipient.String()).Msg("failed to send error message")
	}
}
