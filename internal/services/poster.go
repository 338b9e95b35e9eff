// Package services – DailyPoster
//
// DailyPoster draws one question uniformly at random from the scraped pool,
// posts it with the two vote buttons, stores a zeroed tally keyed by the
// posted message and then arms that message's collector, in that order.
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/wyr-bot/internal/domain"
	"github.com/tbourn/wyr-bot/internal/observability"
	"github.com/tbourn/wyr-bot/internal/render"
	"github.com/tbourn/wyr-bot/internal/repo"
)

// QuestionSource supplies the question pool. *scrape.Source satisfies it.
type QuestionSource interface {
	Load(ctx context.Context) []domain.Question
}

// DailyPoster posts the daily question.
type DailyPoster struct {
	DB         *gorm.DB
	Source     QuestionSource
	Messenger  Messenger
	Collectors *Collectors
	Notifier   *Notifier

	// Rand returns an index in [0,n). Defaults to math/rand/v2.IntN.
	Rand func(n int) int
	Now  func() time.Time
}

func (p *DailyPoster) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *DailyPoster) pick(n int) int {
	if p.Rand != nil {
		return p.Rand(n)
	}
	return rand.IntN(n)
}

// Post publishes one question to channelID and returns its tally. With an
// empty pool it sends the "no question found" notice, stores nothing and
// returns ErrNoQuestions (or the send error if the notice failed).
func (p *DailyPoster) Post(ctx context.Context, channelID discord.ChannelID) (*domain.Vote, error) {
	tr := otel.Tracer("services/DailyPoster")
	ctx, span := tr.Start(ctx, "Post",
		trace.WithAttributes(attribute.String("channel.id", channelID.String())))
	defer span.End()

	pool := p.Source.Load(ctx)
	span.SetAttributes(attribute.Int("pool.size", len(pool)))
	if len(pool) == 0 {
		observability.DailyPosts.WithLabelValues("empty").Inc()
		if _, err := p.Messenger.SendMessageComplex(channelID, api.SendMessageData{Content: render.NoQuestionText}); err != nil {
			return nil, fmt.Errorf("send empty pool notice: %w", err)
		}
		return nil, ErrNoQuestions
	}

	q := pool[p.pick(len(pool))]
	span.SetAttributes(attribute.String("question.category", q.Category))

	msg, err := p.Messenger.SendMessageComplex(channelID, api.SendMessageData{
		Embeds:     []discord.Embed{render.QuestionEmbed(q, p.now())},
		Components: render.VoteButtons(),
	})
	if err != nil {
		p.fail(span, "error")
		return nil, fmt.Errorf("send question: %w", err)
	}

	vote, err := repo.CreateVote(ctx, p.DB, msg.ID.String(), q)
	if err != nil {
		p.fail(span, "error")
		return nil, fmt.Errorf("create vote for message %s: %w", msg.ID, err)
	}

	if p.Collectors != nil {
		p.Collectors.Arm(msg.ID)
	}
	observability.DailyPosts.WithLabelValues("posted").Inc()
	log.Info().
		Str("channel_id", channelID.String()).
		Str("message_id", vote.MessageID).
		Str("category", q.Category).
		Msg("daily question posted")
	return vote, nil
}

func (p *DailyPoster) fail(span trace.Span, result string) {
	observability.DailyPosts.WithLabelValues(result).Inc()
	span.SetStatus(codes.Error, result)
}

// Run is Post for triggers: it never returns an error. Failures are logged
// and forwarded to the Notifier; an empty pool is only logged.
func (p *DailyPoster) Run(ctx context.Context, channelID discord.ChannelID) {
	_, err := p.Post(ctx, channelID)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoQuestions):
		log.Warn().Err(err).Str("channel_id", channelID.String()).Msg(render.NoQuestionText)
	default:
		log.Error().Err(err).Str("channel_id", channelID.String()).Msg("daily question failed")
		p.Notifier.Notify(ctx, err)
	}
}
