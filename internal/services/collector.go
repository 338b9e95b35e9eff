// Package services – Collectors
//
// A collector listens for button presses on exactly one posted question for a
// fixed lifetime (24h by default). Each accepted press increments one counter
// and re-renders the message in place. When the lifetime elapses the
// collector is dropped and logs how many presses it handled; it is never
// revived, and the message keeps its last rendering.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/wyr-bot/internal/domain"
	"github.com/tbourn/wyr-bot/internal/observability"
	"github.com/tbourn/wyr-bot/internal/render"
)

// DefaultCollectorTTL is the lifetime of a collector.
const DefaultCollectorTTL = 24 * time.Hour

// ButtonPress is a component interaction on a message.
type ButtonPress struct {
	InteractionID discord.InteractionID
	Token         string
	MessageID     discord.MessageID
	CustomID      string
}

type collector struct {
	deadline time.Time
	timer    *time.Timer
	count    int
}

// Collectors tracks the live collectors, keyed by message.
type Collectors struct {
	Tallies   *TallyService
	Messenger Messenger
	Notifier  *Notifier
	TTL       time.Duration
	Now       func() time.Time

	mu     sync.Mutex
	active map[discord.MessageID]*collector
	closed bool
}

// NewCollectors returns an empty registry. ttl <= 0 selects DefaultCollectorTTL.
func NewCollectors(t *TallyService, m Messenger, n *Notifier, ttl time.Duration) *Collectors {
	if ttl <= 0 {
		ttl = DefaultCollectorTTL
	}
	return &Collectors{
		Tallies:   t,
		Messenger: m,
		Notifier:  n,
		TTL:       ttl,
		Now:       time.Now,
		active:    make(map[discord.MessageID]*collector),
	}
}

// Arm starts collecting presses for messageID. Arming an already armed
// message is a no-op.
func (c *Collectors) Arm(messageID discord.MessageID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.active == nil {
		c.active = make(map[discord.MessageID]*collector)
	}
	if _, ok := c.active[messageID]; ok {
		return
	}
	col := &collector{deadline: c.Now().Add(c.TTL)}
	col.timer = time.AfterFunc(c.TTL, func() { c.expire(messageID) })
	c.active[messageID] = col
	observability.ActiveCollectors.Inc()
	log.Debug().Str("message_id", messageID.String()).Dur("ttl", c.TTL).Msg("vote collector armed")
}

// Active reports how many collectors are accepting presses.
func (c *Collectors) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}

// Armed reports whether messageID currently has a live collector.
func (c *Collectors) Armed(messageID discord.MessageID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.active[messageID]
	return ok
}

func (c *Collectors) expire(messageID discord.MessageID) {
	c.mu.Lock()
	col, ok := c.active[messageID]
	if ok {
		delete(c.active, messageID)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	col.timer.Stop()
	observability.ActiveCollectors.Dec()
	log.Info().
		Str("message_id", messageID.String()).
		Int("interactions", col.count).
		Msgf("Collected %d interactions.", col.count)
}

// accept reports whether press belongs to a live collector and counts it.
func (c *Collectors) accept(press ButtonPress) bool {
	if !domain.Option(press.CustomID).Valid() {
		return false
	}
	c.mu.Lock()
	col, ok := c.active[press.MessageID]
	if ok && !c.Now().Before(col.deadline) {
		ok = false
	}
	if ok {
		col.count++
	}
	c.mu.Unlock()
	if !ok && col != nil {
		// Deadline passed before the timer fired.
		c.expire(press.MessageID)
	}
	return ok
}

// Handle processes one button press. It returns false when the press is not
// for a live collector or is not a recognized option, in which case nothing
// is written or edited. Errors are logged and forwarded to the Notifier.
func (c *Collectors) Handle(ctx context.Context, press ButtonPress) bool {
	if !c.accept(press) {
		return false
	}
	opt := domain.Option(press.CustomID)
	msgID := press.MessageID.String()

	v, err := c.Tallies.Record(ctx, msgID, opt)
	if errors.Is(err, ErrVoteNotFound) {
		log.Error().Str("message_id", msgID).Msg("vote record not found")
		return true
	}
	if err != nil {
		log.Error().Err(err).Str("message_id", msgID).Str("option", string(opt)).Msg("failed to record vote")
		c.Notifier.Notify(ctx, err)
		return true
	}
	observability.VotesAccepted.WithLabelValues(string(opt)).Inc()

	embeds := []discord.Embed{render.ResultsEmbed(*v, c.Now())}
	err = c.Messenger.RespondInteraction(press.InteractionID, press.Token, api.InteractionResponse{
		Type: api.UpdateMessage,
		Data: &api.InteractionResponseData{Embeds: &embeds},
	})
	if err != nil {
		log.Error().Err(err).Str("message_id", msgID).Msg("failed to update vote message")
		c.Notifier.Notify(ctx, err)
	}
	return true
}

// Close stops every collector as if its lifetime had elapsed.
func (c *Collectors) Close() {
	c.mu.Lock()
	c.closed = true
	ids := make([]discord.MessageID, 0, len(c.active))
	for id := range c.active {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	for _, id := range ids {
		c.expire(id)
	}
}
