package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/utils/ws"

	"github.com/tbourn/wyr-bot/internal/services"
)

type fakePlatform struct {
	channels map[discord.ChannelID]*discord.Channel
	gateway  []ws.Event
	gwErr    error
	deleted  []discord.MessageID
}

func (f *fakePlatform) SendMessageComplex(ch discord.ChannelID, _ api.SendMessageData) (*discord.Message, error) {
	return &discord.Message{ID: 1, ChannelID: ch}, nil
}

func (f *fakePlatform) DeleteMessage(_ discord.ChannelID, id discord.MessageID, _ api.AuditLogReason) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePlatform) CreatePrivateChannel(u discord.UserID) (*discord.Channel, error) {
	return &discord.Channel{ID: discord.ChannelID(u)}, nil
}

func (f *fakePlatform) RespondInteraction(discord.InteractionID, string, api.InteractionResponse) error {
	return nil
}

func (f *fakePlatform) Channel(id discord.ChannelID) (*discord.Channel, error) {
	if ch, ok := f.channels[id]; ok {
		return ch, nil
	}
	return nil, errors.New("unknown channel")
}

func (f *fakePlatform) SendGateway(_ context.Context, cmd ws.Event) error {
	f.gateway = append(f.gateway, cmd)
	return f.gwErr
}

type recordingPoster struct{ channels []discord.ChannelID }

func (p *recordingPoster) Run(_ context.Context, ch discord.ChannelID) {
	p.channels = append(p.channels, ch)
}

func TestFireDaily_ResolvableChannel(t *testing.T) {
	fp := &fakePlatform{channels: map[discord.ChannelID]*discord.Channel{10: {ID: 10}}}
	rp := &recordingPoster{}
	b := &Bot{Platform: fp, Poster: rp, DailyChannel: 10}

	b.FireDaily(context.Background())
	if len(rp.channels) != 1 || rp.channels[0] != 10 {
		t.Fatalf("poster calls = %v", rp.channels)
	}
}

func TestFireDaily_UnresolvableChannelIsSkipped(t *testing.T) {
	rp := &recordingPoster{}
	b := &Bot{Platform: &fakePlatform{}, Poster: rp, DailyChannel: 10}

	b.FireDaily(context.Background())
	if len(rp.channels) != 0 {
		t.Fatalf("poster must not run, got %v", rp.channels)
	}
}

func TestOnReady_SetsPresenceAndBotID(t *testing.T) {
	fp := &fakePlatform{}
	cmds := &services.CommandHandler{Messenger: fp}
	b := &Bot{Platform: fp, Commands: cmds, Status: "Tu préfères ?"}

	b.onReady(&gateway.ReadyEvent{User: discord.User{ID: 5, Username: "wyr"}})

	if len(fp.gateway) != 1 {
		t.Fatalf("gateway commands = %d; want 1", len(fp.gateway))
	}
	p, ok := fp.gateway[0].(*gateway.UpdatePresenceCommand)
	if !ok || len(p.Activities) != 1 || p.Activities[0].Name != "Tu préfères ?" ||
		p.Activities[0].Type != discord.WatchingActivity || p.Status != discord.OnlineStatus {
		t.Fatalf("unexpected presence: %#v", fp.gateway[0])
	}
}

func TestOnReady_PresenceFailureDoesNotPanic(t *testing.T) {
	fp := &fakePlatform{gwErr: errors.New("closed")}
	b := &Bot{Platform: fp, Status: "x"}
	b.onReady(&gateway.ReadyEvent{User: discord.User{ID: 5}})
}

func TestOnMessage_RoutesToCommandHandler(t *testing.T) {
	fp := &fakePlatform{}
	rp := &recordingPoster{}
	b := &Bot{
		Platform: fp,
		Commands: &services.CommandHandler{Messenger: fp, Poster: rp, Authorized: 42},
	}

	b.onMessage(&gateway.MessageCreateEvent{Message: discord.Message{
		ID: 3, ChannelID: 8, Author: discord.User{ID: 42}, Content: "start",
	}})
	b.onMessage(&gateway.MessageCreateEvent{Message: discord.Message{
		ID: 4, ChannelID: 8, Author: discord.User{ID: 1}, Content: "start",
	}})

	if len(rp.channels) != 1 || rp.channels[0] != 8 {
		t.Fatalf("poster calls = %v", rp.channels)
	}
	if len(fp.deleted) != 1 || fp.deleted[0] != 3 {
		t.Fatalf("deleted = %v", fp.deleted)
	}
}

func TestOnInteraction_IgnoresNonButtonsAndRecoversPanics(t *testing.T) {
	fp := &fakePlatform{}
	cols := services.NewCollectors(nil, fp, nil, 0)
	defer cols.Close()
	b := &Bot{Platform: fp, Collectors: cols}

	// Not a button: ignored before any lookup.
	b.onInteraction(&gateway.InteractionCreateEvent{InteractionEvent: discord.InteractionEvent{
		ID: 1, Message: &discord.Message{ID: 9}, Data: &discord.PingInteraction{},
	}})
	// Button without message: ignored.
	b.onInteraction(&gateway.InteractionCreateEvent{InteractionEvent: discord.InteractionEvent{
		ID: 2, Data: &discord.ButtonInteraction{CustomID: "yes"},
	}})

	// Armed message with a nil tally service panics inside Handle; the guard
	// must swallow it.
	cols.Arm(9)
	b.onInteraction(&gateway.InteractionCreateEvent{InteractionEvent: discord.InteractionEvent{
		ID: 3, Token: "t", Message: &discord.Message{ID: 9}, Data: &discord.ButtonInteraction{CustomID: "yes"},
	}})
}
