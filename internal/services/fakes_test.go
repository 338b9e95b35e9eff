package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/wyr-bot/internal/domain"
	"github.com/tbourn/wyr-bot/internal/repo"
)

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// dmBase offsets DM channel ids so they never collide with guild channels.
const dmBase = 900000

type sentMessage struct {
	ChannelID discord.ChannelID
	Data      api.SendMessageData
}

type fakeMessenger struct {
	mu sync.Mutex

	nextID    discord.MessageID
	sent      []sentMessage
	deleted   []discord.MessageID
	dmOpened  []discord.UserID
	responses []api.InteractionResponse

	// sendErr applies to sends on sendErrChannel only (0 = every channel).
	sendErr        error
	sendErrChannel discord.ChannelID
	deleteErr      error
	dmErr          error
	respondErr     error
}

func (f *fakeMessenger) SendMessageComplex(ch discord.ChannelID, data api.SendMessageData) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil && (f.sendErrChannel == 0 || f.sendErrChannel == ch) {
		return nil, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{ChannelID: ch, Data: data})
	return &discord.Message{ID: 1000 + f.nextID, ChannelID: ch}, nil
}

func (f *fakeMessenger) DeleteMessage(ch discord.ChannelID, id discord.MessageID, _ api.AuditLogReason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMessenger) CreatePrivateChannel(user discord.UserID) (*discord.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dmErr != nil {
		return nil, f.dmErr
	}
	f.dmOpened = append(f.dmOpened, user)
	return &discord.Channel{ID: discord.ChannelID(dmBase + uint64(user))}, nil
}

func (f *fakeMessenger) RespondInteraction(_ discord.InteractionID, _ string, resp api.InteractionResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.respondErr != nil {
		return f.respondErr
	}
	f.responses = append(f.responses, resp)
	return nil
}

// dms returns messages sent to user's DM channel.
func (f *fakeMessenger) dms(user discord.UserID) []api.SendMessageData {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []api.SendMessageData
	for _, s := range f.sent {
		if s.ChannelID == discord.ChannelID(dmBase+uint64(user)) {
			out = append(out, s.Data)
		}
	}
	return out
}

func (f *fakeMessenger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent) + len(f.deleted) + len(f.dmOpened) + len(f.responses)
}

type fakeSource struct {
	qs    []domain.Question
	calls int
}

func (s *fakeSource) Load(context.Context) []domain.Question {
	s.calls++
	return s.qs
}

type fakePoster struct {
	channels []discord.ChannelID
}

func (p *fakePoster) Run(_ context.Context, ch discord.ChannelID) {
	p.channels = append(p.channels, ch)
}

type fakeRescheduler struct {
	exprs []string
	err   error
}

func (r *fakeRescheduler) Reschedule(expr string) error {
	r.exprs = append(r.exprs, expr)
	return r.err
}
