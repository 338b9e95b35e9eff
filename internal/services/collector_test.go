package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"gorm.io/gorm"

	"github.com/tbourn/wyr-bot/internal/domain"
	"github.com/tbourn/wyr-bot/internal/repo"
)

func seedVote(t *testing.T, db *gorm.DB, msgID string, right, left int) {
	t.Helper()
	v := &domain.Vote{ID: "v-" + msgID, MessageID: msgID, Question: "Chaud ou froid ?", Category: "Situation",
		Right: right, Left: left, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed vote: %v", err)
	}
}

func newCollectors(t *testing.T) (*Collectors, *fakeMessenger, *gorm.DB) {
	t.Helper()
	db := newSvcDB(t)
	fm := &fakeMessenger{}
	c := NewCollectors(&TallyService{DB: db}, fm, nil, time.Hour)
	t.Cleanup(c.Close)
	return c, fm, db
}

func TestCollector_AcceptedPressIncrementsExactlyOne(t *testing.T) {
	c, fm, db := newCollectors(t)
	seedVote(t, db, "100", 2, 3)
	c.Arm(100)

	if !c.Handle(context.Background(), ButtonPress{InteractionID: 1, Token: "tok", MessageID: 100, CustomID: "yes"}) {
		t.Fatalf("press not accepted")
	}

	got, err := repo.GetVoteByMessageID(context.Background(), db, "100")
	if err != nil {
		t.Fatalf("GetVoteByMessageID: %v", err)
	}
	if got.Right != 3 || got.Left != 3 {
		t.Fatalf("counters = (%d,%d); want (3,3)", got.Right, got.Left)
	}
	if got.ID != "v-100" || got.Question != "Chaud ou froid ?" || got.Category != "Situation" {
		t.Fatalf("other fields changed: %+v", got)
	}

	if len(fm.responses) != 1 {
		t.Fatalf("responses = %d; want 1", len(fm.responses))
	}
	resp := fm.responses[0]
	if resp.Type != api.UpdateMessage || resp.Data == nil || resp.Data.Embeds == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	desc := (*resp.Data.Embeds)[0].Description
	if !strings.Contains(desc, " 3 vote(s) *(50.0%)* ") {
		t.Fatalf("results not rendered: %q", desc)
	}
}

func TestCollector_IgnoresForeignMessagesAndUnknownOptions(t *testing.T) {
	c, fm, db := newCollectors(t)
	seedVote(t, db, "100", 0, 0)
	seedVote(t, db, "200", 0, 0)
	c.Arm(100)

	cases := []ButtonPress{
		{MessageID: 200, CustomID: "yes"},   // not armed
		{MessageID: 100, CustomID: "maybe"}, // not an option
		{MessageID: 100, CustomID: ""},
	}
	for _, p := range cases {
		if c.Handle(context.Background(), p) {
			t.Fatalf("press %+v should be ignored", p)
		}
	}
	if fm.calls() != 0 {
		t.Fatalf("ignored presses must not touch the platform")
	}
	for _, id := range []string{"100", "200"} {
		v, _ := repo.GetVoteByMessageID(context.Background(), db, id)
		if v.Total() != 0 {
			t.Fatalf("vote %s changed: %+v", id, v)
		}
	}
}

func TestCollector_ExpiredAfterDeadline(t *testing.T) {
	c, fm, db := newCollectors(t)
	seedVote(t, db, "100", 0, 0)

	now := time.Now()
	c.Now = func() time.Time { return now }
	c.Arm(100)

	now = now.Add(time.Hour)
	if c.Handle(context.Background(), ButtonPress{MessageID: 100, CustomID: "no"}) {
		t.Fatalf("press after deadline accepted")
	}
	if c.Armed(100) || c.Active() != 0 {
		t.Fatalf("collector still armed after deadline")
	}
	if fm.calls() != 0 {
		t.Fatalf("expired collector touched the platform")
	}
}

func TestCollector_TimerExpiry(t *testing.T) {
	db := newSvcDB(t)
	c := NewCollectors(&TallyService{DB: db}, &fakeMessenger{}, nil, 20*time.Millisecond)
	c.Arm(1)
	c.Arm(1) // idempotent

	deadline := time.Now().Add(2 * time.Second)
	for c.Active() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("collector did not expire")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCollector_MissingVoteIsSilent(t *testing.T) {
	c, fm, _ := newCollectors(t)
	c.Arm(300)

	if !c.Handle(context.Background(), ButtonPress{MessageID: 300, CustomID: "no"}) {
		t.Fatalf("press should be accepted by the collector")
	}
	if len(fm.responses) != 0 {
		t.Fatalf("no edit expected when the vote is missing")
	}
}

func TestCollector_RespondFailureNotifies(t *testing.T) {
	c, fm, db := newCollectors(t)
	seedVote(t, db, "100", 0, 0)
	fm.respondErr = errors.New("unknown interaction")
	c.Notifier = NewNotifier(fm, 77, 100, 10)
	c.Arm(100)

	c.Handle(context.Background(), ButtonPress{MessageID: 100, CustomID: "no"})

	if dms := fm.dms(77); len(dms) != 1 || !strings.Contains(dms[0].Content, "unknown interaction") {
		t.Fatalf("expected error DM, got %+v", dms)
	}
	v, _ := repo.GetVoteByMessageID(context.Background(), db, "100")
	if v.Left != 1 {
		t.Fatalf("vote should still be stored, got %+v", v)
	}
}

func TestCollector_CloseStopsEverything(t *testing.T) {
	c, _, _ := newCollectors(t)
	c.Arm(1)
	c.Arm(2)
	c.Close()
	if c.Active() != 0 {
		t.Fatalf("Active = %d after Close", c.Active())
	}
	c.Arm(3)
	if c.Armed(discord.MessageID(3)) {
		t.Fatalf("Arm after Close must be a no-op")
	}
}
