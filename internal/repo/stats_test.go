package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/wyr-bot/internal/domain"
)

func TestVotesStats_NoTable(t *testing.T) {
	db := newTestDB(t, false)
	if _, _, err := VotesStats(context.Background(), db); err == nil {
		t.Fatalf("expected error due to missing votes table")
	}
}

func TestVotesStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, true)
	count, maxAt, err := VotesStats(context.Background(), db)
	if err != nil {
		t.Fatalf("VotesStats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestVotesStats_TracksLatestVote(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()

	t1 := time.Date(2021, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2021, 3, 4, 10, 30, 0, 0, time.UTC)
	for i, ts := range []time.Time{t2, t1} {
		v := &domain.Vote{ID: string(rune('a' + i)), MessageID: string(rune('a' + i)), Question: "q", Category: "c",
			CreatedAt: ts, UpdatedAt: ts}
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	count, maxAt, err := VotesStats(ctx, db)
	if err != nil {
		t.Fatalf("VotesStats: %v", err)
	}
	if count != 2 || maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("got (%d, %v); want (2, %v)", count, maxAt, t2)
	}

	// A vote moves the timestamp forward.
	if _, err := IncrementVote(ctx, db, "b", domain.OptionYes); err != nil {
		t.Fatalf("IncrementVote: %v", err)
	}
	_, maxAt2, err := VotesStats(ctx, db)
	if err != nil {
		t.Fatalf("VotesStats: %v", err)
	}
	if !maxAt2.After(t2) {
		t.Fatalf("max updated_at did not advance: %v", maxAt2)
	}
}
