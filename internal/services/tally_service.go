// Package services – TallyService
//
// TallyService owns the vote tallies: one row per posted question, two
// counters that only ever grow by one. Increments are a single atomic UPDATE
// in the repository, so concurrent clicks on the same message are never lost.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/wyr-bot/internal/domain"
	"github.com/tbourn/wyr-bot/internal/repo"
	"github.com/tbourn/wyr-bot/internal/utils"
)

// TallyService reads and updates vote tallies.
type TallyService struct {
	DB *gorm.DB
}

// Get returns the tally of a posted message, or ErrVoteNotFound.
func (s *TallyService) Get(ctx context.Context, messageID string) (*domain.Vote, error) {
	v, err := repo.GetVoteByMessageID(ctx, s.DB, messageID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrVoteNotFound
	}
	return v, err
}

// Record adds one vote for opt on messageID and returns the updated tally.
func (s *TallyService) Record(ctx context.Context, messageID string, opt domain.Option) (*domain.Vote, error) {
	tr := otel.Tracer("services/TallyService")
	ctx, span := tr.Start(ctx, "Record",
		trace.WithAttributes(
			attribute.String("message.id", messageID),
			attribute.String("vote.option", string(opt)),
		),
	)
	defer span.End()

	if !opt.Valid() {
		return nil, ErrUnknownOption
	}
	v, err := repo.IncrementVote(ctx, s.DB, messageID, opt)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrVoteNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return v, nil
}

// ListPage returns a page of tallies, newest first, and the total count.
// page and pageSize are normalized with utils.NormalizePage.
func (s *TallyService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Vote, int64, error) {
	page, pageSize = utils.NormalizePage(page, pageSize)
	total, err := repo.CountVotes(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Vote{}, 0, nil
	}
	items, err := repo.ListVotesPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Stats returns the number of tallies and the time of the latest change,
// used to derive listing ETags.
func (s *TallyService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return repo.VotesStats(ctx, s.DB)
}

// Prune deletes tallies older than retention and returns how many were
// removed. A non-positive retention deletes nothing.
func (s *TallyService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return repo.PruneVotes(ctx, s.DB, time.Now().Add(-retention))
}
