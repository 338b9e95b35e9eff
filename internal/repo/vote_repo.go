// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Vote model.
//
// Error semantics:
//   - Lookups by message id return ErrNotFound when no row matches.
//   - A second vote row for the same message id violates the unique index and
//     the raw DB error is propagated.
//
// IncrementVote performs the counter update as a single
// "SET col = col + 1" statement, so concurrent clicks on the same message
// never overwrite each other.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/wyr-bot/internal/domain"
)

// CreateVote inserts the tally row for a freshly posted message with both
// counters at zero.
func CreateVote(ctx context.Context, db *gorm.DB, messageID string, q domain.Question) (*domain.Vote, error) {
	now := time.Now().UTC()
	v := &domain.Vote{
		ID:        uuid.NewString(),
		MessageID: messageID,
		Question:  q.Text,
		Category:  q.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// GetVoteByMessageID fetches the tally row of a posted message.
func GetVoteByMessageID(ctx context.Context, db *gorm.DB, messageID string) (*domain.Vote, error) {
	var v domain.Vote
	err := db.WithContext(ctx).Where("message_id = ?", messageID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// IncrementVote adds exactly one vote to the counter selected by opt and
// returns the row as stored after the update.
func IncrementVote(ctx context.Context, db *gorm.DB, messageID string, opt domain.Option) (*domain.Vote, error) {
	col := opt.Column()
	if col == "" {
		return nil, fmt.Errorf("unknown vote option %q", opt)
	}
	res := db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("message_id = ?", messageID).
		Updates(map[string]any{
			col:          gorm.Expr(col+" + ?", 1),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return GetVoteByMessageID(ctx, db, messageID)
}

// CountVotes returns the number of tally rows.
func CountVotes(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Vote{}).Count(&total).Error
	return total, err
}

// ListVotesPage returns tally rows newest first (CreatedAt DESC, ID DESC).
func ListVotesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Vote, error) {
	var out []domain.Vote
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// PruneVotes hard-deletes tally rows created before cutoff and returns how
// many rows were removed.
func PruneVotes(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&domain.Vote{})
	return res.RowsAffected, res.Error
}
