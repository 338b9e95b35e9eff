// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate query behind the weak ETag
// of the vote listing endpoint.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/wyr-bot/internal/domain"
)

// VotesStats returns the number of tally rows and the latest UpdatedAt among
// them. Every accepted vote bumps UpdatedAt, so the pair changes whenever the
// listing would. maxUpdatedAt is nil when there are no rows.
func VotesStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Vote{})
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// ORDER BY instead of MAX(): SQLite returns MAX(datetime) as TEXT.
	var row struct {
		UpdatedAt time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.Vote{}).
		Select("updated_at").Order("updated_at DESC").Limit(1).
		Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
