// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the singleton
// Schedule row.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/wyr-bot/internal/domain"
)

// GetOrCreateSchedule returns the singleton schedule, inserting it with def
// when the table is empty.
func GetOrCreateSchedule(ctx context.Context, db *gorm.DB, def string) (*domain.Schedule, error) {
	var s domain.Schedule
	err := db.WithContext(ctx).
		Where(domain.Schedule{ID: domain.ScheduleID}).
		Attrs(domain.Schedule{Time: def, UpdatedAt: time.Now().UTC()}).
		FirstOrCreate(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateScheduleTime stores expr on the singleton row, creating the row first
// when needed. Validation is the caller's job.
func UpdateScheduleTime(ctx context.Context, db *gorm.DB, def, expr string) (*domain.Schedule, error) {
	var out *domain.Schedule
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := GetOrCreateSchedule(ctx, tx, def)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := tx.Model(&domain.Schedule{}).
			Where("id = ?", s.ID).
			Updates(map[string]any{"time": expr, "updated_at": now}).Error; err != nil {
			return err
		}
		s.Time, s.UpdatedAt = expr, now
		out = s
		return nil
	})
	return out, err
}
