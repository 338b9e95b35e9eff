package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/wyr-bot/internal/domain"
	"github.com/tbourn/wyr-bot/internal/repo"
)

// ScheduleService manages the singleton daily schedule.
type ScheduleService struct {
	DB *gorm.DB
	// Default is stored when no schedule exists yet.
	Default string
}

func (s *ScheduleService) def() string {
	if s.Default == "" {
		return domain.DefaultScheduleTime
	}
	return s.Default
}

// Current returns the stored schedule, creating the default one if absent.
// The expression is returned as stored; validation is up to the caller.
func (s *ScheduleService) Current(ctx context.Context) (*domain.Schedule, error) {
	return repo.GetOrCreateSchedule(ctx, s.DB, s.def())
}

// SetHour parses token as an hour in [0,23] and stores "0 <hour> * * *".
// Nothing is written when the token is invalid.
func (s *ScheduleService) SetHour(ctx context.Context, token string) (*domain.Schedule, int, error) {
	hour, ok := domain.ParseHour(token)
	if !ok {
		return nil, 0, ErrInvalidHour
	}
	sch, err := repo.UpdateScheduleTime(ctx, s.DB, s.def(), domain.ScheduleForHour(hour))
	if err != nil {
		return nil, 0, err
	}
	return sch, hour, nil
}
