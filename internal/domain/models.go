// Package domain defines the persistence models for vote tallies and the
// daily schedule, plus the ephemeral Question produced by the scraper. Vote
// and Schedule are mapped with GORM and form the core data layer of the bot.
package domain

import (
	"time"
)

// Question is a scraped "would you rather" prompt tagged with its category.
// It is never persisted on its own; the poster copies it into a Vote.
type Question struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Vote is the tally attached to one posted question message.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - MessageID: platform identifier of the posted message; unique.
//   - Question / Category: copied from the selected Question.
//   - Right: votes for the first button ("yes").
//   - Left: votes for the second button ("no").
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//
// Counters start at zero and only ever grow by one per accepted interaction.
type Vote struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	MessageID string    `json:"message_id" gorm:"type:varchar(32);not null;uniqueIndex:ux_votes_message"`
	Question  string    `json:"question"   gorm:"type:text;not null"`
	Category  string    `json:"category"   gorm:"type:varchar(64);not null;index"`
	Right     int       `json:"right"      gorm:"column:right_votes;not null;default:0;check:right_votes >= 0"`
	Left      int       `json:"left"       gorm:"column:left_votes;not null;default:0;check:left_votes >= 0"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Vote.
func (Vote) TableName() string { return "votes" }

// Total returns the number of votes cast on both options.
func (v Vote) Total() int { return v.Left + v.Right }

// Option identifies one of the two buttons attached to a question message.
// The value doubles as the component custom ID.
type Option string

const (
	// OptionYes is the first button; it counts into Vote.Right.
	OptionYes Option = "yes"
	// OptionNo is the second button; it counts into Vote.Left.
	OptionNo Option = "no"
)

// Valid reports whether o is one of the two known options.
func (o Option) Valid() bool { return o == OptionYes || o == OptionNo }

// Column returns the counter column incremented when o is selected.
func (o Option) Column() string {
	switch o {
	case OptionYes:
		return "right_votes"
	case OptionNo:
		return "left_votes"
	default:
		return ""
	}
}

// Schedule is the singleton row holding the cron expression of the daily post.
// The row always has ID 1.
type Schedule struct {
	ID        uint      `json:"-"          gorm:"primaryKey"`
	Time      string    `json:"time"       gorm:"type:varchar(32);not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Schedule.
func (Schedule) TableName() string { return "schedules" }

// ScheduleID is the primary key of the singleton Schedule row.
const ScheduleID uint = 1
