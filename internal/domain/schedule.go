package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultScheduleTime fires the daily post at 08:00.
const DefaultScheduleTime = "0 8 * * *"

// ErrInvalidSchedule is returned when a stored schedule expression does not
// have the restricted "0 <hour> * * *" shape.
var ErrInvalidSchedule = errors.New("invalid cron time format")

var scheduleRe = regexp.MustCompile(`^0 \d+ \* \* \*$`)

// ValidateSchedule checks expr against the restricted daily pattern.
func ValidateSchedule(expr string) error {
	if !scheduleRe.MatchString(expr) {
		return fmt.Errorf("%w: %q", ErrInvalidSchedule, expr)
	}
	return nil
}

// ScheduleForHour builds the daily expression for hour (0-23).
func ScheduleForHour(hour int) string {
	return fmt.Sprintf("0 %d * * *", hour)
}

// ParseHour parses a user supplied hour token. Only plain integers in [0,23]
// are accepted.
func ParseHour(token string) (int, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false
	}
	h, err := strconv.Atoi(token)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

// ScheduleHour extracts the hour from a valid daily expression.
func ScheduleHour(expr string) (int, error) {
	if err := ValidateSchedule(expr); err != nil {
		return 0, err
	}
	h, err := strconv.Atoi(strings.Fields(expr)[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSchedule, expr)
	}
	return h, nil
}
