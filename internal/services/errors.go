// Package services holds the bot's use-cases: posting the daily question,
// collecting votes, handling the authorized user's commands and reporting
// unexpected errors. This file centralizes the service-level error values so
// callers can match them with errors.Is.
package services

import "errors"

var (
	// ErrNoQuestions is returned by Post when the question pool is empty. The
	// "no question found" notice has already been sent when it is returned.
	ErrNoQuestions = errors.New("no question found")

	// ErrVoteNotFound indicates that no tally exists for a message.
	ErrVoteNotFound = errors.New("vote not found")

	// ErrUnknownOption is returned for a button custom ID that is neither
	// "yes" nor "no".
	ErrUnknownOption = errors.New("unknown vote option")

	// ErrInvalidHour is returned when a settime argument is not an integer in
	// [0,23].
	ErrInvalidHour = errors.New("hour must be an integer between 0 and 23")
)
