package domain

import (
	"fmt"
	"strings"
)

const (
	MinOptions = 2
	MaxOptions = 8
)

// ValidateQuestion checks the record invariants shared by create and update.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(q.Options))
	for i, opt := range q.Options {
		trimmed := strings.TrimSpace(opt)
		if trimmed == "" {
			return fmt.Errorf("%w: option %d is empty", ErrInvalidInput, i+1)
		}
		seen[trimmed] = struct{}{}
	}
	if len(seen) < len(q.Options) {
		return fmt.Errorf("%w: options must be unique", ErrInvalidInput)
	}
	if len(q.Options) < MinOptions || len(q.Options) > MaxOptions {
		return fmt.Errorf("%w: expected %d to %d options, got %d", ErrInvalidInput, MinOptions, MaxOptions, len(q.Options))
	}

	if !q.HasOption(q.CorrectAnswer) {
		return fmt.Errorf("%w: correct answer %q is not one of the options", ErrInvalidInput, q.CorrectAnswer)
	}
	return nil
}
