package project

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/planfold/planfold/internal/domain"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 1000
	minProgress       = 0
	maxProgress       = 100
)

// deadlineLayouts are the accepted textual deadline formats, tried in order.
var deadlineLayouts = []string{time.RFC3339, "2006-01-02"}

// ValidateTitle checks that the title is non-empty after trimming and does
// not exceed 100 characters.
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return &domain.ValidationError{Field: "title", Value: title, Message: "is required"}
	}
	if utf8.RuneCountInString(trimmed) > maxTitleLen {
		return &domain.ValidationError{
			Field: "title", Value: title,
			Message: fmt.Sprintf("cannot exceed %d characters", maxTitleLen),
		}
	}
	return nil
}

// ValidateDescription checks the optional description length.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return &domain.ValidationError{
			Field: "description", Value: description,
			Message: fmt.Sprintf("cannot exceed %d characters", maxDescriptionLen),
		}
	}
	return nil
}

// ValidatePriority checks that a non-empty priority is one of the defined
// levels. The empty value means "no priority" and passes.
func ValidatePriority(priority Priority) error {
	if priority == "" {
		return nil
	}
	if !priority.IsValid() {
		return &domain.ValidationError{
			Field: "priority", Value: string(priority),
			Message: "must be one of: low, medium, high, urgent",
		}
	}
	return nil
}

// ValidateDeadline checks that a set deadline is not strictly before now.
// A nil deadline passes.
func ValidateDeadline(deadline *time.Time, now time.Time) error {
	if deadline == nil {
		return nil
	}
	if deadline.Before(now) {
		return &domain.ValidationError{
			Field: "deadline", Value: deadline.Format(time.RFC3339),
			Message: "cannot be in the past",
		}
	}
	return nil
}

// ParseDeadline parses a textual deadline (RFC 3339 or YYYY-MM-DD).
// Returns a validation error on any unparseable input.
func ParseDeadline(raw string) (time.Time, error) {
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &domain.ValidationError{
		Field: "deadline", Value: raw, Message: "must be a valid date",
	}
}

// ValidateProgress checks the 0-100 range. Only applied on updates; creation
// always starts at 0.
func ValidateProgress(progress int) error {
	if progress < minProgress || progress > maxProgress {
		return &domain.ValidationError{
			Field: "progress", Value: progress,
			Message: fmt.Sprintf("must be between %d and %d", minProgress, maxProgress),
		}
	}
	return nil
}

// ValidateOwnerID checks that the owner id is a non-empty string.
func ValidateOwnerID(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return &domain.ValidationError{Field: "ownerId", Value: ownerID, Message: "is required"}
	}
	return nil
}

// ValidatePosition checks the shape of an optional position. Negative
// coordinates are permitted. The radius check applies whenever the field is
// present, including an explicit 0.
func ValidatePosition(pos *Position) error {
	if pos == nil {
		return nil
	}
	if !isFinite(pos.X) || !isFinite(pos.Y) {
		return &domain.ValidationError{
			Field: "position", Value: pos, Message: "x and y must be finite numbers",
		}
	}
	if pos.Radius != nil && (!isFinite(*pos.Radius) || *pos.Radius < 0) {
		return &domain.ValidationError{
			Field: "position", Value: pos, Message: "radius must be a non-negative number",
		}
	}
	return nil
}

// isFinite reports whether f is neither NaN nor an infinity.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ValidateNew composes all creation-time checks. Progress is never
// user-supplied at creation; the factory assigns 0.
func ValidateNew(in New, now time.Time) error {
	if err := ValidateTitle(in.Title); err != nil {
		return err
	}
	if err := ValidateDescription(in.Description); err != nil {
		return err
	}
	if err := ValidatePriority(in.Priority); err != nil {
		return err
	}
	if err := ValidateDeadline(in.Deadline, now); err != nil {
		return err
	}
	if err := ValidateOwnerID(in.OwnerID); err != nil {
		return err
	}
	return ValidatePosition(in.Position)
}

// ValidateUpdate checks only the fields present in the partial update.
// Absent (nil) fields are skipped, which is what enables true partial
// updates.
func ValidateUpdate(u Update, now time.Time) error {
	if u.Title != nil {
		if err := ValidateTitle(*u.Title); err != nil {
			return err
		}
	}
	if u.Description != nil {
		if err := ValidateDescription(*u.Description); err != nil {
			return err
		}
	}
	if u.Priority != nil {
		if err := ValidatePriority(*u.Priority); err != nil {
			return err
		}
	}
	if u.Deadline != nil {
		if err := ValidateDeadline(u.Deadline, now); err != nil {
			return err
		}
	}
	if u.Progress != nil {
		if err := ValidateProgress(*u.Progress); err != nil {
			return err
		}
	}
	if u.Position != nil {
		if err := ValidatePosition(u.Position); err != nil {
			return err
		}
	}
	return nil
}
