package todo

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/planfold/planfold/internal/domain"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 500
)

// ValidateTitle checks that the title is non-empty after trimming and does
// not exceed 200 characters.
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

// ValidateDescription checks the optional description length. The empty
// string is allowed.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return &domain.ValidationError{
			Field: "description", Value: description,
			Message: fmt.Sprintf("cannot exceed %d characters", maxDescriptionLen),
		}
	}
	return nil
}

// ValidateProjectID checks that the project id is a non-empty string.
func ValidateProjectID(projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return &domain.ValidationError{Field: "projectId", Value: projectID, Message: "is required"}
	}
	return nil
}

// ValidateNew composes all creation-time checks. Completion is never
// user-supplied at creation; the factory assigns false.
func ValidateNew(in New) error {
	if err := ValidateTitle(in.Title); err != nil {
		return err
	}
	if err := ValidateDescription(in.Description); err != nil {
		return err
	}
	return ValidateProjectID(in.ProjectID)
}

// ValidateUpdate checks only the fields present in the partial update.
// The completed flag needs no check beyond its type: strict-boolean
// enforcement happens at the JSON boundary, where non-boolean values fail
// to decode into *bool.
func ValidateUpdate(u Update) error {
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
	return nil
}
