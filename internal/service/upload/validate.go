// internal/service/upload/validate.go

package upload

import (
	"fmt"
	"unicode/utf8"

	"mempin/internal/domain/geo"
	"mempin/internal/domain/pin"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 500
)

// ValidationError reports the first rule a draft violates. It is raised
// before any network activity and is always recoverable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// validateDraft checks a snapshot against the submission rules and returns
// the first violation found.
func validateDraft(d pin.Draft) error {
	if d.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(d.Title) > maxTitleLength {
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d characters", maxTitleLength)}
	}
	if d.Description == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(d.Description) > maxDescriptionLength {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at most %d characters", maxDescriptionLength)}
	}
	if d.Coordinate == nil {
		return &ValidationError{Field: "coordinate", Reason: "location must be set"}
	}
	if err := geo.ValidateRange(d.Coordinate.Lat, d.Coordinate.Lng); err != nil {
		return &ValidationError{Field: "coordinate", Reason: err.Error()}
	}
	if len(d.Visibility) == 0 {
		return &ValidationError{Field: "visibility", Reason: "at least one option must be selected"}
	}
	return nil
}
