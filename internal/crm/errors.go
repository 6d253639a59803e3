package crm

import "fmt"

// ValidationError marks a request with a missing or invalid field.
// Surfaced as HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// NotFoundError marks an id that does not resolve. Surfaced as HTTP 404.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// TypeMismatchError marks a campaign addressed to the wrong channel
// adapter. Surfaced as HTTP 400.
type TypeMismatchError struct {
	CampaignType string
	Channel      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("campaign type %q does not match channel %q", e.CampaignType, e.Channel)
}

func IsTypeMismatchError(err error) bool {
	_, ok := err.(*TypeMismatchError)
	return ok
}
