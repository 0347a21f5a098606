package proto

import (
	"fmt"
	"strings"

	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

// Machine readable rejection codes used by the backend.
const (
	CodeDuplicate     = "duplicate_application"
	CodeTicketInvalid = "ticket_invalid"
	CodeTicketExpired = "ticket_expired"
)

// APIError is a structured business error returned by the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf(`request rejected [%d/%s]: %s`, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf(`request rejected [%d]: %s`, e.Status, e.Message)
}

// StatusCode returns the HTTP status, zero if absent.
func (e *APIError) StatusCode() int {
	return e.Status
}

// IsDuplicate reports a duplicate-submission rejection, the terminal
// "the account already has an accepted application" outcome.
// The structured code is preferred, the message pattern is a fallback only.
func IsDuplicate(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == CodeDuplicate {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "already") && (strings.Contains(msg, "applied") || strings.Contains(msg, "application"))
}

// IsTicketExpired reports a ticket-invalid/expired rejection, the caller
// should refresh the ticket and submit again.
func IsTicketExpired(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case CodeTicketInvalid, CodeTicketExpired:
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "ticket") && (strings.Contains(msg, "expired") || strings.Contains(msg, "invalid"))
}
