// Package services defines the business logic of the ordering bot: order
// intake, admin notifications, command dispatch and bot configuration
// reconciliation. This file centralizes service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"strings"
)

var (
	// ErrOrderNotFound indicates that the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidStatus is returned for a status value outside the known set.
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrInvalidTransition is returned when an order cannot move from its
	// current status to the requested one.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrNoWebhookURL is returned when a webhook is requested without a URL.
	ErrNoWebhookURL = errors.New("webhook url is required")
)

// FieldError describes one invalid field of a submission. Field uses the
// JSON path of the payload, e.g. "items[0].quantity".
type FieldError struct {
	Field   string `json:"field"   example:"items[0].quantity"`
	Message string `json:"message" example:"must be greater than 0"`
}

// ValidationError reports a user-correctable problem with an order payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the offending fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
