// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them, not on
// messages. Generic codes mirror HTTP status semantics; domain codes cover
// order intake and bot setup failures the status alone cannot convey.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "validation_failed",
//	  "message": "validation failed: items[0].quantity must be greater than 0",
//	  "fields": [{"field": "items[0].quantity", "message": "must be greater than 0"}]
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeValidation        = "validation_failed"
	ErrCodeMalformedUpdate   = "malformed_update"
	ErrCodeInvalidStatus     = "invalid_status"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeCreateFailed      = "create_failed"
	ErrCodeListFailed        = "list_failed"
	ErrCodeBotNotConfigured  = "bot_not_configured"
	ErrCodeBotAPIFailed      = "bot_api_failed"
	ErrCodeMenuUnavailable   = "menu_unavailable"
)
