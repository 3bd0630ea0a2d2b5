package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes returned to callers. The code field is machine-readable;
// callers branch on it rather than on message text.
const (
	CodeUnauthenticated        = "UNAUTHENTICATED"
	CodeProfileMissing         = "PROFILE_MISSING"
	CodePermissionDenied       = "PERMISSION_DENIED"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeStoreUnavailable       = "STORE_UNAVAILABLE"
	CodeNotFound               = "NOT_FOUND"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeConflict               = "CONFLICT"
	CodeInternalError          = "INTERNAL_ERROR"
)

// DenyReason classifies policy rejections.
type DenyReason string

const (
	DenyWrongRole           DenyReason = "WRONG_ROLE"
	DenyNotOwnerOfProperty  DenyReason = "NOT_OWNER_OF_PROPERTY"
	DenyNotAssignedProvider DenyReason = "NOT_ASSIGNED_PROVIDER"
	DenyIllegalStatusSkip   DenyReason = "ILLEGAL_STATUS_SKIP"
	DenyAlreadyTerminal     DenyReason = "ALREADY_TERMINAL"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthenticated(message string) error {
	return NewDomainError(CodeUnauthenticated, message, http.StatusUnauthorized, nil)
}

func NewProfileMissing(actorID string) error {
	return NewDomainError(CodeProfileMissing, "no account profile for identity", http.StatusForbidden,
		map[string]any{"actor_id": actorID})
}

// NewPermissionDenied carries the policy deny reason so the UI can
// render the specific rule rather than a generic error.
func NewPermissionDenied(reason DenyReason, message string) error {
	return NewDomainError(CodePermissionDenied, message, http.StatusForbidden,
		map[string]any{"reason": string(reason)})
}

// NewConcurrentModification signals the conditional write lost a race.
// Transient; the caller may retry from the top.
func NewConcurrentModification(ticketID string) error {
	return NewDomainError(CodeConcurrentModification, "ticket was modified concurrently", http.StatusConflict,
		map[string]any{"ticket_id": ticketID})
}

// NewStoreUnavailable wraps a failed store call. Transient; safe to
// retry with backoff at the caller.
func NewStoreUnavailable(err error) error {
	return &DomainError{
		Code:       CodeStoreUnavailable,
		Message:    "storage backend unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	return ToDomainError(err)
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
