package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError for transport-layer status mapping.
type ErrorKind string

const (
	KindNotFound ErrorKind = "not_found"
	// KindNotOwner marks ownership-check failures that the public API
	// reports with the same status as a true not-found. The distinct kind
	// keeps the internal model honest.
	KindNotOwner         ErrorKind = "not_owner"
	KindNotOwnerOrBooker ErrorKind = "not_owner_or_booker"
	KindNotAvailable     ErrorKind = "not_available"
	KindDuplicateStatus  ErrorKind = "duplicate_status"
	KindValidation       ErrorKind = "validation"
	KindConflict         ErrorKind = "conflict"
)

// DomainError is a classified business-rule failure.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

// Error returns the error message.
func (e *DomainError) Error() string {
	return e.Message
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s with ID %s does not exist", entity, id),
	}
}

// NewNotOwnerError creates the ownership-check error that is surfaced to
// callers as a not-found condition.
func NewNotOwnerError(message string) *DomainError {
	return &DomainError{Kind: KindNotOwner, Message: message}
}

// NewNotOwnerOrBookerError creates the booking-visibility error.
func NewNotOwnerOrBookerError(userID string) *DomainError {
	return &DomainError{
		Kind:    KindNotOwnerOrBooker,
		Message: fmt.Sprintf("user %s is neither the item owner nor the booking author", userID),
	}
}

// NewNotAvailableError creates an error for booking an unavailable item.
func NewNotAvailableError(itemID string) *DomainError {
	return &DomainError{
		Kind:    KindNotAvailable,
		Message: fmt.Sprintf("item %s is not available for booking", itemID),
	}
}

// NewDuplicateStatusError creates an error for a redundant status decision.
func NewDuplicateStatusError() *DomainError {
	return &DomainError{
		Kind:    KindDuplicateStatus,
		Message: "the received status is already set",
	}
}

// NewValidationError creates an error for invalid input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

// NewConflictError creates an error for a concurrent-modification clash.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// KindOf extracts the ErrorKind from an error chain. The second return
// value is false for unclassified errors.
func KindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
