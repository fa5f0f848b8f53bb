// Package businessflow contains the core dialer logic: call windows, queue ordering, call outcomes and call blocks
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Contact-related errors
	ErrContactNotFound             = errors.New("contact not found")
	ErrContactNameRequired         = errors.New("contact name is required")
	ErrContactPhoneRequired        = errors.New("contact phone is required")
	ErrContactOrganizationRequired = errors.New("contact organization is required")
	ErrContactTitleRequired        = errors.New("contact title is required")
	ErrContactIDInvalid            = errors.New("contact ID is invalid")
	ErrEmptyPatch                  = errors.New("at least one field must be provided for update")

	// Call ledger errors
	ErrInvalidOutcome = errors.New("invalid call outcome")
	ErrQueueEmpty     = errors.New("queue is empty")

	// Ordering errors
	ErrReorderWhileGrouped = errors.New("manual reorder is only available when the queue is not grouped")
	ErrInvalidMoveIndex    = errors.New("move index is out of range")
	ErrInvalidSort         = errors.New("invalid sort order")
	ErrInvalidGrouping     = errors.New("invalid grouping")

	// Call block errors
	ErrBlockNotRunning = errors.New("call block is not running")

	// Store errors
	ErrStoreNotReady = errors.New("contact snapshot not loaded yet")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsContactNotFound(err error) bool {
	return errors.Is(err, ErrContactNotFound)
}

func IsContactIDInvalid(err error) bool {
	return errors.Is(err, ErrContactIDInvalid)
}

func IsEmptyPatch(err error) bool {
	return errors.Is(err, ErrEmptyPatch)
}

func IsInvalidOutcome(err error) bool {
	return errors.Is(err, ErrInvalidOutcome)
}

func IsQueueEmpty(err error) bool {
	return errors.Is(err, ErrQueueEmpty)
}

func IsReorderWhileGrouped(err error) bool {
	return errors.Is(err, ErrReorderWhileGrouped)
}

func IsInvalidMoveIndex(err error) bool {
	return errors.Is(err, ErrInvalidMoveIndex)
}

func IsBlockNotRunning(err error) bool {
	return errors.Is(err, ErrBlockNotRunning)
}

func IsStoreNotReady(err error) bool {
	return errors.Is(err, ErrStoreNotReady)
}

// IsValidationError reports whether err was raised before any write because the input was invalid
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrContactNameRequired,
		ErrContactPhoneRequired,
		ErrContactOrganizationRequired,
		ErrContactTitleRequired,
		ErrContactIDInvalid,
		ErrEmptyPatch,
		ErrInvalidOutcome,
		ErrInvalidSort,
		ErrInvalidGrouping,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
