package membership

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrInvalidInput       = errors.New("membership: invalid input")
	ErrAlreadyInitialized = errors.New("membership: already initialized")

	// Record errors
	ErrMemberNotFound = errors.New("membership: member not found")
	ErrTickOverflow   = errors.New("membership: expiration tick overflows")

	// Store errors
	ErrStoreNotReady = errors.New("membership: store not ready")
	ErrStoreClosed   = errors.New("membership: store is closed")

	// Policy errors. A *PolicyViolation matches ErrPolicyViolation and the
	// sentinel for its reason under errors.Is.
	ErrPolicyViolation  = errors.New("membership: policy violation")
	ErrSenderMismatch   = &PolicyViolation{Reason: ReasonSenderMismatch}
	ErrReceiverMismatch = &PolicyViolation{Reason: ReasonReceiverMismatch}
	ErrAmountMismatch   = &PolicyViolation{Reason: ReasonAmountMismatch}
	ErrMemberMismatch   = &PolicyViolation{Reason: ReasonMemberMismatch}
)

// Reason distinguishes the join precondition that failed.
type Reason string

// Join precondition reasons, in the order they are checked.
const (
	ReasonSenderMismatch   Reason = "sender_mismatch"
	ReasonReceiverMismatch Reason = "receiver_mismatch"
	ReasonAmountMismatch   Reason = "amount_mismatch"
	ReasonMemberMismatch   Reason = "member_mismatch"
)

// PolicyViolation is returned by Join when a payment fact or member claim
// fails a precondition. Nothing is written when it is returned.
type PolicyViolation struct {
	Reason   Reason
	Expected string
	Got      string
}

func (e *PolicyViolation) Error() string {
	if e.Expected == "" && e.Got == "" {
		return fmt.Sprintf("membership: policy violation: %s", e.Reason)
	}
	return fmt.Sprintf("membership: policy violation: %s (expected %q, got %q)", e.Reason, e.Expected, e.Got)
}

// Is matches ErrPolicyViolation and any PolicyViolation with the same reason.
func (e *PolicyViolation) Is(target error) bool {
	if target == ErrPolicyViolation {
		return true
	}
	var pv *PolicyViolation
	if errors.As(target, &pv) {
		return pv.Reason == e.Reason
	}
	return false
}

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("membership: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets callers match validation failures with ErrInvalidInput.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}

// IsPolicyViolation returns true if the error is a join policy violation.
func IsPolicyViolation(err error) bool {
	return errors.Is(err, ErrPolicyViolation)
}

// ReasonOf returns the policy violation reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var pv *PolicyViolation
	if errors.As(err, &pv) {
		return pv.Reason, true
	}
	return "", false
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady)
}
