package workflow

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidTransition is returned when a state transition is not allowed
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrGuardFailed is returned when a guard condition fails
	ErrGuardFailed = errors.New("guard condition failed")

	// ErrValidation matches every ValidationError
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized matches every AuthorizationError
	ErrUnauthorized = errors.New("not authorized")

	// ErrBusinessRule matches every BusinessRuleViolation
	ErrBusinessRule = errors.New("business rule violated")

	// ErrNotFound matches every NotFoundError
	ErrNotFound = errors.New("not found")
)

// Business rule identifiers
const (
	RulePaymentRequired   = "payment_required"
	RuleTransition        = "transition"
	RuleApprovalPending   = "approval_pending"
	RuleNoPendingApproval = "no_pending_approval"
	RuleWrongDepartment   = "wrong_department"
	RuleDuplicateNumber   = "duplicate_order_number"
	RuleDuplicateEmail    = "duplicate_email"
)

// ValidationError reports a missing or malformed input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthorizationError reports that the actor lacks the permission for an action
type AuthorizationError struct {
	Actor  string
	Action string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s may not %s: %s", e.Actor, e.Action, e.Reason)
}

func (e *AuthorizationError) Is(target error) bool {
	return target == ErrUnauthorized
}

// NewAuthorizationError creates an AuthorizationError
func NewAuthorizationError(actor, action, reason string) error {
	return &AuthorizationError{Actor: actor, Action: action, Reason: reason}
}

// BusinessRuleViolation reports an action the order's current state does not allow.
// PaidAmount and PendingAmount describe the order at the time of the refusal.
type BusinessRuleViolation struct {
	Rule          string
	Message       string
	PaidAmount    decimal.Decimal
	PendingAmount decimal.Decimal
	Err           error
}

func (e *BusinessRuleViolation) Error() string {
	if e.Rule == RulePaymentRequired {
		return fmt.Sprintf("%s (paid %s, pending %s)", e.Message, e.PaidAmount.StringFixed(2), e.PendingAmount.StringFixed(2))
	}
	return e.Message
}

func (e *BusinessRuleViolation) Is(target error) bool {
	return target == ErrBusinessRule
}

func (e *BusinessRuleViolation) Unwrap() error {
	return e.Err
}

// NotFoundError reports a missing order, user or history entry
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}
