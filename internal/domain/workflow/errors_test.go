package workflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy_IsAndAs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"validation", NewValidationError("remarks", "required"), ErrValidation},
		{"authorization", NewAuthorizationError("Dana", "forward", "design may only forward to prepress"), ErrUnauthorized},
		{"business rule", &BusinessRuleViolation{Rule: RulePaymentRequired, Message: "payment required"}, ErrBusinessRule},
		{"not found", NewNotFoundError("status update", "u1"), ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("apply action: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)

			for _, other := range []error{ErrValidation, ErrUnauthorized, ErrBusinessRule, ErrNotFound} {
				if other != tt.sentinel {
					assert.False(t, errors.Is(wrapped, other), "should not match %v", other)
				}
			}
		})
	}
}

func TestBusinessRuleViolation_CarriesAmounts(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", &BusinessRuleViolation{
		Rule:          RulePaymentRequired,
		Message:       "order must be fully paid",
		PaidAmount:    decimal.NewFromInt(1500),
		PendingAmount: decimal.NewFromInt(3500),
	})

	var violation *BusinessRuleViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, "3500.00", violation.PendingAmount.StringFixed(2))
	assert.Contains(t, err.Error(), "paid 1500.00, pending 3500.00")
}

func TestBusinessRuleViolation_UnwrapsTransition(t *testing.T) {
	err := &BusinessRuleViolation{
		Rule:    RuleTransition,
		Message: "cannot dispatch",
		Err:     fmt.Errorf("%w: DISPATCH from New", ErrInvalidTransition),
	}

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, err, ErrBusinessRule)
}
