package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/theplant/luhn"
)

// OrderNumberPrefix starts every generated order number
const OrderNumberPrefix = "PO-"

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// GenerateOrderNumber appends a Luhn check digit to base
func GenerateOrderNumber(base int) string {
	return fmt.Sprintf("%s%d%d", OrderNumberPrefix, base, luhn.CalculateLuhn(base))
}

// ValidateOrderNumber checks the prefix and the trailing Luhn check digit
func ValidateOrderNumber(number string) error {
	digits, ok := strings.CutPrefix(number, OrderNumberPrefix)
	if !ok {
		return fmt.Errorf("order number must start with %s: %s", OrderNumberPrefix, number)
	}
	if len(digits) < 2 || len(digits) > 18 {
		return fmt.Errorf("order number has the wrong length: %s", number)
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return fmt.Errorf("order number must be numeric after the prefix: %s", number)
	}
	if !luhn.Valid(n) {
		return fmt.Errorf("order number check digit mismatch: %s", number)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
