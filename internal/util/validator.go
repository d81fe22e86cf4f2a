package util

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	symbolRe = regexp.MustCompile(`^[A-Z0-9.\-]{1,20}$`)
	colorRe  = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// ValidatePercent verifies a percentage is in [0, 100] with at most two
// decimal places.
func ValidatePercent(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%s must not be negative, got %s", field, d)
	}
	if d.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%s must not exceed 100, got %s", field, d)
	}
	if d.Exponent() < -2 {
		return fmt.Errorf("%s allows at most two decimal places, got %s", field, d)
	}
	return nil
}

// ValidateSymbol verifies a ticker symbol (1-20 uppercase letters,
// digits, dots or dashes). Callers normalize to upper case first.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol is empty")
	}
	if !symbolRe.MatchString(symbol) {
		return fmt.Errorf("invalid symbol %q", symbol)
	}
	return nil
}

// ValidateColor verifies an optional #RRGGBB color value.
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !colorRe.MatchString(color) {
		return fmt.Errorf("invalid color %q, expected #RRGGBB", color)
	}
	return nil
}
