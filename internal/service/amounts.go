package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// parseAmount parses a non-negative decimal string; empty means zero.
func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative")
	}
	return d, nil
}

// parseRate parses a percentage in [0, 100]; empty means zero.
func parseRate(raw string) (decimal.Decimal, error) {
	d, err := parseAmount(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("must be between 0 and 100")
	}
	return d, nil
}
