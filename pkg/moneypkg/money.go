// Package moneypkg provides common money related functionality for apps.
//
// Balances and amounts are whole rubles; user input arrives as decimal
// strings and is parsed here.
package moneypkg

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount indicates a non-numeric or fractional amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a user-entered amount string into whole currency
// units. Fractional and non-numeric input is rejected.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidAmount
	}

	if !d.IsInteger() {
		return 0, ErrInvalidAmount
	}

	// IntPart wraps silently outside the int64 range.
	n := d.IntPart()
	if !d.Equal(decimal.NewFromInt(n)) {
		return 0, ErrInvalidAmount
	}

	return n, nil
}

// Format renders a whole-ruble amount the way statements display it,
// with space-grouped thousands and an explicit sign for credits:
// -2500 -> "-2 500 ₽", 65000 -> "+65 000 ₽".
func Format(amount int64) string {
	sign := "+"
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)

	var sb strings.Builder

	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(' ')
		}

		sb.WriteRune(r)
	}

	return sign + sb.String() + " ₽"
}
