// Package price extracts numeric amounts from rendered price strings and
// checks them against merchant price bounds.
package price

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ErrNoAmount reports a price string without any digits.
var ErrNoAmount = errors.New("price: no amount in price string")

// ParseString keeps the digits and decimal points of price, plus commas when
// includeComma is set. A point that directly follows a letter is treated as
// part of a currency abbreviation ("Rs.") and dropped.
func ParseString(price string, includeComma bool) string {
	runes := []rune(price)
	var b strings.Builder
	for i, r := range runes {
		if !isDigit(r) && r != '.' && (!includeComma || r != ',') {
			continue
		}
		if r == '.' && i > 0 && isAlphabet(runes[i-1]) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Parse extracts the leading decimal amount from price. Text after the first
// malformed point sequence is ignored, so "$1.234.56" reads as 1.234.
func Parse(price string) (decimal.Decimal, error) {
	digits := leadingNumber(ParseString(price, false))
	if digits == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNoAmount, price)
	}
	amount, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price: parse %q: %w", price, err)
	}
	return amount, nil
}

// leadingNumber trims s to its longest numeric prefix with at most one
// decimal point.
func leadingNumber(s string) string {
	seenPoint := false
	end := 0
	for i, r := range s {
		if r == '.' {
			if seenPoint {
				break
			}
			seenPoint = true
			end = i + 1
			continue
		}
		end = i + 1
	}
	out := strings.TrimSuffix(s[:end], ".")
	if out == "" || out == "." {
		return ""
	}
	if strings.HasPrefix(out, ".") {
		out = "0" + out
	}
	return out
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlphabet(r rune) bool {
	return r == '(' || r == ')' || (r < unicode.MaxASCII && unicode.IsLetter(r))
}
