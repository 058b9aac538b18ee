// Package pricing is the single parsing and arithmetic authority for prices.
// Every price value entering arithmetic anywhere in the storefront must pass
// through ParseMoney first; raw display strings are never added or multiplied.
package pricing

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
)

// ParseMoney converts a heterogeneous price representation into a canonical
// numeric amount. Strings may carry a currency prefix and thousands grouping
// ("₹1,499.00", "Rs. 1,499.50"); the amount is the numeric run starting at
// the first digit, so prefix punctuation never reaches the parse. Anything
// non-finite or unparseable degrades to 0.
func ParseMoney(value any) float64 {
	switch v := value.(type) {
	case float64:
		return finiteOrZero(v)
	case float32:
		return finiteOrZero(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		return finiteOrZero(parseMoneyString(v))
	default:
		return 0
	}
}

func parseMoneyString(s string) float64 {
	var b strings.Builder
	var seenDigit, seenDot, minus bool

scan:
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
			seenDigit = true
		case r == ',' && seenDigit:
			// thousands grouping
		case r == '.' && seenDigit && !seenDot:
			b.WriteRune(r)
			seenDot = true
		case seenDigit:
			break scan
		case r == '-':
			minus = true
		default:
			// a non-digit between the minus and the amount detaches it
			minus = false
		}
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	if minus {
		return -f
	}
	return f
}

// LineTotal is the payable amount for one cart line.
func LineTotal(item domain.CartItem) float64 {
	return ParseMoney(item.UnitPrice) * float64(item.Quantity)
}

// Subtotal sums line totals over all items. Empty carts total 0.
func Subtotal(items []domain.CartItem) float64 {
	var sum float64
	for _, item := range items {
		sum += LineTotal(item)
	}
	return sum
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
