// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats a currency amount with two decimals and thousands
// separators. e.g., 1234.5 -> "$1,234.50"
func FormatMoney(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	n, err := strconv.ParseInt(whole, 10, 64)
	if err == nil {
		whole = FormatNumber(n)
	}
	out := "$" + whole + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatCPR formats a cost-per-result. Zero renders as a dash because it
// means no results yet, not free results.
func FormatCPR(d decimal.Decimal) string {
	if d.IsZero() {
		return "-"
	}
	return FormatMoney(d)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatShare formats part/total as a percentage, "0.0%" when total is zero.
func FormatShare(part, total decimal.Decimal) string {
	if !total.IsPositive() {
		return "0.0%"
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// FormatAccount renders an account label for tables.
func FormatAccount(label string) string {
	return fmt.Sprintf("Account %s", label)
}
