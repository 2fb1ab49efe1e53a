package market

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseUnits converts a decimal token amount ("10.5") to its integer
// representation with the given number of decimals.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}

	whole, frac := amount, ""
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		whole, frac = amount[:i], amount[i+1:]
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	result, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	return result, nil
}

// FormatUnits renders an integer token amount as a decimal string, trimming
// trailing zeros.
func FormatUnits(amount *big.Int, decimals uint8) string {
	s := amount.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= int(decimals) {
		s = strings.Repeat("0", int(decimals)-len(s)+1) + s
	}
	split := len(s) - int(decimals)
	whole, frac := s[:split], s[split:]
	frac = strings.TrimRight(frac, "0")

	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
