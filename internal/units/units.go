// Package units converts between human readable ether amounts and wei.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

// Decimals is the number of fractional digits of the native asset and its wrapper.
const Decimals = 18

// DisplayDecimals is the precision balances are shown with.
const DisplayDecimals = 8

var (
	ErrEmptyAmount     = errors.New("amount is empty")
	ErrNegativeAmount  = errors.New("amount is negative")
	ErrMalformedAmount = errors.New("amount is not a decimal number")
	ErrTooManyDecimals = errors.New("amount has more than 18 decimals")
)

var amountPattern = regexp.MustCompile(`^(\d*)(?:\.(\d*))?$`)

var weiPerEther = big.NewInt(params.Ether)

// ParseEther converts a decimal string such as "1.5" or ".25" into wei.
// Exponents, fractions and signs are rejected; negative input gets its own
// error so callers can report it as an out-of-range value.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyAmount
	}
	if strings.HasPrefix(s, "-") {
		return nil, ErrNegativeAmount
	}

	m := amountPattern.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}

	whole, frac := m[1], strings.TrimRight(m[2], "0")
	if len(frac) > Decimals {
		return nil, ErrTooManyDecimals
	}
	if whole == "" {
		whole = "0"
	}
	frac += strings.Repeat("0", Decimals-len(frac))

	wei, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	return wei, nil
}

// FormatEther renders wei with the given number of fractional digits,
// rounding half away from zero.
func FormatEther(wei *big.Int, decimals int) string {
	if wei == nil {
		wei = new(big.Int)
	}
	return new(big.Rat).SetFrac(wei, weiPerEther).FloatString(decimals)
}

// FormatBalance renders wei the way balances are displayed.
func FormatBalance(wei *big.Int) string {
	return FormatEther(wei, DisplayDecimals)
}
