package wrap

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/kelsos/xos-wrap/internal/units"
)

var (
	ErrAmountNotPositive    = errors.New("must be greater than 0")
	ErrAmountExceedsBalance = errors.New("exceeds the available balance")
	ErrInvalidRepeatCount   = errors.New("must be a positive whole number")
)

// ValidateAmount parses a user supplied amount and checks 0 < amount <= bound.
// A nil bound skips the upper check. No network call is involved.
func ValidateAmount(input string, bound *big.Int) (*big.Int, error) {
	wei, err := units.ParseEther(input)
	if err != nil {
		if errors.Is(err, units.ErrNegativeAmount) {
			err = ErrAmountNotPositive
		}
		return nil, &ValidationError{Field: "amount", Input: input, Err: err}
	}

	if wei.Sign() <= 0 {
		return nil, &ValidationError{Field: "amount", Input: input, Err: ErrAmountNotPositive}
	}

	if bound != nil && wei.Cmp(bound) > 0 {
		return nil, &ValidationError{
			Field: "amount",
			Input: input,
			Err:   fmt.Errorf("%w (max %s)", ErrAmountExceedsBalance, units.FormatBalance(bound)),
		}
	}

	return wei, nil
}

// ValidateRepeatCount parses the number of times a transaction is repeated.
func ValidateRepeatCount(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 {
		return 0, &ValidationError{Field: "repeat count", Input: input, Err: ErrInvalidRepeatCount}
	}
	return n, nil
}
