package wrap

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/kelsos/xos-wrap/internal/models"
)

func TestIsAmbiguous(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("nonce too low"), false},
		{errors.New("Insufficient funds for gas * price + value"), false},
		{errors.New("replacement transaction underpriced"), false},
		{errors.New("intrinsic gas too low"), false},
		{fmt.Errorf("failed to get nonce: %w", errors.New("eof")), false},
		{errors.New("502 Bad Gateway"), true},
		{context.Canceled, true},
		{errors.New("already known"), true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isAmbiguous(tt.err), "%v", tt.err)
	}
}

func TestDescribe(t *testing.T) {
	hash := common.HexToHash("0xabc")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{
			"validation",
			&ValidationError{Field: "amount", Input: "0", Err: ErrAmountNotPositive},
			"Invalid amount: must be greater than 0",
		},
		{
			"estimation",
			&EstimationError{Kind: models.Unwrap, Err: errors.New("execution reverted\ntrace")},
			"failed to estimate gas for unwrap: execution reverted",
		},
		{
			"ambiguous submission",
			&SubmissionError{Kind: models.Wrap, Ambiguous: true, Err: errors.New("EOF")},
			"failed to submit wrap, outcome unknown: EOF (check the explorer before retrying)",
		},
		{
			"definite submission",
			&SubmissionError{Kind: models.Wrap, Err: errors.New("nonce too low")},
			"failed to submit wrap: nonce too low",
		},
		{
			"timeout",
			&ConfirmationTimeoutError{Hash: hash, Err: context.DeadlineExceeded},
			"transaction " + hash.Hex() + " not confirmed: context deadline exceeded (it may still confirm later)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")

	assert.ErrorIs(t, &ChainQueryError{Asset: "XOS", Err: cause}, cause)
	assert.ErrorIs(t, &AmountConversionError{Input: "x", Err: cause}, cause)
	assert.ErrorIs(t, &EstimationError{Kind: models.Wrap, Err: cause}, cause)
	assert.ErrorIs(t, &SubmissionError{Kind: models.Wrap, Err: cause}, cause)
	assert.ErrorIs(t, &ConfirmationTimeoutError{Err: cause}, cause)
	assert.ErrorIs(t, &ValidationError{Field: "amount", Err: cause}, cause)
}
