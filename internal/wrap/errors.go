package wrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/xos-wrap/internal/models"
)

// ChainQueryError is returned when a balance or contract view read fails.
type ChainQueryError struct {
	Asset string
	Err   error
}

func (e *ChainQueryError) Error() string {
	return fmt.Sprintf("failed to read %s balance: %v", e.Asset, e.Err)
}

func (e *ChainQueryError) Unwrap() error { return e.Err }

// AmountConversionError is returned when an amount cannot be converted to wei.
type AmountConversionError struct {
	Input string
	Err   error
}

func (e *AmountConversionError) Error() string {
	return fmt.Sprintf("failed to convert amount %q: %v", e.Input, e.Err)
}

func (e *AmountConversionError) Unwrap() error { return e.Err }

// EstimationError is returned when the node rejects the call during gas
// estimation. Nothing has been broadcast at that point.
type EstimationError struct {
	Kind models.OperationKind
	Err  error
}

func (e *EstimationError) Error() string {
	return fmt.Sprintf("failed to estimate gas for %s: %v", e.Kind, e.Err)
}

func (e *EstimationError) Unwrap() error { return e.Err }

// SubmissionError is returned when sending the transaction fails. Unless
// Ambiguous is false the transaction may still have reached the network.
type SubmissionError struct {
	Kind      models.OperationKind
	Ambiguous bool
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("failed to submit %s, outcome unknown: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("failed to submit %s: %v", e.Kind, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// ConfirmationTimeoutError is returned when the transaction was broadcast but
// the required depth was not observed. It may still confirm later.
type ConfirmationTimeoutError struct {
	Hash common.Hash
	Err  error
}

func (e *ConfirmationTimeoutError) Error() string {
	return fmt.Sprintf("transaction %s not confirmed: %v", e.Hash.Hex(), e.Err)
}

func (e *ConfirmationTimeoutError) Unwrap() error { return e.Err }

// RevertedError is returned when the transaction was mined with a failed status.
type RevertedError struct {
	Receipt models.Receipt
}

func (e *RevertedError) Error() string {
	return fmt.Sprintf("transaction %s reverted in block %d (gas used %d)",
		e.Receipt.TxHash.Hex(), e.Receipt.BlockNumber, e.Receipt.GasUsed)
}

// ValidationError is returned for user input that is out of bounds. It is
// always raised before any transaction is built.
type ValidationError struct {
	Field string
	Input string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Input, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// definiteRejections are node messages that guarantee the transaction was not
// accepted into the pool.
var definiteRejections = []string{
	"nonce too low",
	"nonce too high",
	"insufficient funds",
	"underpriced",
	"intrinsic gas too low",
	"exceeds block gas limit",
	"max fee per gas less than block base fee",
	"max priority fee per gas higher than max fee per gas",
	"invalid sender",
	"failed to sign",
	"failed to get nonce",
	"failed to pack",
}

// isAmbiguous reports whether a submission failure leaves the broadcast state unknown.
func isAmbiguous(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, rejection := range definiteRejections {
		if strings.Contains(msg, rejection) {
			return false
		}
	}
	return true
}

// Describe renders err as the one-line message shown to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		return fmt.Sprintf("Invalid %s: %v", validation.Field, validation.Err)
	}

	msg := firstLine(err.Error())

	var submission *SubmissionError
	if errors.As(err, &submission) && submission.Ambiguous {
		return msg + " (check the explorer before retrying)"
	}

	var timeout *ConfirmationTimeoutError
	if errors.As(err, &timeout) {
		return msg + " (it may still confirm later)"
	}

	return msg
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
