package wrap

import (
	"context"
	"math"
	"math/big"
	"math/bits"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/xos-wrap/internal/logger"
	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/units"
	"github.com/kelsos/xos-wrap/internal/wallet"
)

// Stage is a step of a single attempt, reported while it runs.
type Stage string

const (
	StageValidating Stage = "validating"
	StageEstimating Stage = "estimating"
	StageSubmitting Stage = "submitting"
	StageConfirming Stage = "confirming"
)

// Pending is a broadcast transaction that has not been confirmed yet.
type Pending struct {
	Handle       models.TxHandle
	Amount       *big.Int
	EstimatedGas uint64
	GasLimit     uint64
}

// Executor builds, estimates and submits wrap and unwrap transactions for one
// signer. Its fields are fixed at construction.
type Executor struct {
	client        ChainClient
	signer        wallet.Signer
	fees          models.FeeParams
	confirmations uint64
}

func NewExecutor(client ChainClient, signer wallet.Signer, fees models.FeeParams, confirmations uint64) *Executor {
	return &Executor{
		client:        client,
		signer:        signer,
		fees:          fees,
		confirmations: confirmations,
	}
}

// Address returns the account transactions are sent from.
func (e *Executor) Address() common.Address {
	return e.signer.Address()
}

// Confirmations returns the depth AwaitConfirmation is called with by the loop.
func (e *Executor) Confirmations() uint64 {
	return e.confirmations
}

// Fees returns the fee parameters used when a request carries none.
func (e *Executor) Fees() models.FeeParams {
	return models.FeeParams{
		GasTipCap: copyInt(e.fees.GasTipCap),
		GasFeeCap: copyInt(e.fees.GasFeeCap),
	}
}

// Execute estimates and submits req. onStage may be nil.
func (e *Executor) Execute(ctx context.Context, req models.TransactionRequest, pos models.Position, onStage func(Stage)) (*Pending, error) {
	stage := func(s Stage) {
		if onStage != nil {
			onStage(s)
		}
	}

	amount, err := units.ParseEther(req.Amount)
	if err != nil {
		return nil, &AmountConversionError{Input: req.Amount, Err: err}
	}

	fees := req.Fees
	if fees.GasTipCap == nil || fees.GasFeeCap == nil {
		fees = e.Fees()
	}
	call := e.callFor(req.Kind, amount, fees)

	stage(StageEstimating)
	estimate, err := e.client.EstimateGas(ctx, call)
	if err != nil {
		logger.Warn("[%s] Gas estimation for %s failed: %v", pos, req.Kind, err)
		return nil, &EstimationError{Kind: req.Kind, Err: err}
	}
	gasLimit := GasLimitWithMargin(estimate)
	logger.Debug("[%s] Estimated %d gas for %s, using limit %d", pos, estimate, call.Method, gasLimit)

	stage(StageSubmitting)
	handle, err := e.client.Submit(ctx, e.signer, call, gasLimit)
	if err != nil {
		ambiguous := isAmbiguous(err)
		logger.Error("[%s] Submitting %s failed (ambiguous: %t): %v", pos, req.Kind, ambiguous, err)
		return nil, &SubmissionError{Kind: req.Kind, Ambiguous: ambiguous, Err: err}
	}
	logger.Info("[%s] %s %s %s submitted: %s (nonce %d, gas limit %d)",
		pos, req.Kind.Verb(), req.Amount, req.Kind.Asset(), handle.Hash.Hex(), handle.Nonce, gasLimit)

	return &Pending{
		Handle:       handle,
		Amount:       amount,
		EstimatedGas: estimate,
		GasLimit:     gasLimit,
	}, nil
}

// AwaitConfirmation blocks until handle is buried under the requested depth.
func (e *Executor) AwaitConfirmation(ctx context.Context, handle models.TxHandle, confirmations uint64) (*models.Receipt, error) {
	receipt, err := e.client.WaitConfirmations(ctx, handle, confirmations)
	if err != nil {
		return nil, &ConfirmationTimeoutError{Hash: handle.Hash, Err: err}
	}
	if !receipt.Succeeded() {
		return nil, &RevertedError{Receipt: *receipt}
	}
	logger.Info("Transaction %s confirmed in block %d (gas used %d)", receipt.TxHash.Hex(), receipt.BlockNumber, receipt.GasUsed)
	return receipt, nil
}

// GasLimitWithMargin pads a gas estimate by 20%, rounding up. Results that
// do not fit in a uint64 saturate at math.MaxUint64.
func GasLimitWithMargin(estimate uint64) uint64 {
	hi, lo := bits.Mul64(estimate, 12)
	lo, carry := bits.Add64(lo, 9, 0)
	hi += carry
	if hi >= 10 {
		return math.MaxUint64
	}
	limit, _ := bits.Div64(hi, lo, 10)
	return limit
}

func (e *Executor) callFor(kind models.OperationKind, amount *big.Int, fees models.FeeParams) models.ContractCall {
	call := models.ContractCall{
		From:   e.signer.Address(),
		Method: kind.Method(),
		Fees:   fees,
	}
	if kind == models.Unwrap {
		call.Args = []interface{}{amount}
	} else {
		call.Value = amount
	}
	return call
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
