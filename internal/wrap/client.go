// Package wrap executes wrap and unwrap transactions against the wrapper contract.
package wrap

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/wallet"
)

// ChainClient is the capability surface the engine needs from a node.
// chain.EthClient and chain.Ledger both satisfy it.
type ChainClient interface {
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	CallView(ctx context.Context, method string, args ...interface{}) (*big.Int, error)
	EstimateGas(ctx context.Context, call models.ContractCall) (uint64, error)
	Submit(ctx context.Context, signer wallet.Signer, call models.ContractCall, gasLimit uint64) (models.TxHandle, error)
	WaitConfirmations(ctx context.Context, handle models.TxHandle, confirmations uint64) (*models.Receipt, error)
}
