package wrap

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/xos-wrap/internal/logger"
	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/units"
)

// BalanceReader fetches the native and wrapped balances of a wallet.
type BalanceReader struct {
	client ChainClient
}

func NewBalanceReader(client ChainClient) *BalanceReader {
	return &BalanceReader{client: client}
}

// ReadBalances returns a fresh snapshot of both balances of account.
func (r *BalanceReader) ReadBalances(ctx context.Context, account common.Address) (models.Balances, error) {
	native, err := r.client.BalanceAt(ctx, account)
	if err != nil {
		return models.Balances{}, &ChainQueryError{Asset: models.Wrap.Asset(), Err: err}
	}

	wrapped, err := r.client.CallView(ctx, "balanceOf", account)
	if err != nil {
		return models.Balances{}, &ChainQueryError{Asset: models.Unwrap.Asset(), Err: err}
	}

	balances := models.Balances{
		Native:     units.FormatBalance(native),
		Wrapped:    units.FormatBalance(wrapped),
		NativeWei:  native,
		WrappedWei: wrapped,
	}
	logger.Debug("Balances of %s: %s XOS, %s WXOS", account.Hex(), balances.Native, balances.Wrapped)

	return balances, nil
}
