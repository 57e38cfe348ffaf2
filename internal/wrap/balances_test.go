package wrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/xos-wrap/internal/chain"
	"github.com/kelsos/xos-wrap/internal/models"
)

func TestReadBalances(t *testing.T) {
	f := newFixture(t, "12.123456785")
	f.ledger.SetWrapped(f.wallet.Address(), ether(t, "0.000000001"))

	balances, err := f.reader.ReadBalances(context.Background(), f.wallet.Address())
	require.NoError(t, err)

	assert.Equal(t, "12.12345679", balances.Native)
	assert.Equal(t, "0.00000000", balances.Wrapped)
	assert.Equal(t, "1000000000", balances.WrappedWei.String())
	assert.Equal(t, ether(t, "12.123456785").String(), balances.Bound(models.Wrap).String())
	assert.Equal(t, "1000000000", balances.Bound(models.Unwrap).String())
}

func TestReadBalancesNativeFailure(t *testing.T) {
	f := newFixture(t, "1")
	cause := errors.New("dial tcp: connection refused")
	f.ledger.Inject(chain.OpBalance, 1, cause)

	_, err := f.reader.ReadBalances(context.Background(), f.wallet.Address())

	var query *ChainQueryError
	require.ErrorAs(t, err, &query)
	assert.Equal(t, "XOS", query.Asset)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, f.ledger.Calls(chain.OpCallView))
}
