package wrap

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/xos-wrap/internal/chain"
	"github.com/kelsos/xos-wrap/internal/config"
	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/units"
	"github.com/kelsos/xos-wrap/internal/wallet"
)

type fixture struct {
	ledger   *chain.Ledger
	wallet   *wallet.Wallet
	executor *Executor
	reader   *BalanceReader
	reporter *recordingReporter
}

func newFixture(t *testing.T, native string) *fixture {
	t.Helper()

	w, err := wallet.Generate()
	require.NoError(t, err)

	ledger := chain.NewLedger(common.HexToAddress(config.WXOSContract))
	ledger.Fund(w.Address(), ether(t, native))

	return &fixture{
		ledger:   ledger,
		wallet:   w,
		executor: NewExecutor(ledger, w, config.LowFees(), config.Confirmations),
		reader:   NewBalanceReader(ledger),
		reporter: &recordingReporter{},
	}
}

func (f *fixture) loop(proceed ContinueFunc) *Loop {
	return NewLoop(f.executor, f.reader, f.reporter, proceed)
}

func ether(t *testing.T, s string) *big.Int {
	t.Helper()
	wei, err := units.ParseEther(s)
	require.NoError(t, err)
	return wei
}

func gasCost(gas uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(gas), big.NewInt(config.MaxFeeWei))
}

func request(kind models.OperationKind, amount string) models.TransactionRequest {
	return models.TransactionRequest{Kind: kind, Amount: amount, Fees: config.LowFees()}
}

type recordingReporter struct {
	stages    []Stage
	successes []models.Outcome
	failures  []error
}

func (r *recordingReporter) Stage(_ models.Position, stage Stage) {
	r.stages = append(r.stages, stage)
}

func (r *recordingReporter) Succeeded(_ models.Position, outcome models.Outcome) {
	r.successes = append(r.successes, outcome)
}

func (r *recordingReporter) Failed(_ models.Position, err error) {
	r.failures = append(r.failures, err)
}
