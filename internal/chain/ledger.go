package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/wallet"
)

// Op names a ledger operation for call counting and fault injection.
type Op string

const (
	OpBalance  Op = "balance"
	OpCallView Op = "call_view"
	OpEstimate Op = "estimate_gas"
	OpSubmit   Op = "submit"
	OpWait     Op = "wait_confirmations"
)

// Gas consumed by each wrapper entry point on the simulated chain.
const (
	DepositGas  uint64 = 45_038
	WithdrawGas uint64 = 35_112
)

// SimulatedChainID is the chain ID transactions are signed for on the ledger.
const SimulatedChainID = 1267

var (
	ErrInsufficientFunds = errors.New("insufficient funds for gas * price + value")
	ErrExecutionReverted = errors.New("execution reverted")
	ErrNotFound          = errors.New("not found")
)

// Ledger is an in-memory chain holding native and wrapped balances. Every
// submitted transaction is mined into its own block immediately.
type Ledger struct {
	mu       sync.Mutex
	contract common.Address
	chainID  *big.Int
	native   map[common.Address]*big.Int
	wrapped  map[common.Address]*big.Int
	nonces   map[common.Address]uint64
	receipts map[common.Hash]models.Receipt
	head     uint64
	calls    map[Op]int
	faults   map[Op]map[int]error
}

// NewLedger creates an empty ledger for the given wrapper contract.
func NewLedger(contract common.Address) *Ledger {
	return &Ledger{
		contract: contract,
		chainID:  big.NewInt(SimulatedChainID),
		native:   make(map[common.Address]*big.Int),
		wrapped:  make(map[common.Address]*big.Int),
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]models.Receipt),
		head:     1_000,
		calls:    make(map[Op]int),
		faults:   make(map[Op]map[int]error),
	}
}

// Fund sets the native balance of account.
func (l *Ledger) Fund(account common.Address, wei *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.native[account] = new(big.Int).Set(wei)
}

// SetWrapped sets the wrapped token balance of account.
func (l *Ledger) SetWrapped(account common.Address, wei *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wrapped[account] = new(big.Int).Set(wei)
}

// Inject makes the nth (1-based) call of op fail with err.
func (l *Ledger) Inject(op Op, nth int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.faults[op] == nil {
		l.faults[op] = make(map[int]error)
	}
	l.faults[op][nth] = err
}

// Calls returns how many times op was invoked.
func (l *Ledger) Calls(op Op) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[op]
}

// TotalCalls returns the number of operations invoked on the ledger.
func (l *Ledger) TotalCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, n := range l.calls {
		total += n
	}
	return total
}

// Head returns the latest block number.
func (l *Ledger) Head() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.head
}

func (l *Ledger) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter(ctx, OpBalance); err != nil {
		return nil, err
	}
	return l.nativeOf(account), nil
}

func (l *Ledger) CallView(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter(ctx, OpCallView); err != nil {
		return nil, err
	}
	if method != "balanceOf" || len(args) != 1 {
		return nil, fmt.Errorf("%w: unsupported view %s", ErrExecutionReverted, method)
	}
	account, ok := args[0].(common.Address)
	if !ok {
		return nil, fmt.Errorf("balanceOf wants an address, got %T", args[0])
	}
	return l.wrappedOf(account), nil
}

func (l *Ledger) EstimateGas(ctx context.Context, call models.ContractCall) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter(ctx, OpEstimate); err != nil {
		return 0, err
	}
	gas, _, err := l.check(call, 0)
	return gas, err
}

func (l *Ledger) Submit(ctx context.Context, signer wallet.Signer, call models.ContractCall, gasLimit uint64) (models.TxHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter(ctx, OpSubmit); err != nil {
		return models.TxHandle{}, err
	}

	from := signer.Address()
	call.From = from
	gas, amount, err := l.check(call, gasLimit)
	reverted := errors.Is(err, ErrExecutionReverted)
	if err != nil && !reverted {
		return models.TxHandle{}, err
	}

	nonce := l.nonces[from]
	value := call.Value
	if value == nil {
		value = new(big.Int)
	}
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   l.chainID,
		Nonce:     nonce,
		GasTipCap: call.Fees.GasTipCap,
		GasFeeCap: call.Fees.GasFeeCap,
		Gas:       gasLimit,
		To:        &l.contract,
		Value:     value,
	})
	signed, err := signer.SignTx(tx, l.chainID)
	if err != nil {
		return models.TxHandle{}, err
	}

	l.nonces[from] = nonce + 1
	l.head++

	receipt := models.Receipt{
		TxHash:      signed.Hash(),
		BlockNumber: l.head,
		GasUsed:     gas,
		Status:      types.ReceiptStatusSuccessful,
	}

	// A call that needs more gas than its cap burns the whole cap and reverts.
	if gas > gasLimit || reverted {
		receipt.GasUsed = gasLimit
		receipt.Status = types.ReceiptStatusFailed
		l.debit(l.native, from, l.fee(call, gasLimit))
	} else {
		l.debit(l.native, from, l.fee(call, gas))
		l.apply(from, call.Method, amount)
	}
	l.receipts[receipt.TxHash] = receipt

	return models.TxHandle{Hash: receipt.TxHash, Nonce: nonce, GasLimit: gasLimit}, nil
}

func (l *Ledger) WaitConfirmations(ctx context.Context, handle models.TxHandle, confirmations uint64) (*models.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter(ctx, OpWait); err != nil {
		return nil, err
	}

	receipt, ok := l.receipts[handle.Hash]
	if !ok {
		return nil, fmt.Errorf("receipt %s: %w", handle.Hash.Hex(), ErrNotFound)
	}

	// Later blocks are produced on demand until the requested depth exists.
	if confirmations > 1 {
		if target := receipt.BlockNumber + confirmations - 1; target > l.head {
			l.head = target
		}
	}
	return &receipt, nil
}

func (l *Ledger) enter(ctx context.Context, op Op) error {
	l.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.faults[op][l.calls[op]]; err != nil {
		return err
	}
	return nil
}

// check validates a call against current balances and returns the gas it
// consumes and the amount it moves. A gasLimit of zero means "estimate".
func (l *Ledger) check(call models.ContractCall, gasLimit uint64) (uint64, *big.Int, error) {
	var gas uint64
	var amount *big.Int

	switch call.Method {
	case "deposit":
		gas = DepositGas
		amount = call.Value
		if amount == nil {
			amount = new(big.Int)
		}
	case "withdraw":
		gas = WithdrawGas
		if len(call.Args) != 1 {
			return 0, nil, fmt.Errorf("%w: withdraw wants one argument", ErrExecutionReverted)
		}
		wad, ok := call.Args[0].(*big.Int)
		if !ok {
			return 0, nil, fmt.Errorf("withdraw wants a uint256, got %T", call.Args[0])
		}
		amount = wad
	default:
		return 0, nil, fmt.Errorf("%w: unknown method %s", ErrExecutionReverted, call.Method)
	}

	limit := gasLimit
	if limit == 0 {
		limit = gas
	}
	cost := l.fee(call, limit)
	if call.Value != nil {
		cost.Add(cost, call.Value)
	}
	if l.nativeOf(call.From).Cmp(cost) < 0 {
		return 0, nil, ErrInsufficientFunds
	}

	if call.Method == "withdraw" && l.wrappedOf(call.From).Cmp(amount) < 0 {
		return gas, amount, ErrExecutionReverted
	}

	return gas, amount, nil
}

func (l *Ledger) apply(from common.Address, method string, amount *big.Int) {
	switch method {
	case "deposit":
		l.debit(l.native, from, amount)
		l.credit(l.wrapped, from, amount)
	case "withdraw":
		l.debit(l.wrapped, from, amount)
		l.credit(l.native, from, amount)
	}
}

func (l *Ledger) fee(call models.ContractCall, gas uint64) *big.Int {
	price := call.Fees.GasFeeCap
	if price == nil {
		price = new(big.Int)
	}
	return new(big.Int).Mul(price, new(big.Int).SetUint64(gas))
}

func (l *Ledger) nativeOf(account common.Address) *big.Int {
	if v, ok := l.native[account]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

func (l *Ledger) wrappedOf(account common.Address) *big.Int {
	if v, ok := l.wrapped[account]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

func (l *Ledger) debit(book map[common.Address]*big.Int, account common.Address, amount *big.Int) {
	current, ok := book[account]
	if !ok {
		current = new(big.Int)
	}
	book[account] = new(big.Int).Sub(current, amount)
}

func (l *Ledger) credit(book map[common.Address]*big.Int, account common.Address, amount *big.Int) {
	current, ok := book[account]
	if !ok {
		current = new(big.Int)
	}
	book[account] = new(big.Int).Add(current, amount)
}
