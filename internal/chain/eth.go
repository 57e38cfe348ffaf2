package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/kelsos/xos-wrap/internal/logger"
	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/wallet"
)

// EthConfig configures an RPC backed client.
type EthConfig struct {
	RPCURL         string
	Contract       common.Address
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
}

// EthClient handles all RPC communication with the node and the wrapper contract
type EthClient struct {
	client         *ethclient.Client
	contract       common.Address
	abi            abi.ABI
	chainID        *big.Int
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

// Dial connects to the RPC endpoint and fetches the chain ID used for signing.
func Dial(ctx context.Context, cfg EthConfig) (*EthClient, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	parsed, err := WrapperABI()
	if err != nil {
		return nil, err
	}

	cli, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	chainID, err := cli.ChainID(ctx)
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to fetch chain id: %w", err)
	}
	logger.Info("Connected to %s (chain id %s)", cfg.RPCURL, chainID)

	return &EthClient{
		client:         cli,
		contract:       cfg.Contract,
		abi:            parsed,
		chainID:        chainID,
		pollInterval:   cfg.PollInterval,
		confirmTimeout: cfg.ConfirmTimeout,
	}, nil
}

// Close closes the client connection
func (c *EthClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// BalanceAt returns the native balance of account at the latest block.
func (c *EthClient) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	start := time.Now()
	balance, err := c.client.BalanceAt(ctx, account, nil)
	c.observe("eth_getBalance", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// CallView calls a uint256-returning view function of the wrapper contract.
func (c *EthClient) CallView(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	start := time.Now()
	result, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.contract,
		Data: data,
	}, nil)
	c.observe("eth_call "+method, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	out, err := c.abi.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s returned %T, want uint256", method, out[0])
	}
	return value, nil
}

// EstimateGas asks the node for the gas the call needs with the given fees.
func (c *EthClient) EstimateGas(ctx context.Context, call models.ContractCall) (uint64, error) {
	data, err := c.abi.Pack(call.Method, call.Args...)
	if err != nil {
		return 0, fmt.Errorf("failed to pack %s call: %w", call.Method, err)
	}

	start := time.Now()
	gas, err := c.client.EstimateGas(ctx, ethereum.CallMsg{
		From:      call.From,
		To:        &c.contract,
		Value:     call.Value,
		Data:      data,
		GasTipCap: call.Fees.GasTipCap,
		GasFeeCap: call.Fees.GasFeeCap,
	})
	c.observe("eth_estimateGas "+call.Method, start, err)
	if err != nil {
		return 0, err
	}
	return gas, nil
}

// Submit signs the call as an EIP-1559 transaction and broadcasts it.
func (c *EthClient) Submit(ctx context.Context, signer wallet.Signer, call models.ContractCall, gasLimit uint64) (models.TxHandle, error) {
	data, err := c.abi.Pack(call.Method, call.Args...)
	if err != nil {
		return models.TxHandle{}, fmt.Errorf("failed to pack %s call: %w", call.Method, err)
	}

	nonce, err := c.client.PendingNonceAt(ctx, signer.Address())
	if err != nil {
		return models.TxHandle{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	value := call.Value
	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: call.Fees.GasTipCap,
		GasFeeCap: call.Fees.GasFeeCap,
		Gas:       gasLimit,
		To:        &c.contract,
		Value:     value,
		Data:      data,
	})

	signed, err := signer.SignTx(tx, c.chainID)
	if err != nil {
		return models.TxHandle{}, err
	}

	start := time.Now()
	err = c.client.SendTransaction(ctx, signed)
	c.observe("eth_sendRawTransaction "+call.Method, start, err)
	if err != nil {
		return models.TxHandle{}, err
	}

	return models.TxHandle{
		Hash:     signed.Hash(),
		Nonce:    nonce,
		GasLimit: gasLimit,
	}, nil
}

// WaitConfirmations polls until the transaction is mined and buried under
// confirmations-1 further blocks, or until the confirmation timeout elapses.
func (c *EthClient) WaitConfirmations(ctx context.Context, handle models.TxHandle, confirmations uint64) (*models.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	receipt, err := c.waitForReceipt(ctx, handle.Hash)
	if err != nil {
		return nil, err
	}

	mined := receipt.BlockNumber.Uint64()
	target := mined
	if confirmations > 1 {
		target = mined + confirmations - 1
	}

	if err := c.waitForBlock(ctx, target); err != nil {
		return nil, err
	}

	return &models.Receipt{
		TxHash:      receipt.TxHash,
		BlockNumber: mined,
		GasUsed:     receipt.GasUsed,
		Status:      receipt.Status,
	}, nil
}

func (c *EthClient) waitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.client.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			// Transient node errors are retried until the deadline.
			logger.Debug("Receipt lookup for %s failed: %v", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *EthClient) waitForBlock(ctx context.Context, target uint64) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		head, err := c.client.BlockNumber(ctx)
		if err == nil && head >= target {
			return nil
		}
		if err != nil {
			logger.Debug("Block number lookup failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *EthClient) observe(method string, start time.Time, err error) {
	elapsed := time.Since(start)
	if err != nil {
		logger.Debug("%s failed after %v: %v", method, elapsed, err)
		return
	}
	logger.Debug("%s completed in %v", method, elapsed)
}
