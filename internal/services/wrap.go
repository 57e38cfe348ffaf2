package services

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/xos-wrap/internal/chain"
	"github.com/kelsos/xos-wrap/internal/config"
	"github.com/kelsos/xos-wrap/internal/logger"
	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/units"
	"github.com/kelsos/xos-wrap/internal/wallet"
	"github.com/kelsos/xos-wrap/internal/wrap"
)

// WrapService wires the wallet, the chain client and the execution engine
// together from a validated configuration.
type WrapService struct {
	client   wrap.ChainClient
	ledger   *chain.Ledger
	closer   func()
	wallet   *wallet.Wallet
	executor *wrap.Executor
	reader   *wrap.BalanceReader
}

// NewWrapService creates a new wrap service with all dependencies
func NewWrapService(ctx context.Context, cfg *config.Config) (*WrapService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w, err := loadWallet(cfg)
	if err != nil {
		return nil, err
	}

	s := &WrapService{
		wallet: w,
		closer: func() {},
	}

	if cfg.Simulate {
		balance, err := units.ParseEther(cfg.SimulatedBalance)
		if err != nil {
			return nil, fmt.Errorf("invalid simulated balance: %w", err)
		}
		s.ledger = chain.NewLedger(cfg.ContractAddress())
		s.ledger.Fund(w.Address(), balance)
		s.client = s.ledger
		logger.Info("Simulating chain: %s XOS funded to %s", units.FormatBalance(balance), w.Address().Hex())
	} else {
		eth, err := chain.Dial(ctx, chain.EthConfig{
			RPCURL:         cfg.RPCURL,
			Contract:       cfg.ContractAddress(),
			PollInterval:   cfg.PollInterval,
			ConfirmTimeout: cfg.ConfirmTimeout,
		})
		if err != nil {
			return nil, err
		}
		s.client = eth
		s.closer = eth.Close
	}

	s.executor = wrap.NewExecutor(s.client, w, config.LowFees(), config.Confirmations)
	s.reader = wrap.NewBalanceReader(s.client)

	logger.Info("Using wallet %s", w.Address().Hex())
	return s, nil
}

func loadWallet(cfg *config.Config) (*wallet.Wallet, error) {
	if cfg.PrivateKey != "" {
		return wallet.FromHex(cfg.PrivateKey)
	}
	logger.Warn("No private key configured, using a throwaway key for the simulated chain")
	return wallet.Generate()
}

// Address returns the wallet address transactions are sent from.
func (s *WrapService) Address() common.Address {
	return s.wallet.Address()
}

// Fees returns the fee parameters attached to every request.
func (s *WrapService) Fees() models.FeeParams {
	return s.executor.Fees()
}

// ReadBalances fetches the wallet's current balances.
func (s *WrapService) ReadBalances(ctx context.Context) (models.Balances, error) {
	return s.reader.ReadBalances(ctx, s.wallet.Address())
}

// NewLoop creates an execution loop reporting to reporter.
func (s *WrapService) NewLoop(reporter wrap.Reporter, proceed wrap.ContinueFunc) *wrap.Loop {
	return wrap.NewLoop(s.executor, s.reader, reporter, proceed)
}

// Ledger returns the simulated chain, or nil when connected to a node.
func (s *WrapService) Ledger() *chain.Ledger {
	return s.ledger
}

// Cleanup closes the node connection
func (s *WrapService) Cleanup() {
	s.closer()
}
