package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/units"
)

// WXOSContract is the wrapper contract the tool talks to.
const WXOSContract = "0x4200000000000000000000000000000000000006"

// Confirmations is the depth a transaction must reach before it counts as done.
const Confirmations = 3

// Fee literals in wei (0.000000002 and 0.000000011 gwei). They are not derived
// from the market; the target chain accepts near-zero fees.
const (
	PriorityFeeWei = 2
	MaxFeeWei      = 11
)

var (
	ErrMissingRPCURL     = errors.New("RPC_URL is not set")
	ErrMissingPrivateKey = errors.New("PRIVATE_KEY is not set")
)

// LowFees returns a fresh copy of the fixed fee parameters.
func LowFees() models.FeeParams {
	return models.FeeParams{
		GasTipCap: big.NewInt(PriorityFeeWei),
		GasFeeCap: big.NewInt(MaxFeeWei),
	}
}

// Config holds all application configuration
type Config struct {
	// Chain settings
	RPCURL     string
	PrivateKey string

	// Confirmation settings
	ConfirmTimeout time.Duration
	PollInterval   time.Duration

	// Logging settings
	LogDir string

	// Simulation settings
	Simulate         bool
	SimulatedBalance string
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		ConfirmTimeout:   5 * time.Minute,
		PollInterval:     2 * time.Second,
		LogDir:           "logs",
		SimulatedBalance: "10",
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if rpcURL := os.Getenv("RPC_URL"); rpcURL != "" {
		c.RPCURL = rpcURL
	}

	if privateKey := os.Getenv("PRIVATE_KEY"); privateKey != "" {
		c.PrivateKey = privateKey
	}

	if timeout := os.Getenv("WRAP_CONFIRM_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.ConfirmTimeout = time.Duration(t) * time.Second
		}
	}

	if logDir := os.Getenv("WRAP_LOG_DIR"); logDir != "" {
		c.LogDir = logDir
	}

	if balance := os.Getenv("SIMULATE_NATIVE_BALANCE"); balance != "" {
		c.SimulatedBalance = balance
	}
}

// ContractAddress returns the wrapper contract address.
func (c *Config) ContractAddress() common.Address {
	return common.HexToAddress(WXOSContract)
}

// Validate checks if the configuration is valid. A simulated session needs
// neither an RPC endpoint nor a key.
func (c *Config) Validate() error {
	if !c.Simulate {
		if c.RPCURL == "" {
			return ErrMissingRPCURL
		}
		if c.PrivateKey == "" {
			return ErrMissingPrivateKey
		}
	}

	if c.ConfirmTimeout <= 0 {
		return fmt.Errorf("confirmation timeout must be positive, got: %s", c.ConfirmTimeout)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got: %s", c.PollInterval)
	}

	if c.Simulate {
		if _, err := units.ParseEther(c.SimulatedBalance); err != nil {
			return fmt.Errorf("invalid simulated balance %q: %w", c.SimulatedBalance, err)
		}
	}

	return nil
}
