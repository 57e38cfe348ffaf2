// Package wallet holds the signing identity used for every submitted transaction.
package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer is what the chain client needs to authorize a submission.
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Wallet is an address plus the key that signs for it. It is created once at
// startup and never changes afterwards.
type Wallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// FromHex builds a wallet from a hex private key, with or without 0x prefix.
func FromHex(privateKeyHex string) (*Wallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return fromKey(key)
}

// Generate creates a throwaway wallet, used by simulated sessions without a key.
func Generate() (*Wallet, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return fromKey(key)
}

func fromKey(key *ecdsa.PrivateKey) (*Wallet, error) {
	publicKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to derive public key")
	}
	return &Wallet{
		key:     key,
		address: crypto.PubkeyToAddress(*publicKey),
	}, nil
}

func (w *Wallet) Address() common.Address {
	return w.address
}

// SignTx signs tx for the given chain with the latest signer rules (EIP-1559 aware).
func (w *Wallet) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), w.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}
