package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// FeeParams is the EIP-1559 fee pair offered per unit of gas.
type FeeParams struct {
	GasTipCap *big.Int
	GasFeeCap *big.Int
}

// TransactionRequest is built fresh for every attempt.
type TransactionRequest struct {
	Kind   OperationKind
	Amount string
	Fees   FeeParams
}

// ContractCall describes one invocation of the wrapper contract.
type ContractCall struct {
	From   common.Address
	Method string
	Args   []interface{}
	Value  *big.Int
	Fees   FeeParams
}

// TxHandle identifies a broadcast transaction.
type TxHandle struct {
	Hash     common.Hash
	Nonce    uint64
	GasLimit uint64
}

type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Status      uint64
}

// Succeeded reports whether the transaction executed without reverting.
func (r Receipt) Succeeded() bool {
	return r.Status == 1
}

// Position locates an attempt inside a loop run, 1-based.
type Position struct {
	Current int
	Total   int
}

func (p Position) String() string {
	return itoa(p.Current) + "/" + itoa(p.Total)
}
