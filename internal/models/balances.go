package models

import "math/big"

// Balances is a snapshot of the wallet's native and wrapped holdings.
// Native and Wrapped are formatted with 8 fractional digits for display;
// the Wei fields keep the exact ledger amounts used for bound checks.
type Balances struct {
	Native     string
	Wrapped    string
	NativeWei  *big.Int
	WrappedWei *big.Int
}

// Bound returns the exact amount available to an operation of the given kind.
func (b Balances) Bound(kind OperationKind) *big.Int {
	var v *big.Int
	if kind == Unwrap {
		v = b.WrappedWei
	} else {
		v = b.NativeWei
	}
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// Display returns the formatted balance for the given kind.
func (b Balances) Display(kind OperationKind) string {
	if kind == Unwrap {
		return b.Wrapped
	}
	return b.Native
}
