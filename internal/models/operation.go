package models

type OperationKind string

const (
	Wrap   OperationKind = "wrap"
	Unwrap OperationKind = "unwrap"
)

// Method is the wrapper contract entry point for the operation.
func (k OperationKind) Method() string {
	if k == Unwrap {
		return "withdraw"
	}
	return "deposit"
}

// Asset is the symbol of the asset being spent.
func (k OperationKind) Asset() string {
	if k == Unwrap {
		return "WXOS"
	}
	return "XOS"
}

// Verb is the progressive form used in status lines.
func (k OperationKind) Verb() string {
	if k == Unwrap {
		return "Unwrapping"
	}
	return "Wrapping"
}
