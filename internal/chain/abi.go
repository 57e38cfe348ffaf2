package chain

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed wxos.abi.json
var wxosABIJSON string

// WrapperABI parses the subset of the WETH-style wrapper ABI the tool uses.
func WrapperABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(wxosABIJSON))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse wrapper ABI: %w", err)
	}
	return parsed, nil
}
