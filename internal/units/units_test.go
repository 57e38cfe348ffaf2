package units

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"1.5", "1500000000000000000"},
		{".25", "250000000000000000"},
		{"0.000000000000000001", "1"},
		{" 2.10 ", "2100000000000000000"},
		{"3.", "3000000000000000000"},
		{"0", "0"},
		{"0.100000000000000000000", "100000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEther(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseEtherRejects(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrEmptyAmount},
		{"   ", ErrEmptyAmount},
		{"-1", ErrNegativeAmount},
		{"abc", ErrMalformedAmount},
		{".", ErrMalformedAmount},
		{"1e18", ErrMalformedAmount},
		{"1/3", ErrMalformedAmount},
		{"+1", ErrMalformedAmount},
		{"1.2.3", ErrMalformedAmount},
		{"0.0000000000000000001", ErrTooManyDecimals},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseEther(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFormatEther(t *testing.T) {
	wei, ok := new(big.Int).SetString("1234567890123456789", 10)
	require.True(t, ok)

	assert.Equal(t, "1.23456789", FormatBalance(wei))
	assert.Equal(t, "0.00000000", FormatBalance(nil))
	assert.Equal(t, "0.00000001", FormatBalance(big.NewInt(5_000_000_000)))
	assert.Equal(t, "0.00000000", FormatBalance(big.NewInt(4_999_999_999)))
	assert.Equal(t, "2.00", FormatEther(big.NewInt(1_999_000_000_000_000_000), 2))
}
