package wrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/xos-wrap/internal/units"
)

func TestValidateAmount(t *testing.T) {
	bound := ether(t, "1.5")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"whole", "1", "1000000000000000000", nil},
		{"exact bound", "1.5", "1500000000000000000", nil},
		{"smallest unit", "0.000000000000000001", "1", nil},
		{"zero", "0", "", ErrAmountNotPositive},
		{"zero with decimals", "0.000", "", ErrAmountNotPositive},
		{"negative", "-1", "", ErrAmountNotPositive},
		{"above bound", "1.500000000000000001", "", ErrAmountExceedsBalance},
		{"empty", "", "", units.ErrEmptyAmount},
		{"text", "abc", "", units.ErrMalformedAmount},
		{"too precise", "0.0000000000000000001", "", units.ErrTooManyDecimals},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wei, err := ValidateAmount(tt.input, bound)
			if tt.wantErr != nil {
				var validation *ValidationError
				require.ErrorAs(t, err, &validation)
				assert.Equal(t, "amount", validation.Field)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, wei.String())
		})
	}
}

func TestValidateAmountWithoutBound(t *testing.T) {
	wei, err := ValidateAmount("1000000", nil)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000000", wei.String())
}

func TestValidateAmountMentionsMaximum(t *testing.T) {
	_, err := ValidateAmount("3", ether(t, "2.123456789"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max 2.12345679")
}

func TestValidateRepeatCount(t *testing.T) {
	n, err := ValidateRepeatCount(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	for _, input := range []string{"0", "-3", "", "two", "1.5"} {
		_, err := ValidateRepeatCount(input)
		assert.ErrorIs(t, err, ErrInvalidRepeatCount, "input %q", input)
	}
}
