package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in    string
		minor int64
	}{
		{"1.234.567,89", 123456789},
		{"1,234.56", 123456},
		{"1.234", 123400},
		{"Rp 1.500.000,00", 150000000},
		{"Rp. 250.000", 25000000},
		{"12,5", 1250},
		{"1234", 123400},
		{"00012", 1200},
		{"000", 0},
		{"1.5", 150},
		{"10,005", 1001},
		{"1.000.", 100000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.minor, got.Minor())
		})
	}
}

func TestParseAmountInvalid(t *testing.T) {
	for _, in := range []string{"", "Rp", "..,", "abc", "99999999999999999999"} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, common.ErrInvalidNumber, in)
	}
}

func TestZeroIsDistinctFromInvalid(t *testing.T) {
	zero, err := ParseAmount("0")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = ParseAmount("")
	assert.Error(t, err)
}

func TestAmountFloat(t *testing.T) {
	a, err := ParseAmount("1.234.567,89")
	require.NoError(t, err)
	assert.InDelta(t, 1234567.89, a.Float64(), 1e-9)
	assert.Equal(t, int64(1234567), a.Units())
	assert.False(t, a.IsWhole())
}

func TestNormalizeAmountIdempotent(t *testing.T) {
	for _, in := range []string{"1.234.567,89", "1,234.56", "1.234", "12,5", "1,234.567", "0", "Rp 7.000,05"} {
		once, err := NormalizeAmount(in)
		require.NoError(t, err, in)
		twice, err := NormalizeAmount(once)
		require.NoError(t, err, once)
		assert.Equal(t, once, twice, in)
	}
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "1500000", AmountFromUnits(1500000).String())
	assert.Equal(t, "12.5", AmountFromMinor(1250).String())
	assert.Equal(t, "12.05", AmountFromMinor(1205).String())
}

func TestAmountJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Amount `json:"amount"`
	}{AmountFromMinor(123456)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":1234.56}`, string(b))

	var out struct {
		Amount Amount `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":1500000}`), &out))
	assert.Equal(t, AmountFromUnits(1500000), out.Amount)
}

func TestAmountCmp(t *testing.T) {
	assert.Equal(t, -1, AmountFromUnits(1).Cmp(AmountFromUnits(2)))
	assert.Equal(t, 0, AmountFromUnits(2).Cmp(AmountFromMinor(200)))
	assert.Equal(t, 1, AmountFromUnits(3).Cmp(AmountFromUnits(2)))
}
