package money

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMinorUnits(t *testing.T) {
	tests := []struct {
		raw  int64
		code string
		want string
		cur  Currency
	}{
		{150, "USD", "1.5000", USD},
		{-4599, "usd", "-45.9900", USD},
		{100, "EUR", "1.0000", EUR},
		{1500, "CLP", "1500.0000", CLP},
		{-23990, "clp", "-23990.0000", CLP},
		{0, "USD", "0.0000", USD},
	}
	for _, tt := range tests {
		a, cur, err := FromMinorUnits(tt.raw, tt.code)
		require.NoError(t, err, "FromMinorUnits(%d, %q)", tt.raw, tt.code)
		assert.Equal(t, tt.want, a.String())
		assert.Equal(t, tt.cur, cur)
	}
}

func TestFromMinorUnits_MatchesScaledFloat(t *testing.T) {
	for _, cur := range Supported() {
		for _, raw := range []int64{1, 7, 99, 12345, -50001} {
			a, _, err := FromMinorUnits(raw, string(cur))
			require.NoError(t, err)
			want := fmt.Sprintf("%.4f", float64(raw)/float64(cur.Scale()))
			assert.Equal(t, want, a.String(), "%d %s", raw, cur)
		}
	}
}

func TestFromMinorUnits_Unsupported(t *testing.T) {
	for _, code := range []string{"GBP", "", "clpx", "JPY"} {
		_, _, err := FromMinorUnits(100, code)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedCurrency)
	}
}

func TestUnsupportedCurrencyError_Message(t *testing.T) {
	_, err := ParseCurrency("gbp")
	var uerr *UnsupportedCurrencyError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "gbp", uerr.Code)
	assert.Equal(t, "currency GBP is not supported", err.Error())
}

func TestCurrencyScale(t *testing.T) {
	assert.Equal(t, int64(1), CLP.Scale())
	assert.Equal(t, int64(100), USD.Scale())
	assert.Equal(t, int64(100), EUR.Scale())
	assert.Equal(t, "clp", CLP.Lower())
}

func TestAmountEqual(t *testing.T) {
	a, err := ParseAmount("12.5")
	require.NoError(t, err)
	b, err := ParseAmount("12.5000")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.False(t, a.IsNegative())
}

func TestAmountJSON(t *testing.T) {
	a, _, err := FromMinorUnits(123456, "USD")
	require.NoError(t, err)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"1234.5600"`, string(data))

	var fromString, fromNumber Amount
	require.NoError(t, json.Unmarshal([]byte(`"1234.56"`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`1234.56`), &fromNumber))
	assert.True(t, a.Equal(fromString))
	assert.True(t, a.Equal(fromNumber))

	var bad Amount
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &bad))
}

func TestDisplay(t *testing.T) {
	a, _, err := FromMinorUnits(123450, "USD")
	require.NoError(t, err)
	assert.Equal(t, "$1,234.50", Display(a, USD))

	neg, _, err := FromMinorUnits(-400, "USD")
	require.NoError(t, err)
	assert.Equal(t, "-$4.00", Display(neg, USD))
}
