package money

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// wireDigits is the fixed number of decimals the ledger API expects.
const wireDigits = 4

// Amount is a monetary value in major units.
type Amount struct {
	value decimal.Decimal
}

// NewAmount wraps a decimal value.
func NewAmount(d decimal.Decimal) Amount { return Amount{value: d} }

// ParseAmount parses a decimal string such as "1234.5000".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return Amount{value: d}, nil
}

// FromMinorUnits scales a provider integer amount by the currency's minor units.
func FromMinorUnits(raw int64, code string) (Amount, Currency, error) {
	cur, err := ParseCurrency(code)
	if err != nil {
		return Amount{}, "", err
	}
	return Amount{value: decimal.New(raw, -cur.Exponent())}, cur, nil
}

func (a Amount) Decimal() decimal.Decimal { return a.value }
func (a Amount) Equal(b Amount) bool      { return a.value.Equal(b.value) }
func (a Amount) IsNegative() bool         { return a.value.IsNegative() }
func (a Amount) IsZero() bool             { return a.value.IsZero() }

// String renders the amount with exactly four decimals.
func (a Amount) String() string { return a.value.StringFixed(wireDigits) }

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both "12.3400" and 12.34.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		a.value = decimal.Zero
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			a.value = decimal.Zero
			return nil
		}
		parsed, err := ParseAmount(s)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("parsing amount %s: %w", data, err)
	}
	a.value = d
	return nil
}
