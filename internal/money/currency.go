package money

import (
	"errors"
	"fmt"
	"strings"
)

// Currency is a provider currency the sync pipeline knows how to scale.
type Currency string

const (
	CLP Currency = "CLP"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// ErrUnsupportedCurrency is matched by every UnsupportedCurrencyError.
var ErrUnsupportedCurrency = errors.New("currency not supported")

// UnsupportedCurrencyError reports a currency code outside the scale table.
type UnsupportedCurrencyError struct {
	Code string
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("currency %s is not supported", strings.ToUpper(e.Code))
}

func (e *UnsupportedCurrencyError) Is(target error) bool {
	return target == ErrUnsupportedCurrency
}

// exponents maps each supported currency to its number of minor-unit digits.
var exponents = map[Currency]int32{
	CLP: 0,
	USD: 2,
	EUR: 2,
}

// ParseCurrency resolves an ISO 4217 code, in any case, to a supported Currency.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := exponents[c]; !ok {
		return "", &UnsupportedCurrencyError{Code: code}
	}
	return c, nil
}

// Supported returns the known currencies in a stable order.
func Supported() []Currency {
	return []Currency{CLP, EUR, USD}
}

// Exponent returns the number of minor-unit digits.
func (c Currency) Exponent() int32 { return exponents[c] }

// Scale returns the divisor from minor units to major units (1 or 100).
func (c Currency) Scale() int64 {
	s := int64(1)
	for i := int32(0); i < c.Exponent(); i++ {
		s *= 10
	}
	return s
}

// Lower returns the lowercase ISO code used by the ledger.
func (c Currency) Lower() string { return strings.ToLower(string(c)) }

func (c Currency) String() string { return string(c) }
