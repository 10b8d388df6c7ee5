package money

import (
	gomoney "github.com/Rhymond/go-money"
)

// Display renders an amount for humans, with the currency's symbol and
// natural precision. It is unrelated to the four-decimal wire format.
func Display(a Amount, c Currency) string {
	cur := gomoney.GetCurrency(string(c))
	if cur == nil {
		return a.String() + " " + string(c)
	}
	minor := a.value.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}
