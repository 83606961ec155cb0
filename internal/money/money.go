// Package money implements the price field of the product form: a numeric
// value kept in sync with a display string in the pt-BR/BRL convention
// ("R$ 1.234,56").
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	currencySymbol    = "R$"
	decimalSeparator  = ","
	thousandSeparator = "."
)

var hundred = decimal.NewFromInt(100)

// Format renders v with two fixed fractional digits, a decimal comma and
// dot-grouped thousands.
func Format(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	fixed := v.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + currencySymbol + " " + group(intPart) + decimalSeparator + frac
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(thousandSeparator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Digits strips everything that is not an ASCII digit.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Parse reads raw as a keystroke buffer: its digits are a count of cents.
// Input without digits is zero.
func Parse(raw string) decimal.Decimal {
	digits := Digits(raw)
	if digits == "" {
		return decimal.Zero
	}
	cents, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero
	}
	return cents.Div(hundred)
}

// Input is the state of one money field.
type Input struct {
	value    decimal.Decimal
	display  string
	onChange func(decimal.Decimal)
}

// New starts a field at value. A zero value shows an empty field so the
// placeholder is visible.
func New(value decimal.Decimal, onChange func(decimal.Decimal)) *Input {
	in := &Input{value: value, onChange: onChange}
	if !value.IsZero() {
		in.display = Format(value)
	}
	return in
}

// Keystroke applies the raw field content after a key press and notifies the owner.
func (in *Input) Keystroke(raw string) decimal.Decimal {
	if Digits(raw) == "" {
		in.value = decimal.Zero
		in.display = ""
	} else {
		in.value = Parse(raw)
		in.display = Format(in.value)
	}
	if in.onChange != nil {
		in.onChange(in.value)
	}
	return in.value
}

func (in *Input) Value() decimal.Decimal { return in.value }

func (in *Input) Display() string { return in.display }
