// Package num is the decimal facade for the engine. Prices and volumes are
// shopspring decimals end to end; this package supplies the operations the
// library leaves unsafe (division panics on zero) or unspecified (a
// canonical rendering usable as an identity).
package num

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNumeric        = errors.New("numeric error")
	ErrDivisionByZero = fmt.Errorf("%w: division by zero", ErrNumeric)
)

// divScale is the number of fractional digits carried by Div.
const divScale = 20

// Zero is the shared zero constant.
var Zero = decimal.Zero

// Parse reads a decimal from its string form. The accepted syntax is
// whatever shopspring accepts; failures wrap ErrNumeric.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: parsing %q", ErrNumeric, s)
	}
	return d, nil
}

// ParsePositive parses a decimal that must be strictly positive, the shape
// of every order amount and limit price.
func ParsePositive(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not strictly positive", ErrNumeric, s)
	}
	return d, nil
}

// Div divides a by b carrying divScale fractional digits, with a half-even
// final rounding. A zero divisor returns ErrDivisionByZero instead of the
// library's panic. Division never sits on the matching path.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Decimal{}, ErrDivisionByZero
	}
	return a.DivRound(b, divScale+1).RoundBank(divScale), nil
}

// Canonical renders d in its canonical string form: integers carry no
// fractional part, anything else has trailing fractional zeros (and any
// trailing '.') stripped. Equal values always render identically, and
// Parse(Canonical(x)) equals x.
func Canonical(d decimal.Decimal) string {
	s := d.String()
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}
