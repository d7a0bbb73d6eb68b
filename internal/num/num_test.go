package num_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skoll/internal/num"
)

func mustParse(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := num.Parse(s)
	require.NoError(t, err)
	return d
}

func TestParse_RejectsNonNumeric(t *testing.T) {
	for _, s := range []string{"", "abc", "1.2.3", "50_000", "10 "} {
		_, err := num.Parse(s)
		assert.ErrorIs(t, err, num.ErrNumeric, "input %q", s)
	}
}

func TestParsePositive(t *testing.T) {
	_, err := num.ParsePositive("0.5")
	assert.NoError(t, err)

	for _, s := range []string{"0", "0.000", "-1", "-0.5"} {
		_, err := num.ParsePositive(s)
		assert.ErrorIs(t, err, num.ErrNumeric, "input %q", s)
	}
}

func TestCanonical(t *testing.T) {
	cases := map[string]string{
		"50000":    "50000",
		"50000.00": "50000",
		"1.500":    "1.5",
		"0.1000":   "0.1",
		"10.0":     "10",
		"0.000":    "0",
		"-2.50":    "-2.5",
		"1.25":     "1.25",
	}
	for in, want := range cases {
		assert.Equal(t, want, num.Canonical(mustParse(t, in)), "input %q", in)
	}
}

// Equal values must render identically no matter how they were produced.
func TestCanonical_ArithmeticIndependent(t *testing.T) {
	a := mustParse(t, "1.50")
	b := mustParse(t, "3.000").Sub(mustParse(t, "1.5"))
	c := mustParse(t, "0.75").Mul(mustParse(t, "2"))

	assert.Equal(t, "1.5", num.Canonical(a))
	assert.Equal(t, num.Canonical(a), num.Canonical(b))
	assert.Equal(t, num.Canonical(a), num.Canonical(c))
}

func TestCanonical_RoundTrips(t *testing.T) {
	for _, s := range []string{"50000", "1.5", "0.00000001", "123456789.000000001"} {
		d := mustParse(t, s)
		back := mustParse(t, num.Canonical(d))
		assert.True(t, back.Equal(d), "round trip of %q", s)
	}
}

func TestDiv(t *testing.T) {
	q, err := num.Div(mustParse(t, "10"), mustParse(t, "4"))
	require.NoError(t, err)
	assert.Equal(t, "2.5", num.Canonical(q))

	// 20 fractional digits carried on inexact quotients.
	q, err = num.Div(mustParse(t, "1"), mustParse(t, "3"))
	require.NoError(t, err)
	assert.Equal(t, "0.33333333333333333333", num.Canonical(q))
}

func TestDiv_HalfEven(t *testing.T) {
	one := mustParse(t, "1")

	// A tie at the last carried digit rounds to the even neighbour.
	q, err := num.Div(mustParse(t, "0.000000000000000000005"), one)
	require.NoError(t, err)
	assert.Equal(t, "0", num.Canonical(q))

	q, err = num.Div(mustParse(t, "0.000000000000000000015"), one)
	require.NoError(t, err)
	assert.Equal(t, "0.00000000000000000002", num.Canonical(q))
}

func TestDiv_ByZero(t *testing.T) {
	_, err := num.Div(mustParse(t, "1"), num.Zero)
	assert.ErrorIs(t, err, num.ErrNumeric)
	assert.ErrorIs(t, err, num.ErrDivisionByZero)
}
