package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"skoll/internal/num"
)

// Command is one raw entry of the input document. Every field arrives as a
// string; the numeric ones stay strings until promotion so nothing is lost
// on the way in.
type Command struct {
	TypeOp     string `json:"type_op"`
	AccountID  string `json:"account_id"`
	OrderID    string `json:"order_id"`
	Pair       string `json:"pair"`
	Side       string `json:"side"`
	Amount     string `json:"amount"`
	LimitPrice string `json:"limit_price"`
}

// Validate rejects a command before it can touch any state: required fields
// present, enums known, pair shaped BASE/QUOTE, amount and limit price
// strictly positive decimals. All failures wrap ErrValidation.
func (c Command) Validate() error {
	if _, err := ParseTypeOp(c.TypeOp); err != nil {
		return err
	}
	if c.AccountID == "" {
		return fmt.Errorf("%w: missing account_id", ErrValidation)
	}
	if c.OrderID == "" {
		return fmt.Errorf("%w: missing order_id", ErrValidation)
	}
	base, quote, ok := strings.Cut(c.Pair, "/")
	if !ok || base == "" || quote == "" {
		return fmt.Errorf("%w: malformed pair %q", ErrValidation, c.Pair)
	}
	if _, err := ParseSide(c.Side); err != nil {
		return err
	}
	for _, field := range []struct{ name, value string }{
		{"amount", c.Amount},
		{"limit_price", c.LimitPrice},
	} {
		d, err := num.Parse(field.value)
		if err != nil {
			return fmt.Errorf("%w: %s %q is not numeric", ErrValidation, field.name, field.value)
		}
		if d.Sign() <= 0 {
			return fmt.Errorf("%w: %s %q must be strictly positive", ErrValidation, field.name, field.value)
		}
	}
	return nil
}

// Order promotes an accepted command: decimals parsed, side typed, and the
// service's ingestion counter stamped on. The counter, not wall clock, is
// the only notion of time in the engine.
func (c Command) Order(timestamp uint64) (*Order, error) {
	side, err := ParseSide(c.Side)
	if err != nil {
		return nil, err
	}
	amount, err := num.ParsePositive(c.Amount)
	if err != nil {
		return nil, err
	}
	price, err := num.ParsePositive(c.LimitPrice)
	if err != nil {
		return nil, err
	}

	return &Order{
		OrderID:    c.OrderID,
		AccountID:  c.AccountID,
		Pair:       c.Pair,
		Side:       side,
		Amount:     amount,
		LimitPrice: price,
		Timestamp:  timestamp,
	}, nil
}

type Order struct {
	OrderID    string          // Order tracked id, unique per CREATE
	AccountID  string          // Who owns this order
	Pair       string          // BASE/QUOTE pair the order trades
	Side       Side            // Order side
	LimitPrice decimal.Decimal // Limiting price
	Amount     decimal.Decimal // Remaining volume
	Timestamp  uint64          // Ingestion counter value at promotion
}

func (order Order) String() string {
	return fmt.Sprintf("%s %s %s %s@%s ts=%d",
		order.Side,
		order.Pair,
		order.OrderID,
		num.Canonical(order.Amount),
		num.Canonical(order.LimitPrice),
		order.Timestamp,
	)
}
