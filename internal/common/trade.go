package common

import (
	"fmt"

	"github.com/shopspring/decimal"

	"skoll/internal/num"
)

// Trade accounts for the two parties who matched. Once emitted it is never
// mutated; the global log is append-only.
type Trade struct {
	TradeID        uint64          // Monotonic, starting at 1
	Pair           string          // Pair of both parties
	MakerOrderID   string          // Resting order
	TakerOrderID   string          // Incoming order
	MakerAccountID string
	TakerAccountID string
	Amount         decimal.Decimal // Filled volume, strictly positive
	Price          decimal.Decimal // The maker's resting limit price
	Timestamp      uint64          // Taker's ingestion stamp
}

func (t Trade) String() string {
	return fmt.Sprintf("#%d %s %s@%s maker=%s taker=%s",
		t.TradeID,
		t.Pair,
		num.Canonical(t.Amount),
		num.Canonical(t.Price),
		t.MakerOrderID,
		t.TakerOrderID,
	)
}
