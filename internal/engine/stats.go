package engine

import (
	"github.com/shopspring/decimal"

	"skoll/internal/common"
	"skoll/internal/num"
)

// BookStats summarises one book for inspection. It walks every level and
// carries no correctness weight.
type BookStats struct {
	Pair      string
	BidOrders int             // Number of bids resting in the book
	AskOrders int             // Number of asks resting in the book
	BidVolume decimal.Decimal // Bid-side liquidity
	AskVolume decimal.Decimal // Ask-side liquidity
}

func (book *OrderBook) Stats() BookStats {
	stats := BookStats{
		Pair:      book.Pair,
		BidVolume: num.Zero,
		AskVolume: num.Zero,
	}
	for _, level := range book.Levels(common.Buy) {
		stats.BidOrders += len(level.Orders)
		stats.BidVolume = stats.BidVolume.Add(level.TotalVolume)
	}
	for _, level := range book.Levels(common.Sell) {
		stats.AskOrders += len(level.Orders)
		stats.AskVolume = stats.AskVolume.Add(level.TotalVolume)
	}
	return stats
}

var two = decimal.NewFromInt(2)

// Mid returns the midpoint of the best bid and ask, false when either side
// is empty.
func (book *OrderBook) Mid() (decimal.Decimal, bool) {
	bid, bidOk := book.BestBid()
	ask, askOk := book.BestAsk()
	if !bidOk || !askOk {
		return decimal.Decimal{}, false
	}
	mid, err := num.Div(bid.Add(ask), two)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return mid, true
}
