package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"skoll/internal/common"
	"skoll/internal/num"
)

// ErrMatching marks an engine invariant breach. It indicates a bug, not a
// user error, and is fatal to the run.
var ErrMatching = errors.New("matching invariant violated")

// PriceLevel holds the resting orders at a single price on one side. Orders
// are appended on arrival, so slice order is time priority; TotalVolume is
// the sum of their remaining amounts.
type PriceLevel struct {
	Price       decimal.Decimal
	Orders      []*common.Order
	TotalVolume decimal.Decimal
}

type PriceLevels = btree.BTreeG[*PriceLevel]

// OrderBook is a per-pair book of two sides. A level exists only while it
// has orders: it is created on first rest at its price and deleted in the
// same operation that empties it.
type OrderBook struct {
	// Pointer to the owning engine, which assigns trade ids and keeps the
	// global trade log.
	engine *Engine

	Pair string

	// Price levels sorted best-first: bids greatest price first, asks least
	// price first. Orders within a level are FIFO as they are push-back'd.
	Bids *PriceLevels
	Asks *PriceLevels
}

func NewOrderBook(engine *Engine, pair string) *OrderBook {
	// Sorted greatest first.
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.GreaterThan(b.Price)
	})
	// Sorted least first.
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.LessThan(b.Price)
	})
	return &OrderBook{
		engine: engine,
		Pair:   pair,
		Bids:   bids,
		Asks:   asks,
	}
}

// SideFor returns the side an order of the given side rests on.
func (book *OrderBook) SideFor(side common.Side) *PriceLevels {
	if side == common.Buy {
		return book.Bids
	}
	return book.Asks
}

// opposite returns the side an order of the given side matches against.
func (book *OrderBook) opposite(side common.Side) *PriceLevels {
	if side == common.Buy {
		return book.Asks
	}
	return book.Bids
}

// BestBid returns the highest resting buy price.
func (book *OrderBook) BestBid() (decimal.Decimal, bool) {
	level, ok := book.Bids.Min()
	if !ok {
		return decimal.Decimal{}, false
	}
	return level.Price, true
}

// BestAsk returns the lowest resting sell price.
func (book *OrderBook) BestAsk() (decimal.Decimal, bool) {
	level, ok := book.Asks.Min()
	if !ok {
		return decimal.Decimal{}, false
	}
	return level.Price, true
}

// Spread returns best ask minus best bid, false when either side is empty.
func (book *OrderBook) Spread() (decimal.Decimal, bool) {
	bid, bidOk := book.BestBid()
	ask, askOk := book.BestAsk()
	if !bidOk || !askOk {
		return decimal.Decimal{}, false
	}
	return ask.Sub(bid), true
}

// Levels returns the side's price levels in priority order.
func (book *OrderBook) Levels(side common.Side) []*PriceLevel {
	return book.SideFor(side).Items()
}

// crosses reports whether the taker's limit is compatible with a resting
// level at price: a buyer pays up to its limit, a seller accepts down to it.
func crosses(taker *common.Order, price decimal.Decimal) bool {
	if taker.Side == common.Buy {
		return taker.LimitPrice.GreaterThanOrEqual(price)
	}
	return taker.LimitPrice.LessThanOrEqual(price)
}

// match consumes marketable volume on the side opposite the taker, walking
// price levels best-first and orders within a level oldest-first. The
// taker's Amount is decremented in place, so after return it carries
// exactly the residual the caller may rest. Consumed makers and emptied
// levels are removed before the walk moves on.
//
// Trades are emitted through the owning engine in generation order, priced
// at the maker's resting limit. Matching a maker and taker of the same
// account is permitted.
func (book *OrderBook) match(taker *common.Order) error {
	oppo := book.opposite(taker.Side)

	for taker.Amount.IsPositive() {
		level, ok := oppo.MinMut()
		if !ok {
			break
		}
		// Levels beyond this one are strictly worse for the taker, so the
		// first incompatible price ends the walk.
		if !crosses(taker, level.Price) {
			break
		}

		// Fill against resting orders oldest first. Both amounts are
		// strictly positive here, so every fill is strictly positive.
		var consumed int
		for _, maker := range level.Orders {
			fill := decimal.Min(taker.Amount, maker.Amount)
			taker.Amount = taker.Amount.Sub(fill)
			maker.Amount = maker.Amount.Sub(fill)
			level.TotalVolume = level.TotalVolume.Sub(fill)

			book.engine.recordTrade(book.Pair, maker, taker, fill, level.Price)

			if maker.Amount.IsZero() {
				consumed++
			}
			if taker.Amount.IsZero() {
				break
			}
		}

		if level.TotalVolume.IsNegative() {
			return fmt.Errorf("%w: negative volume at %s level %s",
				ErrMatching, book.Pair, num.Canonical(level.Price))
		}

		// Fully consumed makers form a prefix of the queue.
		if consumed > 0 {
			level.Orders = level.Orders[consumed:]
		}
		if len(level.Orders) == 0 {
			oppo.Delete(level)
		}
	}
	return nil
}

// rest places the order's residual on its own side. The price level is
// created lazily on first use.
func (book *OrderBook) rest(order *common.Order) {
	levels := book.SideFor(order.Side)

	// The comparators only read prices, so a probe level is enough for the
	// lookup.
	level, ok := levels.GetMut(&PriceLevel{Price: order.LimitPrice})
	if !ok {
		level = &PriceLevel{Price: order.LimitPrice, TotalVolume: num.Zero}
		levels.Set(level)
	}
	level.Orders = append(level.Orders, order)
	level.TotalVolume = level.TotalVolume.Add(order.Amount)
}

// cancel removes the resting order located by the command's side, limit
// price and order id. The side and price are a strict locator: if either
// disagrees with where the order actually rests, nothing is removed and
// cancel reports false.
func (book *OrderBook) cancel(order *common.Order) bool {
	levels := book.SideFor(order.Side)

	level, ok := levels.GetMut(&PriceLevel{Price: order.LimitPrice})
	if !ok {
		return false
	}
	for i, resting := range level.Orders {
		if resting.OrderID != order.OrderID {
			continue
		}
		level.Orders = append(level.Orders[:i], level.Orders[i+1:]...)
		level.TotalVolume = level.TotalVolume.Sub(resting.Amount)
		if len(level.Orders) == 0 {
			levels.Delete(level)
		}
		return true
	}
	return false
}

// Check verifies the book's structural invariants: every level non-empty
// with TotalVolume equal to the sum of its order amounts, sides strictly
// ordered, and the book uncrossed. Any breach wraps ErrMatching.
func (book *OrderBook) Check() error {
	for _, side := range []common.Side{common.Buy, common.Sell} {
		var prev *PriceLevel
		for _, level := range book.Levels(side) {
			if len(level.Orders) == 0 {
				return fmt.Errorf("%w: empty %s level %s in tree",
					ErrMatching, side, num.Canonical(level.Price))
			}
			sum := num.Zero
			for _, order := range level.Orders {
				if !order.Amount.IsPositive() {
					return fmt.Errorf("%w: non-positive resting amount for %s",
						ErrMatching, order.OrderID)
				}
				sum = sum.Add(order.Amount)
			}
			if !sum.Equal(level.TotalVolume) {
				return fmt.Errorf("%w: %s level %s volume %s != sum %s",
					ErrMatching, side, num.Canonical(level.Price),
					num.Canonical(level.TotalVolume), num.Canonical(sum))
			}
			if prev != nil {
				inOrder := level.Price.LessThan(prev.Price)
				if side == common.Sell {
					inOrder = level.Price.GreaterThan(prev.Price)
				}
				if !inOrder {
					return fmt.Errorf("%w: %s levels out of order at %s",
						ErrMatching, side, num.Canonical(level.Price))
				}
			}
			prev = level
		}
	}

	bid, bidOk := book.BestBid()
	ask, askOk := book.BestAsk()
	if bidOk && askOk && bid.GreaterThanOrEqual(ask) {
		return fmt.Errorf("%w: crossed book %s: bid %s >= ask %s",
			ErrMatching, book.Pair, num.Canonical(bid), num.Canonical(ask))
	}
	return nil
}
