package engine

// This is the main matching engine service. It owns every pair's book and
// the global trade log, and runs each command to completion before the next
// begins; callers wanting concurrency must serialize commands through a
// queue in front of it.

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"skoll/internal/common"
	"skoll/internal/num"
)

type Engine struct {
	log zerolog.Logger

	// Books maps pair to its order book. A book is created lazily on the
	// first command referencing its pair.
	Books map[string]*OrderBook

	trades      []common.Trade
	nextTradeID uint64
	clock       uint64 // ingestion counter, strictly monotonic
}

// New returns a fresh engine. The logger is injected rather than pulled
// from a package global so two engines can run side by side, and replaying
// the same input on a fresh engine reproduces identical output.
func New(log zerolog.Logger) *Engine {
	return &Engine{
		log:         log,
		Books:       make(map[string]*OrderBook),
		nextTradeID: 1,
	}
}

// Process runs one command to completion. Validation failures reject the
// command before any state change. A CREATE matches what it can and rests
// the remainder; a DELETE that finds nothing to cancel logs a warning and
// is not an error.
func (engine *Engine) Process(cmd common.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	op, err := common.ParseTypeOp(cmd.TypeOp)
	if err != nil {
		return err
	}

	engine.clock++
	order, err := cmd.Order(engine.clock)
	if err != nil {
		return err
	}

	book := engine.book(order.Pair)

	switch op {
	case common.Create:
		if err := book.match(order); err != nil {
			return err
		}
		if order.Amount.IsPositive() {
			book.rest(order)
		}
	case common.Delete:
		if !book.cancel(order) {
			engine.log.Warn().
				Str("orderId", order.OrderID).
				Str("pair", order.Pair).
				Str("side", order.Side.String()).
				Str("limitPrice", num.Canonical(order.LimitPrice)).
				Msg("cancel found no resting order")
		}
	}
	return nil
}

// ProcessAll runs commands in input order, stopping at the first error.
func (engine *Engine) ProcessAll(cmds []common.Command) error {
	for i, cmd := range cmds {
		if err := engine.Process(cmd); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
	}
	return nil
}

// book returns the pair's order book, creating it on first reference.
func (engine *Engine) book(pair string) *OrderBook {
	book, ok := engine.Books[pair]
	if !ok {
		book = NewOrderBook(engine, pair)
		engine.Books[pair] = book
	}
	return book
}

// recordTrade assigns the next trade id and appends the fill to the global
// log. price is the maker's resting limit price; the timestamp is the
// taker's ingestion stamp, which is the engine's current time.
func (engine *Engine) recordTrade(pair string, maker, taker *common.Order, amount, price decimal.Decimal) {
	trade := common.Trade{
		TradeID:        engine.nextTradeID,
		Pair:           pair,
		MakerOrderID:   maker.OrderID,
		TakerOrderID:   taker.OrderID,
		MakerAccountID: maker.AccountID,
		TakerAccountID: taker.AccountID,
		Amount:         amount,
		Price:          price,
		Timestamp:      taker.Timestamp,
	}
	engine.nextTradeID++
	engine.trades = append(engine.trades, trade)

	engine.log.Debug().
		Uint64("tradeId", trade.TradeID).
		Str("pair", pair).
		Str("maker", maker.OrderID).
		Str("taker", taker.OrderID).
		Str("amount", num.Canonical(amount)).
		Str("price", num.Canonical(price)).
		Msg("trade")
}

// Trades returns the global trade log in emission order.
func (engine *Engine) Trades() []common.Trade {
	return engine.trades
}

// Pairs returns every pair with a book, sorted for stable serialization.
func (engine *Engine) Pairs() []string {
	pairs := make([]string, 0, len(engine.Books))
	for pair := range engine.Books {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return pairs
}
