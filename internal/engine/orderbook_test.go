package engine_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skoll/internal/common"
	"skoll/internal/engine"
	"skoll/internal/num"
)

// --- Setup & Helpers --------------------------------------------------------

const pair = "BTC/USDC"

func newTestEngine() *engine.Engine {
	return engine.New(zerolog.Nop())
}

func create(account, id, side, amount, price string) common.Command {
	return common.Command{
		TypeOp:     "CREATE",
		AccountID:  account,
		OrderID:    id,
		Pair:       pair,
		Side:       side,
		Amount:     amount,
		LimitPrice: price,
	}
}

func cancel(account, id, side, amount, price string) common.Command {
	cmd := create(account, id, side, amount, price)
	cmd.TypeOp = "DELETE"
	return cmd
}

// processAll feeds commands in order and verifies the structural book
// invariants after every one.
func processAll(t *testing.T, eng *engine.Engine, cmds ...common.Command) {
	t.Helper()
	for _, cmd := range cmds {
		require.NoError(t, eng.Process(cmd))
		for _, book := range eng.Books {
			require.NoError(t, book.Check())
		}
	}
}

// Snapshots compare books and trades on canonical strings, which keeps
// decimal equality independent of internal representation.

type entrySnap struct {
	id     string
	amount string
}

type levelSnap struct {
	price   string
	volume  string
	entries []entrySnap
}

func snapSide(t *testing.T, eng *engine.Engine, side common.Side) []levelSnap {
	t.Helper()
	book, ok := eng.Books[pair]
	require.True(t, ok)

	levels := book.Levels(side)
	snaps := make([]levelSnap, 0, len(levels))
	for _, level := range levels {
		snap := levelSnap{
			price:  num.Canonical(level.Price),
			volume: num.Canonical(level.TotalVolume),
		}
		for _, order := range level.Orders {
			snap.entries = append(snap.entries, entrySnap{
				id:     order.OrderID,
				amount: num.Canonical(order.Amount),
			})
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

type tradeSnap struct {
	maker  string
	taker  string
	amount string
	price  string
}

func snapTrades(eng *engine.Engine) []tradeSnap {
	snaps := make([]tradeSnap, 0, len(eng.Trades()))
	for _, trade := range eng.Trades() {
		snaps = append(snaps, tradeSnap{
			maker:  trade.MakerOrderID,
			taker:  trade.TakerOrderID,
			amount: num.Canonical(trade.Amount),
			price:  num.Canonical(trade.Price),
		})
	}
	return snaps
}

// --- Tests ------------------------------------------------------------------

func TestRest_LevelsSortedBestFirst(t *testing.T) {
	eng := newTestEngine()

	// Bids arrive out of price order, asks too.
	processAll(t, eng,
		create("1", "b1", "BUY", "10", "49000"),
		create("1", "b2", "BUY", "10", "49500"),
		create("1", "b3", "BUY", "10", "48000"),
		create("2", "a1", "SELL", "5", "50500"),
		create("2", "a2", "SELL", "5", "50000"),
	)

	assert.Equal(t, []levelSnap{
		{price: "49500", volume: "10", entries: []entrySnap{{"b2", "10"}}},
		{price: "49000", volume: "10", entries: []entrySnap{{"b1", "10"}}},
		{price: "48000", volume: "10", entries: []entrySnap{{"b3", "10"}}},
	}, snapSide(t, eng, common.Buy), "bids should be sorted high -> low")

	assert.Equal(t, []levelSnap{
		{price: "50000", volume: "5", entries: []entrySnap{{"a2", "5"}}},
		{price: "50500", volume: "5", entries: []entrySnap{{"a1", "5"}}},
	}, snapSide(t, eng, common.Sell), "asks should be sorted low -> high")

	assert.Empty(t, snapTrades(eng))
}

func TestRest_SamePriceSharesLevel(t *testing.T) {
	eng := newTestEngine()

	// Equal prices written differently must land on one level.
	processAll(t, eng,
		create("1", "b1", "BUY", "10", "49000"),
		create("1", "b2", "BUY", "5", "49000.00"),
	)

	assert.Equal(t, []levelSnap{
		{price: "49000", volume: "15", entries: []entrySnap{{"b1", "10"}, {"b2", "5"}}},
	}, snapSide(t, eng, common.Buy))
}

func TestBestAndSpread(t *testing.T) {
	eng := newTestEngine()
	processAll(t, eng, create("1", "b1", "BUY", "10", "49000"))

	book := eng.Books[pair]

	bid, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, "49000", num.Canonical(bid))

	_, ok = book.BestAsk()
	assert.False(t, ok)
	_, ok = book.Spread()
	assert.False(t, ok, "spread needs both sides")

	processAll(t, eng, create("2", "a1", "SELL", "10", "49750"))

	spread, ok := book.Spread()
	require.True(t, ok)
	assert.Equal(t, "750", num.Canonical(spread))

	mid, ok := book.Mid()
	require.True(t, ok)
	assert.Equal(t, "49375", num.Canonical(mid))
}

func TestCancel_RemovesEntryAndEmptyLevel(t *testing.T) {
	eng := newTestEngine()
	processAll(t, eng,
		create("1", "b1", "BUY", "10", "49000"),
		create("1", "b2", "BUY", "5", "49000"),
		create("1", "b3", "BUY", "7", "48000"),
	)

	// Middle of a level.
	processAll(t, eng, cancel("1", "b2", "BUY", "5", "49000"))
	assert.Equal(t, []levelSnap{
		{price: "49000", volume: "10", entries: []entrySnap{{"b1", "10"}}},
		{price: "48000", volume: "7", entries: []entrySnap{{"b3", "7"}}},
	}, snapSide(t, eng, common.Buy))

	// Last entry of a level removes the level.
	processAll(t, eng, cancel("1", "b3", "BUY", "7", "48000"))
	assert.Equal(t, []levelSnap{
		{price: "49000", volume: "10", entries: []entrySnap{{"b1", "10"}}},
	}, snapSide(t, eng, common.Buy))
}

func TestCancel_LocatorHintMustAgree(t *testing.T) {
	eng := newTestEngine()
	processAll(t, eng, create("1", "b1", "BUY", "10", "49000"))
	before := snapSide(t, eng, common.Buy)

	// Wrong price, wrong side, unknown id: all fail without touching the
	// book. A failed cancel is a warning, not an error.
	processAll(t, eng,
		cancel("1", "b1", "BUY", "10", "49500"),
		cancel("1", "b1", "SELL", "10", "49000"),
		cancel("1", "zz", "BUY", "10", "49000"),
	)

	assert.Equal(t, before, snapSide(t, eng, common.Buy))
	assert.Empty(t, snapTrades(eng))
}

func TestStats(t *testing.T) {
	eng := newTestEngine()
	processAll(t, eng,
		create("1", "b1", "BUY", "10", "49000"),
		create("1", "b2", "BUY", "2.5", "48000"),
		create("2", "a1", "SELL", "4", "50000"),
	)

	stats := eng.Books[pair].Stats()
	assert.Equal(t, pair, stats.Pair)
	assert.Equal(t, 2, stats.BidOrders)
	assert.Equal(t, 1, stats.AskOrders)
	assert.Equal(t, "12.5", num.Canonical(stats.BidVolume))
	assert.Equal(t, "4", num.Canonical(stats.AskVolume))
}
