package wire

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"skoll/internal/common"
	"skoll/internal/engine"
	"skoll/internal/num"
)

// BookEntry is one resting order in the order book document. Decimal fields
// are canonical strings.
type BookEntry struct {
	OrderID    string `json:"order_id"`
	AccountID  string `json:"account_id"`
	Amount     string `json:"amount"`
	LimitPrice string `json:"limit_price"`
	Timestamp  uint64 `json:"timestamp"`
}

// BookSides holds one pair's final resting book: bids in descending price
// order, asks ascending, FIFO within a price.
type BookSides struct {
	Bids []BookEntry `json:"bids"`
	Asks []BookEntry `json:"asks"`
}

// BookDocument maps each traded pair to its final resting book.
type BookDocument map[string]BookSides

// TradeRecord is one element of the trades document, in emission order.
// trade_id, amount and price are decimal strings.
type TradeRecord struct {
	TradeID        string `json:"trade_id"`
	Pair           string `json:"pair"`
	MakerOrderID   string `json:"maker_order_id"`
	TakerOrderID   string `json:"taker_order_id"`
	MakerAccountID string `json:"maker_account_id"`
	TakerAccountID string `json:"taker_account_id"`
	Amount         string `json:"amount"`
	Price          string `json:"price"`
	Timestamp      uint64 `json:"timestamp"`
}

// BuildBookDocument serializes every book. Traversal is a pure read, so
// building the document twice from an unmutated engine yields identical
// bytes (pair keys sort on marshal, levels come out in priority order).
func BuildBookDocument(eng *engine.Engine) BookDocument {
	doc := make(BookDocument, len(eng.Books))
	for _, pair := range eng.Pairs() {
		book := eng.Books[pair]
		doc[pair] = BookSides{
			Bids: sideEntries(book, common.Buy),
			Asks: sideEntries(book, common.Sell),
		}
	}
	return doc
}

func sideEntries(book *engine.OrderBook, side common.Side) []BookEntry {
	// Empty sides marshal as [], not null.
	entries := make([]BookEntry, 0)
	for _, level := range book.Levels(side) {
		for _, order := range level.Orders {
			entries = append(entries, BookEntry{
				OrderID:    order.OrderID,
				AccountID:  order.AccountID,
				Amount:     num.Canonical(order.Amount),
				LimitPrice: num.Canonical(order.LimitPrice),
				Timestamp:  order.Timestamp,
			})
		}
	}
	return entries
}

// BuildTradesDocument serializes the global trade log in emission order.
func BuildTradesDocument(trades []common.Trade) []TradeRecord {
	records := make([]TradeRecord, 0, len(trades))
	for _, t := range trades {
		records = append(records, TradeRecord{
			TradeID:        strconv.FormatUint(t.TradeID, 10),
			Pair:           t.Pair,
			MakerOrderID:   t.MakerOrderID,
			TakerOrderID:   t.TakerOrderID,
			MakerAccountID: t.MakerAccountID,
			TakerAccountID: t.TakerAccountID,
			Amount:         num.Canonical(t.Amount),
			Price:          num.Canonical(t.Price),
			Timestamp:      t.Timestamp,
		})
	}
	return records
}

// WriteDocument marshals doc and writes it to path.
func WriteDocument(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrIO, path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
