package main

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"skoll/internal/common"
	"skoll/internal/num"
	"skoll/internal/wire"
)

var (
	genOrders   int
	genAccounts int
	genPairs    []string
	genSeed     int64
	genOut      string
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a deterministic sample input document",
	RunE:  runGen,
}

func init() {
	genCmd.Flags().IntVar(&genOrders, "orders", 100, "number of commands to generate")
	genCmd.Flags().IntVar(&genAccounts, "accounts", 5, "number of distinct accounts")
	genCmd.Flags().StringSliceVar(&genPairs, "pairs", []string{"BTC/USDC"},
		"trading pairs to spread commands across")
	genCmd.Flags().Int64Var(&genSeed, "seed", 1,
		"rng seed; the same seed reproduces the same document")
	genCmd.Flags().StringVar(&genOut, "out", "orders.json", "path of the generated document")
}

// Mid price and tick per generated book. Buys skew below the mid and sells
// above it, so most orders rest and the occasional overlap trades.
var (
	genBase = decimal.NewFromInt(50000)
	genTick = decimal.NewFromInt(25)
)

var genAmounts = []string{"0.1", "0.25", "0.5", "1", "2", "2.5", "5", "10"}

func runGen(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(genSeed))

	cmds := make([]common.Command, 0, genOrders)
	resting := make([]common.Command, 0, genOrders)

	for len(cmds) < genOrders {
		// Roughly one in ten commands deletes an earlier order.
		if len(resting) > 0 && rng.Intn(10) == 0 {
			pick := rng.Intn(len(resting))
			target := resting[pick]
			resting = append(resting[:pick], resting[pick+1:]...)

			target.TypeOp = "DELETE"
			cmds = append(cmds, target)
			continue
		}

		// Each side sits mostly on its own half of the book, with a couple
		// of ticks reaching across the mid so the sides overlap now and
		// then.
		shift := genTick.Mul(decimal.NewFromInt(int64(rng.Intn(20) - 2)))
		side := "BUY"
		price := genBase.Sub(shift)
		if rng.Intn(2) == 1 {
			side = "SELL"
			price = genBase.Add(shift)
		}

		// The seeded reader keeps generated uuids reproducible.
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return err
		}

		c := common.Command{
			TypeOp:     "CREATE",
			AccountID:  fmt.Sprintf("acct-%d", rng.Intn(genAccounts)+1),
			OrderID:    id.String(),
			Pair:       genPairs[rng.Intn(len(genPairs))],
			Side:       side,
			Amount:     genAmounts[rng.Intn(len(genAmounts))],
			LimitPrice: num.Canonical(price),
		}
		cmds = append(cmds, c)
		resting = append(resting, c)
	}

	if err := wire.WriteDocument(genOut, cmds); err != nil {
		log.Error().Err(err).Msg("unable to write generated document")
		return err
	}

	log.Info().
		Int("commands", len(cmds)).
		Int64("seed", genSeed).
		Str("out", genOut).
		Msg("sample document generated")
	return nil
}
