package main

import (
	"errors"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	tomb "gopkg.in/tomb.v2"

	"skoll/internal/common"
	"skoll/internal/engine"
	"skoll/internal/utils"
	"skoll/internal/wire"
)

var errImproperConversion = errors.New("improper type conversion")

var (
	inputPath  string
	bookPath   string
	tradesPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process an order command document and write the result documents",
	RunE:  runBatch,
}

func init() {
	runCmd.Flags().StringVar(&inputPath, "input", "orders.json",
		"path of the input command document")
	runCmd.Flags().StringVar(&bookPath, "book-out", "orderbook.json",
		"path of the order book output document")
	runCmd.Flags().StringVar(&tradesPath, "trades-out", "trades.json",
		"path of the trades output document")
}

// documentTask pairs an output path with the document to write there.
type documentTask struct {
	path string
	doc  any
}

func runBatch(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	log = log.With().Str("run", uuid.New().String()).Logger()

	cmds, err := wire.ReadCommands(inputPath)
	if err != nil {
		log.Error().Err(err).Str("input", inputPath).Msg("unable to load input document")
		return err
	}
	log.Info().Int("commands", len(cmds)).Str("input", inputPath).Msg("input document loaded")

	eng := engine.New(log)

	// The engine runs each command to completion before the next: one
	// goroutine feeds the stream, one consumes it, and the channel between
	// them serializes ingestion in document order.
	t, _ := tomb.WithContext(cmd.Context())
	stream := make(chan common.Command)

	t.Go(func() error {
		defer close(stream)
		for _, c := range cmds {
			select {
			case stream <- c:
			case <-t.Dying():
				return nil
			}
		}
		return nil
	})

	t.Go(func() error {
		for c := range stream {
			if err := eng.Process(c); err != nil {
				return err
			}
		}
		return nil
	})

	if err := t.Wait(); err != nil {
		log.Error().Err(err).Msg("batch failed")
		return err
	}

	// The two output documents are independent, so write them through the
	// worker pool.
	wt, _ := tomb.WithContext(cmd.Context())
	pool := utils.NewWorkerPool(2, log)
	pool.Setup(wt, writeDocument)
	pool.AddTask(documentTask{path: bookPath, doc: wire.BuildBookDocument(eng)})
	pool.AddTask(documentTask{path: tradesPath, doc: wire.BuildTradesDocument(eng.Trades())})
	if err := wt.Wait(); err != nil {
		log.Error().Err(err).Msg("unable to write output documents")
		return err
	}

	log.Info().
		Int("trades", len(eng.Trades())).
		Int("books", len(eng.Books)).
		Str("bookOut", bookPath).
		Str("tradesOut", tradesPath).
		Msg("run complete")
	return nil
}

// writeDocument is the worker method behind the output pool.
func writeDocument(_ *tomb.Tomb, task any) error {
	doc, ok := task.(documentTask)
	if !ok {
		return errImproperConversion
	}
	return wire.WriteDocument(doc.path, doc.doc)
}
