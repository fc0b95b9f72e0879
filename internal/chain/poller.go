package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"projector/internal/events"
	"projector/internal/metrics"
	"projector/internal/projection"
	"projector/internal/retry"
)

// Dispatcher receives decoded events in log order. Implemented by the
// projection router.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev events.Event) error
}

// PollerConfig tunes the log polling loop.
type PollerConfig struct {
	StartBlock    uint64        // 0 means earliest deployment start block
	BatchSize     uint64        // blocks per FilterLogs range
	PollInterval  time.Duration // wait when caught up with the chain head
	Confirmations uint64        // blocks to lag behind head, reorg safety margin
}

func (c *PollerConfig) applyDefaults(book *AddressBook) {
	if c.StartBlock == 0 {
		c.StartBlock = book.EarliestStartBlock()
	}
	if c.BatchSize == 0 {
		c.BatchSize = 500
	}
	if c.PollInterval == 0 {
		c.PollInterval = 5 * time.Second
	}
}

// Poller drives the pipeline: it walks the chain in block ranges, filters logs
// for the tracked addresses, decodes them and hands them to the dispatcher.
// A failed range is retried from the same block; handlers are idempotent, so
// redelivery of already applied events is harmless.
type Poller struct {
	eth     *ethclient.Client
	decoder *Decoder
	book    *AddressBook
	sink    Dispatcher
	retry   retry.Strategy
	cfg     PollerConfig
}

// NewPoller wires the polling loop.
func NewPoller(eth *ethclient.Client, decoder *Decoder, book *AddressBook, sink Dispatcher, strategy retry.Strategy, cfg PollerConfig) *Poller {
	cfg.applyDefaults(book)
	return &Poller{eth: eth, decoder: decoder, book: book, sink: sink, retry: strategy, cfg: cfg}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	next := p.cfg.StartBlock
	addresses := p.book.Addresses()

	slog.Info("Starting log poller",
		"start_block", next,
		"batch_size", p.cfg.BatchSize,
		"contracts", len(addresses))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var head uint64
		err := p.retry.Execute(ctx, func() error {
			var rpcErr error
			head, rpcErr = p.eth.BlockNumber(ctx)
			return rpcErr
		})
		if err != nil {
			return fmt.Errorf("fetch chain head: %w", err)
		}

		safe := head
		if p.cfg.Confirmations < safe {
			safe -= p.cfg.Confirmations
		}

		if next > safe {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.cfg.PollInterval):
			}
			continue
		}

		to := next + p.cfg.BatchSize - 1
		if to > safe {
			to = safe
		}

		if err := p.processRange(ctx, next, to); err != nil {
			slog.Error("Block range failed, will retry",
				"from_block", next,
				"to_block", to,
				"error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.cfg.PollInterval):
			}
			continue
		}

		metrics.BlocksProcessed.Add(float64(to - next + 1))
		metrics.CurrentBlock.Set(float64(to))
		next = to + 1
	}
}

func (p *Poller) processRange(ctx context.Context, from, to uint64) error {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: p.book.Addresses(),
	}

	var logs []types.Log
	err := p.retry.Execute(ctx, func() error {
		var rpcErr error
		logs, rpcErr = p.eth.FilterLogs(ctx, query)
		return rpcErr
	})
	if err != nil {
		return fmt.Errorf("filter logs [%d, %d]: %w", from, to, err)
	}

	if len(logs) == 0 {
		return nil
	}

	timestamps, err := p.blockTimestamps(ctx, logs)
	if err != nil {
		return err
	}

	for _, lg := range logs {
		if lg.Removed {
			continue
		}
		ev, err := p.decoder.Decode(lg, timestamps[lg.BlockNumber])
		if err != nil {
			slog.Error("Undecodable log",
				"tx_hash", lg.TxHash.Hex(),
				"log_index", lg.Index,
				"error", err)
			metrics.EventsSkipped.WithLabelValues("decode_error").Inc()
			continue
		}
		if ev == nil {
			continue
		}
		if err := p.sink.Dispatch(ctx, ev); err != nil {
			// A missing prerequisite is permanent for this event: its
			// creation event was itself skipped or never emitted. Blocking
			// the range on it would stall ingestion.
			var missing *projection.MissingPrerequisiteError
			if errors.As(err, &missing) {
				continue
			}
			return fmt.Errorf("dispatch %s at block %d: %w", ev.Name(), lg.BlockNumber, err)
		}
	}
	return nil
}

// blockTimestamps fetches headers for the distinct blocks in the batch.
func (p *Poller) blockTimestamps(ctx context.Context, logs []types.Log) (map[uint64]time.Time, error) {
	out := make(map[uint64]time.Time)
	for _, lg := range logs {
		if _, ok := out[lg.BlockNumber]; ok {
			continue
		}
		var header *types.Header
		err := p.retry.Execute(ctx, func() error {
			var rpcErr error
			header, rpcErr = p.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(lg.BlockNumber))
			return rpcErr
		})
		if err != nil {
			return nil, fmt.Errorf("fetch header %d: %w", lg.BlockNumber, err)
		}
		out[lg.BlockNumber] = time.Unix(int64(header.Time), 0).UTC()
	}
	return out, nil
}
